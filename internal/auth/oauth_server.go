package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/go-oauth2/oauth2/v4/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Authenticator verifies an email / password pair
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// OAuthService issues, validates and revokes access tokens. Tokens are
// signed JWTs that are also recorded in the auth_tokens table, so a
// logout revokes a token whose signature is still valid.
type OAuthService struct {
	server       *server.Server
	users        Authenticator
	jwtSecret    []byte
	clientID     string
	clientSecret string
}

func NewOAuthService(db *gorm.DB, cfg *config.Config, users Authenticator) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    cfg.TokenTTL,
		IsGenerateRefresh: false,
	})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(cfg.JWTSecret), jwt.SigningMethodHS256, db))

	// Configure token store
	manager.MustTokenStorage(NewGormTokenStore(db), nil)

	// The web frontend is the only client
	clientStore := store.NewClientStore()
	clientStore.Set(cfg.OAuthClientID, &oauthmodels.Client{
		ID:     cfg.OAuthClientID,
		Secret: cfg.OAuthClientSecret,
	})
	manager.MapClientStorage(clientStore)

	o := &OAuthService{
		users:        users,
		jwtSecret:    []byte(cfg.JWTSecret),
		clientID:     cfg.OAuthClientID,
		clientSecret: cfg.OAuthClientSecret,
	}

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(o.authorizePassword)
	o.server = srv

	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// JWTSecret is the HMAC key the middleware verifies signatures with
func (o *OAuthService) JWTSecret() []byte {
	return o.jwtSecret
}

// authorizePassword resolves the resource owner of a password grant.
// The username field carries the email address.
func (o *OAuthService) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		logrus.WithField("client_id", clientID).Debug("Password grant rejected")
		return "", oauth2errors.ErrInvalidGrant
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(user.ID), 10), nil
}

// Login exchanges credentials for an access token on behalf of the web client
func (o *OAuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	ti, err := o.server.Manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     o.clientID,
		ClientSecret: o.clientSecret,
		UserID:       strconv.FormatUint(uint64(user.ID), 10),
	})
	if err != nil {
		return "", err
	}

	logrus.WithField("user_id", user.ID).Info("User logged in")
	return ti.GetAccess(), nil
}

// Logout revokes the access token
func (o *OAuthService) Logout(ctx context.Context, access string) error {
	return o.server.Manager.RemoveAccessToken(ctx, access)
}

// ErrTokenRevoked is returned for tokens that were never issued or have been logged out
var ErrTokenRevoked = errors.New("token has been revoked")

// ValidateToken checks that the token is still recorded and not expired
func (o *OAuthService) ValidateToken(ctx context.Context, access string) error {
	ti, err := o.server.Manager.LoadAccessToken(ctx, access)
	if err != nil {
		return err
	}
	if ti == nil {
		return ErrTokenRevoked
	}
	return nil
}

// HandleToken godoc
// @Summary Token Endpoint
// @Description Obtain an access token with the OAuth2 password grant. The username field carries the email.
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: password"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string false "Client Secret"
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /api/auth/oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		logrus.WithError(err).Warn("Token request failed")
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("invalid_request", err.Error()))
	}
}
