package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewInMemory()
	require.NoError(t, err)
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     testSecret,
		TokenTTL:      time.Hour,
		OAuthClientID: "foodgram-web",
	}
}

func setupOAuth(t *testing.T) (*OAuthService, *models.User, *gorm.DB) {
	db := setupTestDB(t)
	users := services.NewUserService(db, nil)

	user, err := users.CreateUser(context.Background(), services.Registration{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Test",
		LastName:  "Cook",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)

	return NewOAuthService(db, testConfig(), users), user, db
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, testConfig(), services.NewUserService(db, nil))
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
	assert.Equal(t, []byte(testSecret), oauthService.JWTSecret())
}

func TestLoginIssuesJWTWithUserClaims(t *testing.T) {
	oauthService, user, _ := setupOAuth(t)

	access, err := oauthService.Login(context.Background(), "cook@example.com", "s3cret-pass")
	require.NoError(t, err)

	parsed, err := jwt.Parse(access, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)

	assert.Equal(t, strconv.FormatUint(uint64(user.ID), 10), claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Equal(t, "foodgram-web", claims["aud"])
	assert.NotEmpty(t, claims["jti"])
}

func TestLoginTokensAreUnique(t *testing.T) {
	oauthService, _, _ := setupOAuth(t)

	first, err := oauthService.Login(context.Background(), "cook@example.com", "s3cret-pass")
	require.NoError(t, err)
	second, err := oauthService.Login(context.Background(), "cook@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	oauthService, _, _ := setupOAuth(t)

	_, err := oauthService.Login(context.Background(), "cook@example.com", "wrong-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = oauthService.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	oauthService, _, db := setupOAuth(t)
	ctx := context.Background()

	access, err := oauthService.Login(ctx, "cook@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, oauthService.ValidateToken(ctx, access))

	var stored models.AuthToken
	require.NoError(t, db.Where("access_token = ?", access).First(&stored).Error)
	assert.WithinDuration(t, stored.CreatedAt.Add(time.Hour), stored.ExpiresAt, time.Second)

	require.NoError(t, oauthService.Logout(ctx, access))
	assert.Error(t, oauthService.ValidateToken(ctx, access))
}

func TestValidateTokenRejectsUnknownToken(t *testing.T) {
	oauthService, _, _ := setupOAuth(t)

	assert.Error(t, oauthService.ValidateToken(context.Background(), "never-issued"))
}

func TestPasswordGrantEndpoint(t *testing.T) {
	oauthService, _, _ := setupOAuth(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", oauthService.HandleToken)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid credentials", func(t *testing.T) {
		w := post(url.Values{
			"grant_type": {"password"},
			"client_id":  {"foodgram-web"},
			"username":   {"cook@example.com"},
			"password":   {"s3cret-pass"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response["access_token"])
		assert.Equal(t, "Bearer", response["token_type"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := post(url.Values{
			"grant_type": {"password"},
			"client_id":  {"foodgram-web"},
			"username":   {"cook@example.com"},
			"password":   {"nope"},
		})
		assert.NotEqual(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_grant")
	})

	t.Run("client credentials grant is disabled", func(t *testing.T) {
		w := post(url.Values{
			"grant_type": {"client_credentials"},
			"client_id":  {"foodgram-web"},
		})
		assert.NotEqual(t, http.StatusOK, w.Code)
	})
}
