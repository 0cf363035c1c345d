package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// TokenIssuer issues and revokes access tokens
type TokenIssuer interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, access string) error
}

type AuthController struct {
	tokens TokenIssuer
}

func NewAuthController(tokens TokenIssuer) *AuthController {
	return &AuthController{tokens: tokens}
}

// Login godoc
// @Summary Obtain an auth token
// @Description Exchange email and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := ac.tokens.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.OAuth2Error
// @Router /api/auth/token/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.tokens.Logout(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
