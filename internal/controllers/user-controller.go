package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles accounts, avatars and subscriptions
type UserController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
	paginator     Paginator
	present       presenter
}

func NewUserController(users services.UserService, subscriptions services.SubscriptionService,
	images media.Store, paginator Paginator) *UserController {
	return &UserController{
		users:         users,
		subscriptions: subscriptions,
		paginator:     paginator,
		present:       presenter{images: images},
	}
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body registerRequest true "New account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.APIError
// @Router /api/users [post]
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := uc.users.CreateUser(c.Request.Context(), services.Registration{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uc.present.user(*user, false))
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Page[UserResponse]
// @Router /api/users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	req := uc.paginator.parse(c)
	users, total, err := uc.users.ListUsers(c.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := uc.subscribedTo(c, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, uc.present.user(u, subscribed[u.ID]))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uc.respondProfile(c, id)
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.OAuth2Error
// @Router /api/users/me [get]
func (uc *UserController) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	uc.respondProfile(c, userID)
}

func (uc *UserController) respondProfile(c *gin.Context, id uint) {
	user, err := uc.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	subscribed, err := uc.subscribedTo(c, []uint{id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc.present.user(*user, subscribed[id]))
}

// subscribedTo is empty for anonymous callers
func (uc *UserController) subscribedTo(c *gin.Context, ids []uint) (map[uint]bool, error) {
	viewerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return map[uint]bool{}, nil
	}
	return uc.users.SubscribedTo(c.Request.Context(), viewerID, ids)
}

// SetPassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param passwords body setPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Router /api/users/set_password [post]
func (uc *UserController) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := uc.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAvatar godoc
// @Summary Upload an avatar
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param avatar body avatarRequest true "Base64 data URI"
// @Success 200 {object} AvatarResponse
// @Failure 400 {object} models.APIError
// @Router /api/users/me/avatar [put]
func (uc *UserController) SetAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	upload, err := media.DecodeDataURI(req.Avatar)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidImage, err.Error()))
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	user, err := uc.users.SetAvatar(c.Request.Context(), userID, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AvatarResponse{Avatar: uc.present.images.URL(*user.Avatar)})
}

// DeleteAvatar godoc
// @Summary Remove the avatar
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /api/users/me/avatar [delete]
func (uc *UserController) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	if err := uc.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe godoc
// @Summary Subscribe to an author
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Maximum number of embedded recipes"
// @Success 201 {object} AuthorResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/users/{id}/subscribe [post]
func (uc *UserController) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	author, err := uc.subscriptions.Subscribe(c.Request.Context(), userID, authorID, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uc.present.author(*author))
}

// Unsubscribe godoc
// @Summary Unsubscribe from an author
// @Tags subscriptions
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/users/{id}/subscribe [delete]
func (uc *UserController) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := uc.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions godoc
// @Summary List followed authors
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Maximum number of embedded recipes per author"
// @Success 200 {object} Page[AuthorResponse]
// @Router /api/users/subscriptions [get]
func (uc *UserController) Subscriptions(c *gin.Context) {
	req := uc.paginator.parse(c)
	userID, _ := middleware.CurrentUserID(c)

	authors, total, err := uc.subscriptions.ListSubscriptions(c.Request.Context(), userID, req.Offset, req.Limit, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		results = append(results, uc.present.author(a))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}

// recipesLimit reads ?recipes_limit; malformed or negative values mean no limit
func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return services.NoRecipesLimit
	}
	return limit
}

// pathID parses the :id parameter, answering 404 when it is not a positive integer
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Not found"))
		return 0, false
	}
	return uint(id), true
}
