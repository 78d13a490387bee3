package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type userService interface {
	Register(ctx context.Context, req dto.RegisterUserRequest, meta models.RequestMeta) (*models.User, error)
	Create(ctx context.Context, actor *models.Principal, req dto.CreateUserRequest, meta models.RequestMeta) (*models.User, error)
	Profile(ctx context.Context, id string) (*models.UserProfile, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Update(ctx context.Context, actor *models.Principal, id string, req dto.UpdateUserRequest, meta models.RequestMeta) (*models.User, error)
	Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error
	VerifyResetToken(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest, meta models.RequestMeta) error
	RequestEmailVerification(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, req models.VerifyEmailRequest, meta models.RequestMeta) error
}

// UserHandler exposes learner and administrator account endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Register godoc
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.RegisterUserRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if !bindJSON(c, &req, "registration") {
		return
	}
	user, err := h.service.Register(c.Request.Context(), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Profile godoc
// @Summary Current user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), principal.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	users, pagination, err := h.service.List(c.Request.Context(), models.UserFilter{Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Create godoc
// @Summary Create a user with a role
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.CreateUserRequest true "User"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req, "user") {
		return
	}
	user, err := h.service.Create(c.Request.Context(), principal, req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Get godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Update godoc
// @Summary Update a user
// @Description Users may update themselves; administrators may update anyone and change roles
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UpdateUserRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, "user") {
		return
	}
	user, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Delete godoc
// @Summary Delete a user
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, c.Param("id"), middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags Users
// @Accept json
// @Param payload body models.ForgotPasswordRequest true "Email"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/forgot-password [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if !bindJSON(c, &req, "forgot password") {
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "password reset link sent"}, nil)
}

// VerifyResetToken godoc
// @Summary Check a password reset token
// @Tags Users
// @Param token path string true "Reset token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/reset-password/{token} [get]
func (h *UserHandler) VerifyResetToken(c *gin.Context) {
	if err := h.service.VerifyResetToken(c.Request.Context(), c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"valid": true})
}

// ResetPassword godoc
// @Summary Reset a password
// @Tags Users
// @Accept json
// @Param payload body models.ResetPasswordRequest true "Reset"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /users/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req, "reset password") {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RequestEmailVerification godoc
// @Summary Mail an email verification link to the current user
// @Tags Users
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/verify-email/request [post]
func (h *UserHandler) RequestEmailVerification(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.service.RequestEmailVerification(c.Request.Context(), principal.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "verification link sent"}, nil)
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags Users
// @Accept json
// @Param payload body models.VerifyEmailRequest true "Token"
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/verify-email [post]
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if !bindJSON(c, &req, "verification") {
		return
	}
	if err := h.service.VerifyEmail(c.Request.Context(), req, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
