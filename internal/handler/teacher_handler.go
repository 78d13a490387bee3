package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type teacherService interface {
	Register(ctx context.Context, req dto.RegisterTeacherRequest, meta models.RequestMeta) (*models.Teacher, error)
	Profile(ctx context.Context, id string) (*models.TeacherProfile, error)
	Get(ctx context.Context, id string) (*models.TeacherProfile, error)
	List(ctx context.Context) ([]models.Teacher, bool, error)
	Update(ctx context.Context, actor *models.Principal, id string, req dto.UpdateTeacherRequest, meta models.RequestMeta) (*models.Teacher, error)
	Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error
}

// TeacherHandler exposes tutor accounts and the public directory.
type TeacherHandler struct {
	service teacherService
}

// NewTeacherHandler constructs a TeacherHandler.
func NewTeacherHandler(svc teacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// Register godoc
// @Summary Register a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body dto.RegisterTeacherRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /teachers/register [post]
func (h *TeacherHandler) Register(c *gin.Context) {
	var req dto.RegisterTeacherRequest
	if !bindJSON(c, &req, "registration") {
		return
	}
	teacher, err := h.service.Register(c.Request.Context(), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Profile godoc
// @Summary Current teacher's profile with bookings and reviews
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /teachers/profile [get]
func (h *TeacherHandler) Profile(c *gin.Context) {
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
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, teachers, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a teacher with reviews
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Update godoc
// @Summary Update a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.UpdateTeacherRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teachers/{id} [patch]
func (h *TeacherHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateTeacherRequest
	if !bindJSON(c, &req, "teacher") {
		return
	}
	teacher, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Delete godoc
// @Summary Delete a teacher
// @Tags Teachers
// @Param id path string true "Teacher ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
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
