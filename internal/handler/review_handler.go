package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type reviewService interface {
	Create(ctx context.Context, actor *models.Principal, teacherID string, req dto.CreateReviewRequest, meta models.RequestMeta) (*models.Review, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error)
}

// ReviewHandler exposes teacher reviews.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(svc reviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Create godoc
// @Summary Review a teacher
// @Description A user may review each teacher once
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body dto.CreateReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req, "review") {
		return
	}
	review, err := h.service.Create(c.Request.Context(), principal, c.Param("id"), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// List godoc
// @Summary List a teacher's reviews
// @Tags Reviews
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.service.ListForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reviews)
}
