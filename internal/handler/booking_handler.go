package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, actor *models.Principal, req dto.CreateBookingRequest, meta models.RequestMeta) (*models.Booking, error)
	Get(ctx context.Context, actor *models.Principal, id string) (*models.Booking, error)
	ListForPrincipal(ctx context.Context, actor *models.Principal) ([]models.Booking, error)
	ListAll(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	Transition(ctx context.Context, actor *models.Principal, id string, req dto.UpdateBookingStatusRequest, meta models.RequestMeta) (*models.Booking, error)
	Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error
	Export(ctx context.Context, filter models.BookingFilter, format dto.ExportFormat) (*dto.ExportResult, error)
}

// BookingHandler exposes the booking lifecycle.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Create godoc
// @Summary Book a teacher
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req, "booking") {
		return
	}
	booking, err := h.service.Create(c.Request.Context(), principal, req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Mine godoc
// @Summary List the caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) Mine(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListForPrincipal(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookings)
}

// All godoc
// @Summary List every booking
// @Tags Bookings
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /bookings/all [get]
func (h *BookingHandler) All(c *gin.Context) {
	filter := bookingFilter(c)
	filter.Page, filter.PageSize = pageParams(c)
	bookings, pagination, err := h.service.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Export godoc
// @Summary Export bookings
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	result, err := h.service.Export(c.Request.Context(), bookingFilter(c), dto.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// Get godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	booking, err := h.service.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// UpdateStatus godoc
// @Summary Move a booking through its lifecycle
// @Description Teachers accept pending bookings; users cancel pending bookings and close pending or accepted ones
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.UpdateBookingStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateBookingStatusRequest
	if !bindJSON(c, &req, "status") {
		return
	}
	booking, err := h.service.Transition(c.Request.Context(), principal, c.Param("id"), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Delete godoc
// @Summary Delete a pending booking
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
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

func bookingFilter(c *gin.Context) models.BookingFilter {
	var filter models.BookingFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.BookingStatus(strings.ToLower(raw))
		filter.Status = &status
	}
	return filter
}
