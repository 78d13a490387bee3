package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/export"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error
	DeletePending(ctx context.Context, id string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type permissionChecker interface {
	Can(ctx context.Context, principal *models.Principal, permission rbac.Permission) (bool, error)
}

var bookingExportHeaders = []string{"ID", "User", "Teacher", "Date", "Day", "Start", "End", "Subject", "Grade", "Area", "Status"}

var bookingExportWeights = map[string]float64{"ID": 2.5, "User": 2.5, "Teacher": 2.5, "Date": 1.4}

// BookingService drives the booking lifecycle between a user and a teacher.
type BookingService struct {
	repo        bookingRepository
	users       userFinder
	teachers    teacherFinder
	permissions permissionChecker
	renderers   map[dto.ExportFormat]export.Renderer
	metrics     *MetricsService
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo bookingRepository, users userFinder, teachers teacherFinder, permissions permissionChecker, metrics *MetricsService, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:        repo,
		users:       users,
		teachers:    teachers,
		permissions: permissions,
		renderers: map[dto.ExportFormat]export.Renderer{
			dto.ExportCSV: export.NewCSVExporter(),
			dto.ExportPDF: export.NewPDFExporter(),
		},
		metrics:   metrics,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
}

// Create books the teacher for the requesting user. The booking starts pending.
func (s *BookingService) Create(ctx context.Context, actor *models.Principal, req dto.CreateBookingRequest, meta models.RequestMeta) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if actor == nil || actor.Kind != models.PrincipalUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only users can create bookings")
	}
	if _, err := s.users.FindByID(ctx, actor.ID); err != nil {
		return nil, lookupError(err, "user not found", "load user")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "load teacher")
	}

	booking := &models.Booking{
		UserID:    actor.ID,
		TeacherID: req.TeacherID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Grade:     req.Grade,
		Area:      req.Area,
		Subject:   req.Subject,
		Status:    models.BookingPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Upstream(err, "create booking")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingCreate, "booking", booking.ID, nil, meta)
	return booking, nil
}

// Get returns a booking to one of its parties or to holders of read_bookings.
func (s *BookingService) Get(ctx context.Context, actor *models.Principal, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "load booking")
	}
	if _, party := booking.PartyKind(actor); party {
		return booking, nil
	}
	allowed, err := s.permissions.Can(ctx, actor, rbac.ReadBookings)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return booking, nil
}

// ListForPrincipal returns the bookings of the calling user or teacher.
func (s *BookingService) ListForPrincipal(ctx context.Context, actor *models.Principal) ([]models.Booking, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	var (
		bookings []models.Booking
		err      error
	)
	switch actor.Kind {
	case models.PrincipalTeacher:
		bookings, err = s.repo.ListByTeacher(ctx, actor.ID)
	default:
		bookings, err = s.repo.ListByUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, appErrors.Upstream(err, "list bookings")
	}
	return bookings, nil
}

// ListAll returns every booking for administrators.
func (s *BookingService) ListAll(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}
	if filter.PageSize < 0 {
		filter.PageSize = 0
	}
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "list bookings")
	}
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Transition moves a booking to the requested status. Checks run in order: the caller
// must be a party, must be the party allowed to request the target, and the edge must
// exist from the current status.
func (s *BookingService) Transition(ctx context.Context, actor *models.Principal, id string, req dto.UpdateBookingStatusRequest, meta models.RequestMeta) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "load booking")
	}

	party, ok := booking.PartyKind(actor)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a party to this booking")
	}
	target := req.Status
	requester, ok := models.TransitionRequester(target)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot move booking to %s", target))
	}
	if party != requester {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("only the %s may mark a booking %s", requester, target))
	}
	from := booking.Status
	if !models.CanTransition(from, target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot move booking from %s to %s", from, target))
	}

	booking.Status = target
	switch target {
	case models.BookingCancelled:
		booking.CancellationReason = req.Reason
	case models.BookingClosed:
		booking.ClosureReason = req.Reason
	}
	if err := s.repo.UpdateStatus(ctx, booking, from); err != nil {
		if errors.Is(err, repository.ErrBookingStateChanged) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "booking changed concurrently")
		}
		return nil, appErrors.Upstream(err, "update booking status")
	}

	s.metrics.RecordBookingTransition(string(target))
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingTransition, "booking", booking.ID, map[string]string{"from": string(from), "to": string(target)}, meta)
	return booking, nil
}

// Delete removes a pending booking on behalf of its user.
func (s *BookingService) Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "booking not found", "load booking")
	}
	party, ok := booking.PartyKind(actor)
	if !ok || party != models.PrincipalUser {
		return appErrors.Clone(appErrors.ErrForbidden, "only the booking's user may delete it")
	}
	if booking.Status != models.BookingPending {
		return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot delete a %s booking", booking.Status))
	}
	if err := s.repo.DeletePending(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingStateChanged) {
			return appErrors.Clone(appErrors.ErrInvalidState, "booking changed concurrently")
		}
		return appErrors.Upstream(err, "delete booking")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingDelete, "booking", id, nil, meta)
	return nil
}

// Export renders every booking matching the filter as CSV or PDF.
func (s *BookingService) Export(ctx context.Context, filter models.BookingFilter, format dto.ExportFormat) (*dto.ExportResult, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}
	format = dto.ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = dto.ExportCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter.PageSize = -1
	bookings, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Upstream(err, "list bookings for export")
	}

	dataset := export.Dataset{Title: "Bookings", Headers: bookingExportHeaders, Weights: bookingExportWeights, Rows: make([]map[string]string, 0, len(bookings))}
	for _, b := range bookings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":      b.ID,
			"User":    b.UserID,
			"Teacher": b.TeacherID,
			"Date":    b.Date.Format("2006-01-02"),
			"Day":     b.TimeSlot.Day,
			"Start":   b.TimeSlot.StartTime,
			"End":     b.TimeSlot.EndTime,
			"Subject": b.Subject,
			"Grade":   b.Grade,
			"Area":    b.Area,
			"Status":  string(b.Status),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("bookings-%s.%s", time.Now().UTC().Format("20060102-150405"), renderer.Extension())
	return &dto.ExportResult{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}
