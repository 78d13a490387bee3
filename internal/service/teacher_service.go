package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/mail"
)

const teacherListCacheKey = "teachers:list"

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByLogin(ctx context.Context, userName, email string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherBookingReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
}

type teacherReviewReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error)
}

// TeacherService manages tutor accounts and the public teacher directory.
type TeacherService struct {
	repo        teacherRepository
	bookings    teacherBookingReader
	reviews     teacherReviewReader
	cache       *CacheService
	credentials *CredentialService
	mailer      mailDispatcher
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
	listTTL     time.Duration
}

// NewTeacherService constructs a TeacherService. cache may be nil.
func NewTeacherService(repo teacherRepository, bookings teacherBookingReader, reviews teacherReviewReader, cache *CacheService, credentials *CredentialService, mailer mailDispatcher, audit auditWriter, validate *validator.Validate, logger *zap.Logger, listTTL time.Duration) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		repo:        repo,
		bookings:    bookings,
		reviews:     reviews,
		cache:       cache,
		credentials: credentials,
		mailer:      mailer,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		listTTL:     listTTL,
	}
}

// Register signs up a teacher account.
func (s *TeacherService) Register(ctx context.Context, req dto.RegisterTeacherRequest, meta models.RequestMeta) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if _, err := s.repo.FindByLogin(ctx, req.UserName, strings.ToLower(req.Email)); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "user name or email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Upstream(err, "check existing teacher")
	}

	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	teacher := &models.Teacher{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		UserName:       req.UserName,
		Email:          strings.ToLower(req.Email),
		PasswordHash:   hash,
		Subjects:       req.Subjects,
		Area:           req.Area,
		Availability:   req.Availability,
		CostPerHour:    req.CostPerHour,
		Qualifications: req.Qualifications,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "user name or email already registered")
		}
		return nil, appErrors.Upstream(err, "create teacher")
	}
	s.cache.Invalidate(ctx, teacherListCacheKey)

	if s.mailer != nil {
		s.mailer.Dispatch(mail.Message{
			To:      teacher.Email,
			Subject: "Teacher Account Created!",
			Body:    fmt.Sprintf("Dear %s,\n\nYour teacher account is ready.\n\nUsername: %s\nEmail: %s\n", teacher.FirstName, teacher.UserName, teacher.Email),
		})
	}
	writeAudit(ctx, s.audit, s.logger, &models.Principal{ID: teacher.ID, Kind: models.PrincipalTeacher}, models.AuditActionRegister, "teacher", teacher.ID, nil, meta)
	return teacher, nil
}

// Profile returns the teacher's own view, including bookings.
func (s *TeacherService) Profile(ctx context.Context, id string) (*models.TeacherProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByTeacher(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "list teacher bookings")
	}
	profile.Bookings = bookings
	return profile, nil
}

// Get returns the public view of a teacher with their reviews.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherProfile, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "load teacher")
	}
	reviews, err := s.reviews.ListByTeacher(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "list teacher reviews")
	}
	return &models.TeacherProfile{Teacher: *teacher, Reviews: reviews}, nil
}

// List returns every teacher, served from cache when possible. The flag reports a cache hit.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, bool, error) {
	var cached []models.Teacher
	if s.cache.Get(ctx, teacherListCacheKey, &cached) {
		return cached, true, nil
	}
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Upstream(err, "list teachers")
	}
	s.cache.Set(ctx, teacherListCacheKey, teachers, s.listTTL)
	return teachers, false, nil
}

// Update edits a teacher profile. Teachers may edit only themselves; administrators may edit anyone.
func (s *TeacherService) Update(ctx context.Context, actor *models.Principal, id string, req dto.UpdateTeacherRequest, meta models.RequestMeta) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	self := actor.Kind == models.PrincipalTeacher && actor.ID == id
	if !self && !actor.Role.IsAdministrative() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot update another teacher")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "load teacher")
	}
	if req.FirstName != nil {
		teacher.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		teacher.LastName = *req.LastName
	}
	if req.Area != nil {
		teacher.Area = *req.Area
	}
	if req.CostPerHour != nil {
		teacher.CostPerHour = *req.CostPerHour
	}
	if req.Subjects != nil {
		teacher.Subjects = req.Subjects
	}
	if req.Availability != nil {
		teacher.Availability = req.Availability
	}
	if req.Qualifications != nil {
		teacher.Qualifications = req.Qualifications
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, lookupError(err, "teacher not found", "update teacher")
	}
	s.cache.Invalidate(ctx, teacherListCacheKey)
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionTeacherUpdate, "teacher", teacher.ID, req, meta)
	return teacher, nil
}

// Delete removes a teacher account.
func (s *TeacherService) Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "teacher not found", "delete teacher")
	}
	s.cache.Invalidate(ctx, teacherListCacheKey)
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionTeacherDelete, "teacher", id, nil, meta)
	return nil
}
