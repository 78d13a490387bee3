package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

type reviewRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error)
	Exists(ctx context.Context, teacherID, userID string) (bool, error)
	Create(ctx context.Context, review models.Review) error
}

// ReviewService keeps at most one review per (user, teacher) pair. Reviews are immutable.
type ReviewService struct {
	repo      reviewRepository
	users     userFinder
	teachers  teacherFinder
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(repo reviewRepository, users userFinder, teachers teacherFinder, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{repo: repo, users: users, teachers: teachers, audit: audit, validator: validate, logger: logger, now: time.Now}
}

// Create records the user's review of a teacher on both sides of the ledger.
func (s *ReviewService) Create(ctx context.Context, actor *models.Principal, teacherID string, req dto.CreateReviewRequest, meta models.RequestMeta) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if actor == nil || actor.Kind != models.PrincipalUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only users can review teachers")
	}

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "load teacher")
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, lookupError(err, "user not found", "load user")
	}

	exists, err := s.repo.Exists(ctx, teacher.ID, user.ID)
	if err != nil {
		return nil, appErrors.Upstream(err, "check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "teacher already reviewed")
	}

	review := models.Review{
		UserID:    user.ID,
		TeacherID: teacher.ID,
		UserName:  user.UserName,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Date:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "teacher already reviewed")
		}
		return nil, appErrors.Upstream(err, "create review")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionReviewCreate, "review", teacher.ID, map[string]int{"rating": review.Rating}, meta)
	return &review, nil
}

// ListForTeacher returns the teacher-side reviews.
func (s *ReviewService) ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "load teacher")
	}
	reviews, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Upstream(err, "list reviews")
	}
	return reviews, nil
}
