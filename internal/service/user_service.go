package service

import (
	"context"
	"database/sql"
	"encoding/json"
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

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, userName, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type userBookingReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

type userReviewReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.UserReview, error)
}

type accountTokenRepository interface {
	CreateResetToken(ctx context.Context, token *models.ResetToken) error
	FindResetToken(ctx context.Context, id string) (*models.ResetToken, error)
	ConsumeResetToken(ctx context.Context, token *models.ResetToken, passwordHash string) error
	CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error
	FindVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error)
	ConsumeVerificationToken(ctx context.Context, token *models.VerificationToken) error
}

type mailDispatcher interface {
	Dispatch(msg mail.Message)
}

// UserConfig configures account lifecycle links and token windows.
type UserConfig struct {
	FrontendURL          string
	ResetTokenTTL        time.Duration
	VerificationTokenTTL time.Duration
}

// UserService manages learner and administrator accounts.
type UserService struct {
	repo        userRepository
	bookings    userBookingReader
	reviews     userReviewReader
	tokens      accountTokenRepository
	credentials *CredentialService
	mailer      mailDispatcher
	audit       auditWriter
	validator   *validator.Validate
	logger      *zap.Logger
	config      UserConfig
	now         func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, bookings userBookingReader, reviews userReviewReader, tokens accountTokenRepository, credentials *CredentialService, mailer mailDispatcher, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config UserConfig) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = 2 * time.Hour
	}
	if config.VerificationTokenTTL <= 0 {
		config.VerificationTokenTTL = time.Hour
	}
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	return &UserService{
		repo:        repo,
		bookings:    bookings,
		reviews:     reviews,
		tokens:      tokens,
		credentials: credentials,
		mailer:      mailer,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		config:      config,
		now:         time.Now,
	}
}

// Register signs up a learner account with the default user role.
func (s *UserService) Register(ctx context.Context, req dto.RegisterUserRequest, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	user, err := s.createAccount(ctx, req, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, &models.Principal{ID: user.ID, Kind: models.PrincipalUser}, models.AuditActionRegister, user.ID, nil, meta)
	return user, nil
}

// Create provisions an account on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, actor *models.Principal, req dto.CreateUserRequest, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	role := models.UserRole(req.Role)
	if role == models.RoleSuperAdmin && (actor == nil || actor.Role != models.RoleSuperAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only superadmins may grant superadmin")
	}
	user, err := s.createAccount(ctx, req.RegisterUserRequest, role)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, models.AuditActionUserCreate, user.ID, map[string]interface{}{"role": role}, meta)
	return user, nil
}

func (s *UserService) createAccount(ctx context.Context, req dto.RegisterUserRequest, role models.UserRole) (*models.User, error) {
	if _, err := s.repo.FindByLogin(ctx, req.UserName, strings.ToLower(req.Email)); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "user name or email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Upstream(err, "check existing user")
	}

	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		UserName:     req.UserName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "user name or email already registered")
		}
		return nil, appErrors.Upstream(err, "create user")
	}

	s.send(mail.Message{
		To:      user.Email,
		Subject: "User Account Created!",
		Body:    fmt.Sprintf("Dear %s,\n\nAn account has been created for you.\n\nUsername: %s\nEmail: %s\nRole: %s\n", user.FirstName, user.UserName, user.Email, user.Role),
	})
	return user, nil
}

// Profile returns the user with their bookings and reviews.
func (s *UserService) Profile(ctx context.Context, id string) (*models.UserProfile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "load user")
	}
	bookings, err := s.bookings.ListByUser(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "list user bookings")
	}
	reviews, err := s.reviews.ListByUser(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "list user reviews")
	}
	return &models.UserProfile{User: *user, Bookings: bookings, Reviews: reviews}, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "load user")
	}
	return user, nil
}

// List returns users with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "list users")
	}
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update applies profile changes. Users may edit themselves; administrators may edit
// anyone and are the only ones allowed to change roles.
func (s *UserService) Update(ctx context.Context, actor *models.Principal, id string, req dto.UpdateUserRequest, meta models.RequestMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	self := actor.Kind == models.PrincipalUser && actor.ID == id
	if !self && !actor.Role.IsAdministrative() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot update another user")
	}
	if req.Role != nil && !actor.Role.IsAdministrative() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may change roles")
	}
	if req.Role != nil && models.UserRole(*req.Role) == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only superadmins may grant superadmin")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "load user")
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, lookupError(err, "user not found", "update user")
	}
	s.recordAudit(ctx, actor, models.AuditActionUserUpdate, user.ID, req, meta)
	return user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, actor *models.Principal, id string, meta models.RequestMeta) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "user not found", "delete user")
	}
	s.recordAudit(ctx, actor, models.AuditActionUserDelete, id, nil, meta)
	return nil
}

// ForgotPassword issues a reset token and mails its link.
func (s *UserService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid forgot password payload")
	}
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return lookupError(err, "user not found", "find user by email")
	}

	now := s.now().UTC()
	token := &models.ResetToken{UserID: user.ID, ExpiredAt: now.Add(s.config.ResetTokenTTL), CreatedAt: now}
	if err := s.tokens.CreateResetToken(ctx, token); err != nil {
		return appErrors.Upstream(err, "create reset token")
	}

	s.send(mail.Message{
		To:      user.Email,
		Subject: "Reset Password",
		Body:    fmt.Sprintf("Hello %s,\n\nFollow the link below to reset your password:\n%s/reset-password/%s\n", user.FirstName, s.config.FrontendURL, token.ID),
	})
	return nil
}

// VerifyResetToken reports whether a reset token can still be used.
func (s *UserService) VerifyResetToken(ctx context.Context, id string) error {
	_, err := s.usableResetToken(ctx, id)
	return err
}

// ResetPassword consumes a reset token and sets the new password.
func (s *UserService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest, meta models.RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reset password payload")
	}
	token, err := s.usableResetToken(ctx, req.ResetToken)
	if err != nil {
		return err
	}
	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.tokens.ConsumeResetToken(ctx, token, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidState, "invalid reset token")
		}
		return appErrors.Upstream(err, "reset password")
	}
	s.recordAudit(ctx, &models.Principal{ID: token.UserID, Kind: models.PrincipalUser}, models.AuditActionPasswordReset, token.UserID, nil, meta)
	return nil
}

func (s *UserService) usableResetToken(ctx context.Context, id string) (*models.ResetToken, error) {
	token, err := s.tokens.FindResetToken(ctx, id)
	if err != nil {
		return nil, lookupError(err, "reset token not found", "find reset token")
	}
	if !token.Usable(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "invalid reset token")
	}
	return token, nil
}

// RequestEmailVerification mails a short-lived verification link to the user.
func (s *UserService) RequestEmailVerification(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return lookupError(err, "user not found", "load user")
	}
	if user.Verified {
		return appErrors.Clone(appErrors.ErrInvalidState, "email already verified")
	}

	signed, expiresAt, err := s.credentials.IssueToken(user.ID, models.PrincipalUser, models.TokenPurposeVerifyEmail, s.config.VerificationTokenTTL)
	if err != nil {
		return err
	}
	record := &models.VerificationToken{UserID: user.ID, Token: signed, ExpiredAt: expiresAt, CreatedAt: s.now().UTC()}
	if err := s.tokens.CreateVerificationToken(ctx, record); err != nil {
		return appErrors.Upstream(err, "create verification token")
	}

	s.send(mail.Message{
		To:      user.Email,
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Hello %s,\n\nConfirm your email address within the next hour:\n%s/verify-email/%s\n", user.FirstName, s.config.FrontendURL, signed),
	})
	return nil
}

// VerifyEmail consumes a verification token and marks its user verified.
func (s *UserService) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest, meta models.RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	claims, err := s.credentials.VerifyToken(req.Token, models.TokenPurposeVerifyEmail)
	if err != nil {
		return err
	}
	record, err := s.tokens.FindVerificationToken(ctx, req.Token)
	if err != nil {
		return lookupError(err, "verification token not found", "find verification token")
	}
	if record.UserID != claims.UserID() {
		return appErrors.Clone(appErrors.ErrTokenInvalid, "")
	}
	if !record.Usable(s.now()) {
		return appErrors.Clone(appErrors.ErrInvalidState, "verification token already used")
	}
	if err := s.tokens.ConsumeVerificationToken(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidState, "verification token already used")
		}
		return appErrors.Upstream(err, "verify email")
	}
	s.recordAudit(ctx, &models.Principal{ID: record.UserID, Kind: models.PrincipalUser}, models.AuditActionEmailVerified, record.UserID, nil, meta)
	return nil
}

func (s *UserService) send(msg mail.Message) {
	if s.mailer == nil {
		return
	}
	s.mailer.Dispatch(msg)
}

func (s *UserService) recordAudit(ctx context.Context, actor *models.Principal, action, resourceID string, values interface{}, meta models.RequestMeta) {
	writeAudit(ctx, s.audit, s.logger, actor, action, "user", resourceID, values, meta)
}

// writeAudit records an audit entry, logging instead of failing when the write does not succeed.
func writeAudit(ctx context.Context, audit auditWriter, logger *zap.Logger, actor *models.Principal, action, resource, resourceID string, values interface{}, meta models.RequestMeta) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if actor != nil {
		actorID := actor.ID
		entry.ActorID = &actorID
		entry.ActorKind = actor.Kind
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		payload, err := json.Marshal(values)
		if err == nil {
			entry.NewValues = payload
		}
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

// lookupError maps a missing row or a malformed id to NOT_FOUND and every other store
// failure to UPSTREAM_UNAVAILABLE.
func lookupError(err error, notFound, op string) error {
	if errors.Is(err, sql.ErrNoRows) || repository.IsMalformedID(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Upstream(err, op)
}
