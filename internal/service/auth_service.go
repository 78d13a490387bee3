package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

type accountStore interface {
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
	FindAccountByLogin(ctx context.Context, userName, email string) (*models.Account, error)
}

type sessionStore interface {
	Create(ctx context.Context, session *models.Session, ttl time.Duration) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Carrier is a credential presented by a request.
type Carrier interface {
	carrier()
}

// SessionCarrier presents a server-side session id, usually from a cookie.
type SessionCarrier struct {
	ID string
}

// BearerCarrier presents a signed login token from the Authorization header.
type BearerCarrier struct {
	Token string
}

func (SessionCarrier) carrier() {}
func (BearerCarrier) carrier()  {}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionTTL    time.Duration
	LoginTokenTTL time.Duration
}

// AuthService resolves principals from credentials and checks their permissions.
type AuthService struct {
	stores      map[models.PrincipalKind]accountStore
	sessions    sessionStore
	credentials *CredentialService
	table       rbac.Table
	audit       auditWriter
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService. The users and teachers stores back the
// user and teacher principal kinds respectively.
func NewAuthService(users, teachers accountStore, sessions sessionStore, credentials *CredentialService, table rbac.Table, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.LoginTokenTTL <= 0 {
		config.LoginTokenTTL = 48 * time.Hour
	}
	return &AuthService{
		stores: map[models.PrincipalKind]accountStore{
			models.PrincipalUser:    users,
			models.PrincipalTeacher: teachers,
		},
		sessions:    sessions,
		credentials: credentials,
		table:       table,
		audit:       audit,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// SessionTTL reports how long new sessions live.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// Login verifies a user name or email plus password against the store of the given kind.
// The first account matching either identifier wins.
func (s *AuthService) Login(ctx context.Context, kind models.PrincipalKind, req models.LoginRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	store, ok := s.stores[kind]
	if !ok || store == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "unsupported account kind")
	}

	// Emails are stored lower-cased at registration.
	account, err := store.FindAccountByLogin(ctx, req.UserName, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthentication("login", AuthResultInvalid)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Upstream(err, "find account by login")
	}
	if !s.credentials.VerifyPassword(req.Password, account.PasswordHash) {
		s.metrics.RecordAuthentication("login", AuthResultInvalid)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	s.metrics.RecordAuthentication("login", AuthResultSuccess)
	s.recordAudit(ctx, account.Principal(), models.AuditActionLogin, "auth", req.IP, req.UserAgent)
	return account, nil
}

// SessionLogin authenticates and opens a server-side session. A previous session id
// presented by the same client is destroyed first so each client holds at most one.
func (s *AuthService) SessionLogin(ctx context.Context, kind models.PrincipalKind, req models.LoginRequest, previousSessionID string) (*models.Session, *models.SessionLoginResponse, error) {
	account, err := s.Login(ctx, kind, req)
	if err != nil {
		return nil, nil, err
	}

	if previousSessionID != "" {
		if err := s.sessions.Delete(ctx, previousSessionID); err != nil {
			s.logger.Warn("failed to destroy previous session", zap.Error(err))
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session id")
	}
	session := &models.Session{ID: id, UserID: account.ID, Kind: account.Kind, CreatedAt: time.Now().UTC()}
	if err := s.sessions.Create(ctx, session, s.config.SessionTTL); err != nil {
		return nil, nil, appErrors.Upstream(err, "create session")
	}

	return session, &models.SessionLoginResponse{
		Message: "logged in successfully",
		User:    accountInfo(account),
	}, nil
}

// TokenLogin authenticates and issues a login bearer token.
func (s *AuthService) TokenLogin(ctx context.Context, kind models.PrincipalKind, req models.LoginRequest) (*models.TokenLoginResponse, error) {
	account, err := s.Login(ctx, kind, req)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.credentials.IssueToken(account.ID, account.Kind, models.TokenPurposeLogin, s.config.LoginTokenTTL)
	if err != nil {
		return nil, err
	}

	return &models.TokenLoginResponse{
		Message:     "logged in successfully",
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        accountInfo(account),
	}, nil
}

// Logout destroys the session behind sessionID. Bearer tokens cannot be revoked, so a
// request authenticated only by token is a no-op.
func (s *AuthService) Logout(ctx context.Context, principal *models.Principal, sessionID string, meta models.RequestMeta) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Upstream(err, "destroy session")
	}
	s.recordAudit(ctx, principal, models.AuditActionLogout, "auth", meta.IP, meta.UserAgent)
	return nil
}

// Authenticate resolves the principal behind the first present carrier. Session carriers
// whose id the store no longer knows count as absent. The resolved kind must be one of
// kinds; the account must still exist in the store for that kind.
func (s *AuthService) Authenticate(ctx context.Context, kinds []models.PrincipalKind, carriers ...Carrier) (*models.Principal, error) {
	for _, c := range carriers {
		switch c := c.(type) {
		case SessionCarrier:
			if c.ID == "" {
				continue
			}
			session, err := s.sessions.Find(ctx, c.ID)
			if err != nil {
				if errors.Is(err, repository.ErrSessionNotFound) {
					continue
				}
				return nil, appErrors.Upstream(err, "load session")
			}
			return s.resolve(ctx, kinds, session.UserID, session.Kind, session.ID)
		case BearerCarrier:
			if c.Token == "" {
				continue
			}
			claims, err := s.credentials.VerifyToken(c.Token, models.TokenPurposeLogin)
			if err != nil {
				if errors.Is(err, appErrors.ErrTokenExpired) {
					s.metrics.RecordAuthentication("authenticate", AuthResultTokenExpired)
				} else {
					s.metrics.RecordAuthentication("authenticate", AuthResultTokenInvalid)
				}
				return nil, err
			}
			return s.resolve(ctx, kinds, claims.UserID(), claims.Kind, "")
		}
	}
	s.metrics.RecordAuthentication("authenticate", AuthResultUnauthenticated)
	return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
}

func (s *AuthService) resolve(ctx context.Context, kinds []models.PrincipalKind, userID string, kind models.PrincipalKind, sessionID string) (*models.Principal, error) {
	if !acceptsKind(kinds, kind) {
		s.metrics.RecordAuthentication("authenticate", AuthResultUnauthenticated)
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, fmt.Sprintf("%s credentials are not accepted here", kind))
	}
	store, ok := s.stores[kind]
	if !ok || store == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}

	account, err := store.FindAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if sessionID != "" {
				if err := s.sessions.Delete(ctx, sessionID); err != nil {
					s.logger.Warn("failed to destroy orphaned session", zap.Error(err))
				}
			}
			s.metrics.RecordAuthentication("authenticate", AuthResultPrincipalMissing)
			return nil, appErrors.Clone(appErrors.ErrPrincipalNotFound, "")
		}
		return nil, appErrors.Upstream(err, "load principal")
	}

	s.metrics.RecordAuthentication("authenticate", AuthResultSuccess)
	return account.Principal(), nil
}

// Authorize re-reads the principal's role from its store and checks it against the
// permission table. On success the principal carries the live role.
func (s *AuthService) Authorize(ctx context.Context, principal *models.Principal, permission rbac.Permission) error {
	if principal == nil {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	store, ok := s.stores[principal.Kind]
	if !ok || store == nil {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}

	account, err := store.FindAccountByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPrincipalNotFound, "")
		}
		return appErrors.Upstream(err, "load principal role")
	}
	principal.Role = account.Role

	if !s.table.HasPermission(account.Role, permission) {
		s.metrics.RecordAuthentication("authorize", AuthResultForbidden)
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	s.metrics.RecordAuthentication("authorize", AuthResultSuccess)
	return nil
}

// Can reports whether the principal holds the permission, without failing on denial.
func (s *AuthService) Can(ctx context.Context, principal *models.Principal, permission rbac.Permission) (bool, error) {
	err := s.Authorize(ctx, principal, permission)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, appErrors.ErrForbidden) {
		return false, nil
	}
	return false, err
}

func (s *AuthService) recordAudit(ctx context.Context, principal *models.Principal, action, resource, ip, userAgent string) {
	if principal == nil {
		return
	}
	writeAudit(ctx, s.audit, s.logger, principal, action, resource, principal.ID, nil, models.RequestMeta{IP: ip, UserAgent: userAgent})
}

func acceptsKind(kinds []models.PrincipalKind, kind models.PrincipalKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func accountInfo(account *models.Account) models.AccountInfo {
	return models.AccountInfo{
		ID:        account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		UserName:  account.UserName,
		Role:      account.Role,
	}
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
