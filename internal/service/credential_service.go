package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/tutorhub-api/internal/models"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

// CredentialConfig holds the secrets and cost factors for credential handling.
type CredentialConfig struct {
	Secret     string
	BcryptCost int
	Issuer     string
}

// CredentialService hashes passwords and issues/verifies signed tokens.
type CredentialService struct {
	config CredentialConfig
	now    func() time.Time
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(config CredentialConfig) *CredentialService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &CredentialService{config: config, now: time.Now}
}

// WithClock replaces the time source used to stamp and validate tokens.
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	if now != nil {
		s.now = now
	}
	return s
}

// HashPassword returns the salted bcrypt digest of the plaintext.
func (s *CredentialService) HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), s.config.BcryptCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches the digest.
func (s *CredentialService) VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// IssueToken signs an HS256 token for the account with the given purpose and validity window.
func (s *CredentialService) IssueToken(userID string, kind models.PrincipalKind, purpose models.TokenPurpose, ttl time.Duration) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &models.TokenClaims{
		Kind:    kind,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// VerifyToken checks signature and expiry together. A well-signed token past its expiry
// fails with TOKEN_EXPIRED; anything else that does not verify, including a token
// issued for another purpose, fails with TOKEN_INVALID.
func (s *CredentialService) VerifyToken(token string, purpose models.TokenPurpose) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrTokenExpired.Code, appErrors.ErrTokenExpired.Status, appErrors.ErrTokenExpired.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Purpose != purpose {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "")
	}
	return claims, nil
}
