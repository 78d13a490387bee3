package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PrincipalKind names the account collection a credential was issued for.
type PrincipalKind string

const (
	PrincipalUser    PrincipalKind = "user"
	PrincipalTeacher PrincipalKind = "teacher"
)

// Principal is the identity resolved for an authenticated request.
type Principal struct {
	ID   string        `json:"id"`
	Kind PrincipalKind `json:"kind"`
	Role UserRole      `json:"role"`
}

// Account is the subset of a user or teacher record needed to authenticate it.
type Account struct {
	ID           string
	Kind         PrincipalKind
	UserName     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         UserRole
}

// Principal derives the request principal of the account.
func (a *Account) Principal() *Principal {
	return &Principal{ID: a.ID, Kind: a.Kind, Role: a.Role}
}

// LoginRequest holds credentials for authenticating by user name or email.
type LoginRequest struct {
	UserName  string `json:"userName" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AccountInfo describes the authenticated account in login responses.
type AccountInfo struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	UserName  string   `json:"userName"`
	Role      UserRole `json:"role"`
}

// SessionLoginResponse is returned by the session login endpoints.
type SessionLoginResponse struct {
	Message string      `json:"message"`
	User    AccountInfo `json:"user"`
}

// TokenLoginResponse is returned by the token login endpoints.
type TokenLoginResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        AccountInfo `json:"user"`
}

// TokenPurpose separates login bearer tokens from single-purpose tokens.
type TokenPurpose string

const (
	TokenPurposeLogin       TokenPurpose = "login"
	TokenPurposeVerifyEmail TokenPurpose = "verify_email"
)

// TokenClaims represents the JWT payload of issued tokens.
type TokenClaims struct {
	Kind    PrincipalKind `json:"kind"`
	Purpose TokenPurpose  `json:"purpose"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *TokenClaims) UserID() string {
	return c.Subject
}

// Session is the server-held state behind a session cookie.
type Session struct {
	ID        string        `json:"-"`
	UserID    string        `json:"userId"`
	Kind      PrincipalKind `json:"kind"`
	CreatedAt time.Time     `json:"createdAt"`
}
