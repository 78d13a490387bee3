package models

import "time"

// ResetToken is a single-use password reset ticket; its ID is the link secret.
type ResetToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Expired   bool      `db:"expired" json:"expired"`
	ExpiredAt time.Time `db:"expired_at" json:"expiredAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Usable reports whether the token has neither been consumed nor outlived its window.
func (t *ResetToken) Usable(now time.Time) bool {
	return !t.Expired && !now.After(t.ExpiredAt)
}

// VerificationToken pairs a signed email verification token with its single-use record.
type VerificationToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Token     string    `db:"token" json:"-"`
	Expired   bool      `db:"expired" json:"expired"`
	ExpiredAt time.Time `db:"expired_at" json:"expiredAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Usable reports whether the token has neither been consumed nor outlived its window.
func (t *VerificationToken) Usable(now time.Time) bool {
	return !t.Expired && !now.After(t.ExpiredAt)
}

// ForgotPasswordRequest initiates the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	ResetToken string `json:"resetToken" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

// VerifyEmailRequest consumes an email verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}
