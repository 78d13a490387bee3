package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// TokenRepository persists single-use reset and verification tokens. Consumption and
// the change it authorises commit together.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository constructs a TokenRepository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateResetToken stores a password reset token.
func (r *TokenRepository) CreateResetToken(ctx context.Context, token *models.ResetToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reset_tokens (id, user_id, expired, expired_at, created_at) VALUES (:id, :user_id, :expired, :expired_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

// FindResetToken fetches a reset token by id.
func (r *TokenRepository) FindResetToken(ctx context.Context, id string) (*models.ResetToken, error) {
	const query = `SELECT id, user_id, expired, expired_at, created_at FROM reset_tokens WHERE id = $1 LIMIT 1`
	var token models.ResetToken
	if err := r.db.GetContext(ctx, &token, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &token, nil
}

// ConsumeResetToken sets the new password hash and expires the token atomically. It
// returns sql.ErrNoRows when the token was consumed concurrently.
func (r *TokenRepository) ConsumeResetToken(ctx context.Context, token *models.ResetToken, passwordHash string) error {
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset password tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE reset_tokens SET expired = TRUE WHERE id = $1 AND expired = FALSE`, token.ID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("expire reset token: %w", err)
	}
	if err := expectAffected(res); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, now, token.UserID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset password tx: %w", err)
	}
	return nil
}

// CreateVerificationToken stores an email verification token.
func (r *TokenRepository) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO verification_tokens (id, user_id, token, expired, expired_at, created_at) VALUES (:id, :user_id, :token, :expired, :expired_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create verification token: %w", err)
	}
	return nil
}

// FindVerificationToken fetches a verification token by its signed value.
func (r *TokenRepository) FindVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error) {
	const query = `SELECT id, user_id, token, expired, expired_at, created_at FROM verification_tokens WHERE token = $1 LIMIT 1`
	var token models.VerificationToken
	if err := r.db.GetContext(ctx, &token, query, value); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find verification token: %w", err)
	}
	return &token, nil
}

// ConsumeVerificationToken marks the user verified and expires the token atomically.
func (r *TokenRepository) ConsumeVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin verify email tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE verification_tokens SET expired = TRUE WHERE id = $1 AND expired = FALSE`, token.ID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("expire verification token: %w", err)
	}
	if err := expectAffected(res); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET verified = TRUE, updated_at = $1 WHERE id = $2`, now, token.UserID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark user verified: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verify email tx: %w", err)
	}
	return nil
}
