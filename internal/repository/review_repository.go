package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// ReviewRepository stores the two denormalised halves of every review.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByTeacher returns the teacher-side reviews, oldest first.
func (r *ReviewRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error) {
	const query = `SELECT teacher_id, user_id, user_name, rating, comment, created_at FROM teacher_reviews WHERE teacher_id = $1 ORDER BY created_at ASC`
	reviews := []models.TeacherReview{}
	if err := r.db.SelectContext(ctx, &reviews, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher reviews: %w", err)
	}
	return reviews, nil
}

// ListByUser returns the user-side reviews, oldest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.UserReview, error) {
	const query = `SELECT user_id, teacher_id, rating, comment, created_at FROM user_reviews WHERE user_id = $1 ORDER BY created_at ASC`
	reviews := []models.UserReview{}
	if err := r.db.SelectContext(ctx, &reviews, query, userID); err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, nil
}

// Create writes both halves of the review in one transaction. The unique
// (teacher_id, user_id) constraint on teacher_reviews surfaces as ErrDuplicateReview.
func (r *ReviewRepository) Create(ctx context.Context, review models.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create review tx: %w", err)
	}

	teacherSide := review.TeacherSide()
	const insertTeacherSide = `INSERT INTO teacher_reviews (teacher_id, user_id, user_name, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertTeacherSide, teacherSide.TeacherID, teacherSide.UserID, teacherSide.UserName, teacherSide.Rating, teacherSide.Comment, teacherSide.Date); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("insert teacher review: %w", err)
	}

	userSide := review.UserSide()
	const insertUserSide = `INSERT INTO user_reviews (user_id, teacher_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insertUserSide, userSide.UserID, userSide.TeacherID, userSide.Rating, userSide.Comment, userSide.Date); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("insert user review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create review tx: %w", err)
	}
	return nil
}

// Exists reports whether the user already reviewed the teacher.
func (r *ReviewRepository) Exists(ctx context.Context, teacherID, userID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_reviews WHERE teacher_id = $1 AND user_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, teacherID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return true, nil
}
