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

const teacherColumns = `id, first_name, last_name, user_name, email, password_hash, role, subjects, area, availability, cost_per_hour, qualifications, created_at, updated_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns every teacher ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers ORDER BY last_name ASC, first_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by id: %w", err)
	}
	return &teacher, nil
}

// FindByLogin returns the first teacher whose user name or email matches.
func (r *TeacherRepository) FindByLogin(ctx context.Context, userName, email string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE user_name = $1 OR email = $2 ORDER BY created_at ASC LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userName, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by login: %w", err)
	}
	return &teacher, nil
}

// FindAccountByID adapts FindByID for the authentication resolver.
func (r *TeacherRepository) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	teacher, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return teacher.Account(), nil
}

// FindAccountByLogin adapts FindByLogin for the authentication resolver.
func (r *TeacherRepository) FindAccountByLogin(ctx context.Context, userName, email string) (*models.Account, error) {
	teacher, err := r.FindByLogin(ctx, userName, email)
	if err != nil {
		return nil, err
	}
	return teacher.Account(), nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	teacher.Role = models.RoleTeacher

	const query = `INSERT INTO teachers (id, first_name, last_name, user_name, email, password_hash, role, subjects, area, availability, cost_per_hour, qualifications, created_at, updated_at)
VALUES (:id, :first_name, :last_name, :user_name, :email, :password_hash, :role, :subjects, :area, :availability, :cost_per_hour, :qualifications, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies teacher profile fields.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET first_name = :first_name, last_name = :last_name, subjects = :subjects, area = :area, availability = :availability, cost_per_hour = :cost_per_hour, qualifications = :qualifications, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a teacher; link and review rows cascade.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return expectAffected(res)
}
