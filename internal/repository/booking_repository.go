package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

const bookingColumns = `b.id, b.user_id, b.teacher_id, b.date, b.timeslot_day AS "timeslot.day", b.timeslot_start AS "timeslot.start_time", b.timeslot_end AS "timeslot.end_time", b.grade, b.area, b.subject, b.status, b.cancellation_reason, b.closure_reason, b.created_at, b.updated_at`

// BookingRepository persists bookings and the per-user and per-teacher booking id lists.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts the booking and appends its id to both parties' lists in one transaction.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking tx: %w", err)
	}

	const insertBooking = `INSERT INTO bookings (id, user_id, teacher_id, date, timeslot_day, timeslot_start, timeslot_end, grade, area, subject, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := tx.ExecContext(ctx, insertBooking,
		booking.ID, booking.UserID, booking.TeacherID, booking.Date,
		booking.TimeSlot.Day, booking.TimeSlot.StartTime, booking.TimeSlot.EndTime,
		booking.Grade, booking.Area, booking.Subject, booking.Status, booking.CreatedAt, booking.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert booking: %w", err)
	}

	const linkUser = `INSERT INTO user_bookings (user_id, booking_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, linkUser, booking.UserID, booking.ID, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("link booking to user: %w", err)
	}

	const linkTeacher = `INSERT INTO teacher_bookings (teacher_id, booking_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, linkTeacher, booking.TeacherID, booking.ID, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("link booking to teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create booking tx: %w", err)
	}
	return nil
}

// FindByID fetches a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1 LIMIT 1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

// ListByUser resolves the user's booking id list, newest lesson first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN user_bookings ub ON ub.booking_id = b.id WHERE ub.user_id = $1 ORDER BY b.date DESC`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

// ListByTeacher resolves the teacher's booking id list, newest lesson first.
func (r *BookingRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN teacher_bookings tb ON tb.booking_id = b.id WHERE tb.teacher_id = $1 ORDER BY b.date DESC`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher bookings: %w", err)
	}
	return bookings, nil
}

// List returns bookings for administrators. A negative PageSize disables paging.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings b WHERE 1=1"
	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY b.created_at DESC", bookingColumns, base)
	if filter.PageSize >= 0 {
		page, pageSize := normalizePage(filter.Page, filter.PageSize)
		listQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// UpdateStatus moves a booking from one status to another. The write is conditional on the
// stored status still being from; otherwise ErrBookingStateChanged is returned.
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET status = $1, cancellation_reason = $2, closure_reason = $3, updated_at = $4 WHERE id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, booking.Status, booking.CancellationReason, booking.ClosureReason, booking.UpdatedAt, booking.ID, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if err := expectAffected(res); err != nil {
		if err == sql.ErrNoRows {
			return ErrBookingStateChanged
		}
		return err
	}
	return nil
}

// DeletePending removes a pending booking and its list entries in one transaction.
func (r *BookingRepository) DeletePending(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete booking tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND status = $2`, id, models.BookingPending)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete booking: %w", err)
	}
	if err := expectAffected(res); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrBookingStateChanged
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_bookings WHERE booking_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("unlink booking from user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_bookings WHERE booking_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("unlink booking from teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete booking tx: %w", err)
	}
	return nil
}
