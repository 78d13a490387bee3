package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

var bookingRowColumns = []string{"id", "user_id", "teacher_id", "date", "timeslot.day", "timeslot.start_time", "timeslot.end_time", "grade", "area", "subject", "status", "cancellation_reason", "closure_reason", "created_at", "updated_at"}

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:        "b1",
		UserID:    "u1",
		TeacherID: "t1",
		Date:      time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		TimeSlot:  models.TimeSlot{Day: "Tuesday", StartTime: "09:00", EndTime: "10:00"},
		Grade:     "JHS 2",
		Area:      "Osu",
		Subject:   "Mathematics",
	}
}

func TestBookingCreateWritesBothLists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)
	booking := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("b1", "u1", "t1", booking.Date, "Tuesday", "09:00", "10:00", "JHS 2", "Osu", "Mathematics", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_bookings").
		WithArgs("u1", "b1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_bookings").
		WithArgs("t1", "b1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), booking))
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRollsBackOnLinkFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_bookings").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingFindByIDScansTimeSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(bookingRowColumns).
		AddRow("b1", "u1", "t1", now, "Tuesday", "09:00", "10:00", "JHS 2", "Osu", "Mathematics", "accepted", nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings b WHERE b.id = $1")).
		WithArgs("b1").
		WillReturnRows(rows)

	booking, err := repo.FindByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", booking.TimeSlot.StartTime)
	assert.Equal(t, models.BookingAccepted, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusLostRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	booking := sampleBooking()
	booking.Status = models.BookingAccepted
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1")).
		WithArgs("accepted", nil, nil, sqlmock.AnyArg(), "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), booking, models.BookingPending)
	assert.ErrorIs(t, err, ErrBookingStateChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeletePending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1 AND status = $2")).
		WithArgs("b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_bookings WHERE booking_id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_bookings WHERE booking_id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeletePending(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteNotPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1 AND status = $2")).
		WithArgs("b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.DeletePending(context.Background(), "b1"), ErrBookingStateChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingFindByIDMalformedID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery("FROM bookings b WHERE b.id = \\$1").
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.FindByID(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, IsMalformedID(err))
	assert.False(t, IsMalformedID(sql.ErrConnDone))
	require.NoError(t, mock.ExpectationsWereMet())
}
