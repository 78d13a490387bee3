package dto

import (
	"time"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// CreateBookingRequest defines the payload a user sends to book a teacher.
type CreateBookingRequest struct {
	TeacherID string          `json:"teacher" validate:"required"`
	Date      time.Time       `json:"date" validate:"required"`
	TimeSlot  models.TimeSlot `json:"timeslot"`
	Grade     string          `json:"grade" validate:"required"`
	Area      string          `json:"area" validate:"required"`
	Subject   string          `json:"subject" validate:"required"`
}

// UpdateBookingStatusRequest requests a lifecycle transition.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=pending accepted cancelled closed"`
	Reason *string              `json:"reason" validate:"omitempty,max=1000"`
}

// ExportFormat selects the rendering of a booking export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered export ready to be streamed to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
