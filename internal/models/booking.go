package models

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingCancelled BookingStatus = "cancelled"
	BookingClosed    BookingStatus = "closed"
)

// Valid reports whether the status belongs to the canonical set.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingCancelled, BookingClosed:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave the status.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingClosed
}

// bookingEdges lists the legal source states of every target state.
var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingAccepted:  {BookingPending},
	BookingCancelled: {BookingPending},
	BookingClosed:    {BookingPending, BookingAccepted},
}

// bookingRequesters names the party allowed to request each target state.
var bookingRequesters = map[BookingStatus]PrincipalKind{
	BookingAccepted:  PrincipalTeacher,
	BookingCancelled: PrincipalUser,
	BookingClosed:    PrincipalUser,
}

// CanTransition reports whether from -> to is an edge of the booking lifecycle.
func CanTransition(from, to BookingStatus) bool {
	for _, src := range bookingEdges[to] {
		if src == from {
			return true
		}
	}
	return false
}

// TransitionRequester returns the party kind allowed to move a booking into target.
func TransitionRequester(target BookingStatus) (PrincipalKind, bool) {
	kind, ok := bookingRequesters[target]
	return kind, ok
}

// TimeSlot is the weekly slot a booking occupies.
type TimeSlot struct {
	Day       string `db:"day" json:"day" validate:"required"`
	StartTime string `db:"start_time" json:"startTime" validate:"required"`
	EndTime   string `db:"end_time" json:"endTime" validate:"required"`
}

// Booking is a lesson request from a user to a teacher.
type Booking struct {
	ID                 string        `db:"id" json:"id"`
	UserID             string        `db:"user_id" json:"user"`
	TeacherID          string        `db:"teacher_id" json:"teacher"`
	Date               time.Time     `db:"date" json:"date"`
	TimeSlot           TimeSlot      `db:"timeslot" json:"timeslot"`
	Grade              string        `db:"grade" json:"grade"`
	Area               string        `db:"area" json:"area"`
	Subject            string        `db:"subject" json:"subject"`
	Status             BookingStatus `db:"status" json:"status"`
	CancellationReason *string       `db:"cancellation_reason" json:"cancellationReason,omitempty"`
	ClosureReason      *string       `db:"closure_reason" json:"closureReason,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`
}

// PartyKind returns which side of the booking the principal is, if any.
func (b *Booking) PartyKind(p *Principal) (PrincipalKind, bool) {
	if p == nil {
		return "", false
	}
	switch {
	case p.Kind == PrincipalUser && p.ID == b.UserID:
		return PrincipalUser, true
	case p.Kind == PrincipalTeacher && p.ID == b.TeacherID:
		return PrincipalTeacher, true
	}
	return "", false
}

// BookingFilter captures paging for administrative listings.
type BookingFilter struct {
	Status   *BookingStatus
	Page     int
	PageSize int
}
