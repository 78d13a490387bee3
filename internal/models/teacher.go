package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher represents a tutor offering lessons.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	FirstName      string         `db:"first_name" json:"firstName"`
	LastName       string         `db:"last_name" json:"lastName"`
	UserName       string         `db:"user_name" json:"userName"`
	Email          string         `db:"email" json:"email"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	Role           UserRole       `db:"role" json:"role"`
	Subjects       pq.StringArray `db:"subjects" json:"subjects"`
	Area           string         `db:"area" json:"area"`
	Availability   pq.StringArray `db:"availability" json:"availability"`
	CostPerHour    float64        `db:"cost_per_hour" json:"costPerHour"`
	Qualifications pq.StringArray `db:"qualifications" json:"qualifications"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// Account projects the credential-bearing fields of a teacher.
func (t *Teacher) Account() *Account {
	role := t.Role
	if role == "" {
		role = RoleTeacher
	}
	return &Account{
		ID:           t.ID,
		Kind:         PrincipalTeacher,
		UserName:     t.UserName,
		Email:        t.Email,
		FirstName:    t.FirstName,
		LastName:     t.LastName,
		PasswordHash: t.PasswordHash,
		Role:         role,
	}
}

// TeacherProfile is the public or self view of a teacher with reviews and, for the owner, bookings.
type TeacherProfile struct {
	Teacher
	Reviews  []TeacherReview `json:"reviews"`
	Bookings []Booking       `json:"bookings,omitempty"`
}
