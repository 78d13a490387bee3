package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin             = "LOGIN"
	AuditActionLogout            = "LOGOUT"
	AuditActionRegister          = "REGISTER"
	AuditActionUserCreate        = "USER_CREATE"
	AuditActionUserUpdate        = "USER_UPDATE"
	AuditActionUserDelete        = "USER_DELETE"
	AuditActionTeacherUpdate     = "TEACHER_UPDATE"
	AuditActionTeacherDelete     = "TEACHER_DELETE"
	AuditActionPasswordReset     = "PASSWORD_RESET"
	AuditActionEmailVerified     = "EMAIL_VERIFIED"
	AuditActionBookingCreate     = "BOOKING_CREATE"
	AuditActionBookingTransition = "BOOKING_TRANSITION"
	AuditActionBookingDelete     = "BOOKING_DELETE"
	AuditActionBookingExport     = "BOOKING_EXPORT"
	AuditActionReviewCreate      = "REVIEW_CREATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string        `db:"id" json:"id"`
	ActorID    *string       `db:"actor_id" json:"actor_id,omitempty"`
	ActorKind  PrincipalKind `db:"actor_kind" json:"actor_kind"`
	Action     string        `db:"action" json:"action"`
	Resource   string        `db:"resource" json:"resource"`
	ResourceID *string       `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte        `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string        `db:"ip_address" json:"ip_address"`
	UserAgent  string        `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// RequestMeta carries client details for audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}
