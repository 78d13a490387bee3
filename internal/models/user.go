package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleTeacher    UserRole = "teacher"
	RoleUser       UserRole = "user"
)

// IsAdministrative reports whether the role manages other accounts.
func (r UserRole) IsAdministrative() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// User represents a learner (or administrator) account stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	PhoneNumber  string    `db:"phone_number" json:"phoneNumber"`
	UserName     string    `db:"user_name" json:"userName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Verified     bool      `db:"verified" json:"verified"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Account projects the credential-bearing fields of a user.
func (u *User) Account() *Account {
	return &Account{
		ID:           u.ID,
		Kind:         PrincipalUser,
		UserName:     u.UserName,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

// UserProfile is the authenticated view of a user with their bookings and reviews.
type UserProfile struct {
	User
	Bookings []Booking    `json:"bookings"`
	Reviews  []UserReview `json:"reviews"`
}

// UserFilter captures paging for listing users.
type UserFilter struct {
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
