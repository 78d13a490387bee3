// Package rbac holds the immutable role to permission table consulted by the
// authorization gate.
package rbac

import (
	"fmt"
	"sort"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

// Permission is a named capability checked against a role's allowed set.
type Permission string

const (
	CreateUser    Permission = "create_user"
	ReadUsers     Permission = "read_users"
	ReadUser      Permission = "read_user"
	UpdateUser    Permission = "update_user"
	DeleteUser    Permission = "delete_user"
	CreateTeacher Permission = "create_teacher"
	ReadTeachers  Permission = "read_teachers"
	ReadTeacher   Permission = "read_teacher"
	UpdateTeacher Permission = "update_teacher"
	DeleteTeacher Permission = "delete_teacher"
	CreateBooking Permission = "create_booking"
	ReadBooking   Permission = "read_booking"
	ReadBookings  Permission = "read_bookings"
	UpdateBooking Permission = "update_booking"
	DeleteBooking Permission = "delete_booking"
	CreateReview  Permission = "create_review"
)

// Entry binds one role to its permissions.
type Entry struct {
	Role        models.UserRole
	Permissions []Permission
}

// Table is a read-only role to permission lookup. The zero value denies everything.
type Table struct {
	roles map[models.UserRole]map[Permission]struct{}
}

// New builds a table from entries. Every role may appear at most once.
func New(entries ...Entry) (Table, error) {
	roles := make(map[models.UserRole]map[Permission]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := roles[entry.Role]; dup {
			return Table{}, fmt.Errorf("rbac: duplicate entry for role %q", entry.Role)
		}
		set := make(map[Permission]struct{}, len(entry.Permissions))
		for _, p := range entry.Permissions {
			set[p] = struct{}{}
		}
		roles[entry.Role] = set
	}
	return Table{roles: roles}, nil
}

// MustNew is New for statically known entries.
func MustNew(entries ...Entry) Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the production role table.
func Default() Table {
	return MustNew(
		Entry{Role: models.RoleSuperAdmin, Permissions: []Permission{
			CreateUser, ReadUsers, UpdateUser, DeleteUser, UpdateTeacher, ReadTeachers, DeleteTeacher, ReadBookings,
		}},
		Entry{Role: models.RoleAdmin, Permissions: []Permission{
			CreateUser, ReadUsers, UpdateUser, ReadTeachers, UpdateTeacher, DeleteTeacher, DeleteUser, ReadBookings,
		}},
		Entry{Role: models.RoleTeacher, Permissions: []Permission{
			UpdateTeacher, ReadTeacher, CreateTeacher, UpdateBooking, ReadBooking,
		}},
		Entry{Role: models.RoleUser, Permissions: []Permission{
			UpdateUser, ReadUser, UpdateBooking, ReadBooking, CreateBooking, DeleteBooking, CreateReview,
		}},
	)
}

// PermissionsFor returns the sorted permissions of role; unknown roles get none.
func (t Table) PermissionsFor(role models.UserRole) []Permission {
	set := t.roles[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasPermission reports whether role holds permission.
func (t Table) HasPermission(role models.UserRole, permission Permission) bool {
	_, ok := t.roles[role][permission]
	return ok
}
