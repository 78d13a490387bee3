package dto

// RegisterUserRequest is the self-service sign-up payload for learners.
type RegisterUserRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	UserName    string `json:"userName" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

// CreateUserRequest lets administrators create accounts with an explicit role.
type CreateUserRequest struct {
	RegisterUserRequest
	Role string `json:"role" validate:"required,oneof=superadmin admin user"`
}

// UpdateUserRequest carries optional profile changes; nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=1"`
	Role        *string `json:"role" validate:"omitempty,oneof=superadmin admin user"`
}

// RegisterTeacherRequest is the self-service sign-up payload for tutors.
type RegisterTeacherRequest struct {
	FirstName      string   `json:"firstName" validate:"required"`
	LastName       string   `json:"lastName" validate:"required"`
	UserName       string   `json:"userName" validate:"required,min=3"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Subjects       []string `json:"subjects" validate:"required,min=1,dive,required"`
	Area           string   `json:"area" validate:"required"`
	Availability   []string `json:"availability" validate:"required,min=1,dive,required"`
	CostPerHour    float64  `json:"costPerHour" validate:"gte=0"`
	Qualifications []string `json:"qualifications" validate:"required,min=1,dive,required"`
}

// UpdateTeacherRequest carries optional teacher profile changes.
type UpdateTeacherRequest struct {
	FirstName      *string  `json:"firstName" validate:"omitempty,min=1"`
	LastName       *string  `json:"lastName" validate:"omitempty,min=1"`
	Subjects       []string `json:"subjects" validate:"omitempty,dive,required"`
	Area           *string  `json:"area" validate:"omitempty,min=1"`
	Availability   []string `json:"availability" validate:"omitempty,dive,required"`
	CostPerHour    *float64 `json:"costPerHour" validate:"omitempty,gte=0"`
	Qualifications []string `json:"qualifications" validate:"omitempty,dive,required"`
}
