package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/dto"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
)

type userFixture struct {
	svc         *UserService
	repo        *fakeUserRepo
	tokens      *fakeTokenRepo
	mailer      *fakeDispatcher
	audit       *fakeAuditWriter
	credentials *CredentialService
	clock       *fakeClock
}

func newUserFixture(t *testing.T, users ...*models.User) *userFixture {
	t.Helper()
	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
	credentials := newTestCredentials(clock)
	repo := newFakeUserRepo(users...)
	bookings := newFakeBookingRepo()
	reviews := newFakeReviewRepo()
	tokens := newFakeTokenRepo()
	mailer := &fakeDispatcher{}
	audit := &fakeAuditWriter{}
	svc := NewUserService(repo, bookings, reviews, tokens, credentials, mailer, audit, nil, zap.NewNop(), UserConfig{FrontendURL: "https://tutorhub.test/"})
	svc.now = clock.Now
	return &userFixture{svc: svc, repo: repo, tokens: tokens, mailer: mailer, audit: audit, credentials: credentials, clock: clock}
}

func registerRequest(name string) dto.RegisterUserRequest {
	return dto.RegisterUserRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "555-0100",
		UserName:    name,
		Email:       name + "@Example.com",
		Password:    "password123",
	}
}

func TestUserServiceRegister(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, registerRequest("ada"), models.RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, f.credentials.VerifyPassword("password123", user.PasswordHash))

	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To)
	assert.Equal(t, "User Account Created!", sent[0].Subject)
	assert.Equal(t, []string{models.AuditActionRegister}, f.audit.actions())

	_, err = f.svc.Register(ctx, registerRequest("ada"), models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)

	// Same email under another user name still collides.
	other := registerRequest("lovelace")
	other.Email = "ada@example.com"
	_, err = f.svc.Register(ctx, other, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)
}

func TestUserServiceRegisterValidationAndRace(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	bad := registerRequest("ada")
	bad.Email = "not-an-email"
	_, err := f.svc.Register(ctx, bad, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	f.repo.createErr = repository.ErrDuplicateAccount
	_, err = f.svc.Register(ctx, registerRequest("ada"), models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)
	assert.Empty(t, f.mailer.messages())
}

func TestUserServiceCreateRoleGrants(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := &models.Principal{ID: "admin-1", Kind: models.PrincipalUser, Role: models.RoleAdmin}
	super := &models.Principal{ID: "root-1", Kind: models.PrincipalUser, Role: models.RoleSuperAdmin}

	user, err := f.svc.Create(ctx, admin, dto.CreateUserRequest{RegisterUserRequest: registerRequest("grace"), Role: "admin"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = f.svc.Create(ctx, admin, dto.CreateUserRequest{RegisterUserRequest: registerRequest("linus"), Role: "superadmin"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	user, err = f.svc.Create(ctx, super, dto.CreateUserRequest{RegisterUserRequest: registerRequest("linus"), Role: "superadmin"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, user.Role)

	_, err = f.svc.Create(ctx, super, dto.CreateUserRequest{RegisterUserRequest: registerRequest("ken"), Role: "teacher"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceUpdateRules(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", FirstName: "Ada", Role: models.RoleUser}
	bob := &models.User{ID: "u2", UserName: "bob", Email: "bob@example.com", FirstName: "Bob", Role: models.RoleUser}
	f := newUserFixture(t, ada, bob)
	ctx := context.Background()
	self := &models.Principal{ID: "u1", Kind: models.PrincipalUser, Role: models.RoleUser}
	admin := &models.Principal{ID: "admin-1", Kind: models.PrincipalUser, Role: models.RoleAdmin}
	name := "Augusta"
	role := "admin"
	superRole := "superadmin"

	updated, err := f.svc.Update(ctx, self, "u1", dto.UpdateUserRequest{FirstName: &name}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, f.clock.now, updated.UpdatedAt)

	_, err = f.svc.Update(ctx, self, "u2", dto.UpdateUserRequest{FirstName: &name}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Update(ctx, self, "u1", dto.UpdateUserRequest{Role: &role}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	// A teacher sharing the id is not the same account.
	_, err = f.svc.Update(ctx, &models.Principal{ID: "u1", Kind: models.PrincipalTeacher, Role: models.RoleTeacher}, "u1", dto.UpdateUserRequest{FirstName: &name}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	updated, err = f.svc.Update(ctx, admin, "u2", dto.UpdateUserRequest{Role: &role}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = f.svc.Update(ctx, admin, "u2", dto.UpdateUserRequest{Role: &superRole}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.Update(ctx, admin, "missing", dto.UpdateUserRequest{FirstName: &name}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUserServiceProfileAndDelete(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", Role: models.RoleUser}
	f := newUserFixture(t, ada)
	ctx := context.Background()

	profile, err := f.svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.UserName)
	assert.Empty(t, profile.Bookings)
	assert.Empty(t, profile.Reviews)

	require.NoError(t, f.svc.Delete(ctx, &models.Principal{ID: "admin-1", Kind: models.PrincipalUser, Role: models.RoleAdmin}, "u1", models.RequestMeta{}))
	_, err = f.svc.Get(ctx, "u1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, nil, "u1", models.RequestMeta{}), appErrors.ErrNotFound)
}

func TestUserServicePasswordResetIsSingleUse(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", FirstName: "Ada", Role: models.RoleUser}
	f := newUserFixture(t, ada)
	ctx := context.Background()

	err := f.svc.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, f.svc.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "ADA@example.com"}))
	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset Password", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "https://tutorhub.test/reset-password/reset-1")

	require.NoError(t, f.svc.VerifyResetToken(ctx, "reset-1"))
	assert.ErrorIs(t, f.svc.VerifyResetToken(ctx, "reset-9"), appErrors.ErrNotFound)

	req := models.ResetPasswordRequest{ResetToken: "reset-1", Password: "newpassword"}
	require.NoError(t, f.svc.ResetPassword(ctx, req, models.RequestMeta{}))
	assert.True(t, f.credentials.VerifyPassword("newpassword", f.tokens.passwords["u1"]))

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, req, models.RequestMeta{}), appErrors.ErrInvalidState)
	assert.ErrorIs(t, f.svc.VerifyResetToken(ctx, "reset-1"), appErrors.ErrInvalidState)
	assert.Contains(t, f.audit.actions(), models.AuditActionPasswordReset)
}

func TestUserServiceResetTokenExpires(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", Role: models.RoleUser}
	f := newUserFixture(t, ada)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "ada@example.com"}))
	f.clock.now = f.clock.now.Add(2*time.Hour + time.Second)

	err := f.svc.ResetPassword(ctx, models.ResetPasswordRequest{ResetToken: "reset-1", Password: "newpassword"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)
	assert.Empty(t, f.tokens.passwords)
}

func TestUserServiceEmailVerification(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", FirstName: "Ada", Role: models.RoleUser}
	f := newUserFixture(t, ada)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestEmailVerification(ctx, "u1"))
	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	idx := strings.Index(sent[0].Body, "/verify-email/")
	require.NotEqual(t, -1, idx)
	token := strings.TrimSpace(sent[0].Body[idx+len("/verify-email/"):])

	require.NoError(t, f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Token: token}, models.RequestMeta{}))
	assert.True(t, f.tokens.verified["u1"])

	err := f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Token: token}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidState)

	err = f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Token: "garbage"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)

	f.repo.users["u1"].Verified = true
	assert.ErrorIs(t, f.svc.RequestEmailVerification(ctx, "u1"), appErrors.ErrInvalidState)
}

func TestUserServiceEmailVerificationExpires(t *testing.T) {
	ada := &models.User{ID: "u1", UserName: "ada", Email: "ada@example.com", Role: models.RoleUser}
	f := newUserFixture(t, ada)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestEmailVerification(ctx, "u1"))
	body := f.mailer.messages()[0].Body
	token := strings.TrimSpace(body[strings.Index(body, "/verify-email/")+len("/verify-email/"):])

	f.clock.now = f.clock.now.Add(time.Hour + time.Second)
	err := f.svc.VerifyEmail(ctx, models.VerifyEmailRequest{Token: token}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
	assert.False(t, f.tokens.verified["u1"])
}
