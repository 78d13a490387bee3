package handler

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
)

// In-memory stores standing in for the Postgres and Redis repositories.

type memUsers struct {
	mu    sync.Mutex
	rows  map[string]*models.User
	order []string
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]*models.User{}} }

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if u, ok := m.rows[id]; ok && match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) FindByLogin(ctx context.Context, userName, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return (userName != "" && u.UserName == userName) || (email != "" && u.Email == email)
	})
}

func (m *memUsers) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	u, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Account(), nil
}

func (m *memUsers) FindAccountByLogin(ctx context.Context, userName, email string) (*models.Account, error) {
	u, err := m.FindByLogin(ctx, userName, email)
	if err != nil {
		return nil, err
	}
	return u.Account(), nil
}

func (m *memUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, id := range m.order {
		if u, ok := m.rows[id]; ok {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	m.rows[user.ID] = &copied
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *user
	m.rows[user.ID] = &copied
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memTeachers struct {
	mu    sync.Mutex
	rows  map[string]*models.Teacher
	order []string
}

func newMemTeachers() *memTeachers { return &memTeachers{rows: map[string]*models.Teacher{}} }

func (m *memTeachers) find(match func(*models.Teacher) bool) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if t, ok := m.rows[id]; ok && match(t) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTeachers) List(ctx context.Context) ([]models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Teacher{}
	for _, id := range m.order {
		if t, ok := m.rows[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTeachers) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	return m.find(func(t *models.Teacher) bool { return t.ID == id })
}

func (m *memTeachers) FindByLogin(ctx context.Context, userName, email string) (*models.Teacher, error) {
	return m.find(func(t *models.Teacher) bool {
		return (userName != "" && t.UserName == userName) || (email != "" && t.Email == email)
	})
}

func (m *memTeachers) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	t, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Account(), nil
}

func (m *memTeachers) FindAccountByLogin(ctx context.Context, userName, email string) (*models.Account, error) {
	t, err := m.FindByLogin(ctx, userName, email)
	if err != nil {
		return nil, err
	}
	return t.Account(), nil
}

func (m *memTeachers) Create(ctx context.Context, teacher *models.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	teacher.ID = uuid.NewString()
	teacher.Role = models.RoleTeacher
	copied := *teacher
	m.rows[teacher.ID] = &copied
	m.order = append(m.order, teacher.ID)
	return nil
}

func (m *memTeachers) Update(ctx context.Context, teacher *models.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *teacher
	m.rows[teacher.ID] = &copied
	return nil
}

func (m *memTeachers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memBookings struct {
	mu   sync.Mutex
	rows map[string]*models.Booking
	// insertion order keeps listings stable
	order []string
}

func newMemBookings() *memBookings { return &memBookings{rows: map[string]*models.Booking{}} }

func (m *memBookings) Create(ctx context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.ID = uuid.NewString()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	m.rows[booking.ID] = &copied
	m.order = append(m.order, booking.ID)
	return nil
}

func (m *memBookings) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (m *memBookings) filter(match func(*models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, id := range m.order {
		if b, ok := m.rows[id]; ok && match(b) {
			out = append(out, *b)
		}
	}
	return out
}

func (m *memBookings) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return m.filter(func(b *models.Booking) bool { return b.UserID == userID }), nil
}

func (m *memBookings) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	return m.filter(func(b *models.Booking) bool { return b.TeacherID == teacherID }), nil
}

func (m *memBookings) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	out := m.filter(func(b *models.Booking) bool { return filter.Status == nil || b.Status == *filter.Status })
	return out, len(out), nil
}

func (m *memBookings) UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[booking.ID]
	if !ok || stored.Status != from {
		return repository.ErrBookingStateChanged
	}
	copied := *booking
	copied.UpdatedAt = time.Now().UTC()
	m.rows[booking.ID] = &copied
	return nil
}

func (m *memBookings) DeletePending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[id]
	if !ok || stored.Status != models.BookingPending {
		return repository.ErrBookingStateChanged
	}
	delete(m.rows, id)
	return nil
}

type memReviews struct {
	mu   sync.Mutex
	rows []models.Review
}

func (m *memReviews) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TeacherReview{}
	for _, r := range m.rows {
		if r.TeacherID == teacherID {
			out = append(out, r.TeacherSide())
		}
	}
	return out, nil
}

func (m *memReviews) ListByUser(ctx context.Context, userID string) ([]models.UserReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.UserReview{}
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r.UserSide())
		}
	}
	return out, nil
}

func (m *memReviews) Exists(ctx context.Context, teacherID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TeacherID == teacherID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviews) Create(ctx context.Context, review models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TeacherID == review.TeacherID && r.UserID == review.UserID {
			return repository.ErrDuplicateReview
		}
	}
	m.rows = append(m.rows, review)
	return nil
}

type memTokens struct {
	mu            sync.Mutex
	resets        map[string]*models.ResetToken
	verifications map[string]*models.VerificationToken
	users         *memUsers
}

func newMemTokens(users *memUsers) *memTokens {
	return &memTokens{resets: map[string]*models.ResetToken{}, verifications: map[string]*models.VerificationToken{}, users: users}
}

func (m *memTokens) CreateResetToken(ctx context.Context, token *models.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.NewString()
	copied := *token
	m.resets[token.ID] = &copied
	return nil
}

func (m *memTokens) FindResetToken(ctx context.Context, id string) (*models.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.resets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (m *memTokens) ConsumeResetToken(ctx context.Context, token *models.ResetToken, passwordHash string) error {
	m.mu.Lock()
	stored, ok := m.resets[token.ID]
	if !ok || stored.Expired {
		m.mu.Unlock()
		return sql.ErrNoRows
	}
	stored.Expired = true
	m.mu.Unlock()

	user, err := m.users.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return m.users.Update(ctx, user)
}

func (m *memTokens) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.NewString()
	copied := *token
	m.verifications[token.Token] = &copied
	return nil
}

func (m *memTokens) FindVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.verifications[value]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (m *memTokens) ConsumeVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	m.mu.Lock()
	stored, ok := m.verifications[token.Token]
	if !ok || stored.Expired {
		m.mu.Unlock()
		return sql.ErrNoRows
	}
	stored.Expired = true
	m.mu.Unlock()

	user, err := m.users.FindByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.Verified = true
	return m.users.Update(ctx, user)
}

type memSessions struct {
	mu   sync.Mutex
	rows map[string]models.Session
}

func newMemSessions() *memSessions { return &memSessions{rows: map[string]models.Session{}} }

func (m *memSessions) Create(ctx context.Context, session *models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[session.ID] = *session
	return nil
}

func (m *memSessions) Find(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *memAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}
