package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	"github.com/noah-isme/tutorhub-api/pkg/mail"
)

type fakeAccountStore struct {
	accounts []*models.Account
	err      error
}

func (f *fakeAccountStore) add(account *models.Account) {
	f.accounts = append(f.accounts, account)
}

func (f *fakeAccountStore) remove(id string) {
	for i, a := range f.accounts {
		if a.ID == id {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return
		}
	}
}

func (f *fakeAccountStore) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountStore) FindAccountByLogin(ctx context.Context, userName, email string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if (userName != "" && a.UserName == userName) || (email != "" && a.Email == email) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeSessionStore struct {
	sessions map[string]*models.Session
	findErr  error
	deleted  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.Session, ttl time.Duration) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) Find(ctx context.Context, id string) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuditWriter struct {
	logs []*models.AuditLog
}

func (f *fakeAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAuditWriter) actions() []string {
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeDispatcher) Dispatch(msg mail.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeDispatcher) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type fakeUserRepo struct {
	users     map[string]*models.User
	order     []string
	err       error
	createErr error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
		repo.order = append(repo.order, u.ID)
	}
	return repo
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.FindByLogin(ctx, "", email)
}

func (f *fakeUserRepo) FindByLogin(ctx context.Context, userName, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, id := range f.order {
		u := f.users[id]
		if u == nil {
			continue
		}
		if (userName != "" && u.UserName == userName) || (email != "" && u.Email == email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := []models.User{}
	for _, id := range f.order {
		if u := f.users[id]; u != nil {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.order)+1)
	}
	copied := *user
	f.users[user.ID] = &copied
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

type fakeTeacherRepo struct {
	teachers  map[string]*models.Teacher
	order     []string
	listCalls int
}

func newFakeTeacherRepo(teachers ...*models.Teacher) *fakeTeacherRepo {
	repo := &fakeTeacherRepo{teachers: map[string]*models.Teacher{}}
	for _, t := range teachers {
		repo.teachers[t.ID] = t
		repo.order = append(repo.order, t.ID)
	}
	return repo
}

func (f *fakeTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	f.listCalls++
	out := []models.Teacher{}
	for _, id := range f.order {
		if t := f.teachers[id]; t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeacherRepo) FindByLogin(ctx context.Context, userName, email string) (*models.Teacher, error) {
	for _, id := range f.order {
		t := f.teachers[id]
		if t != nil && ((userName != "" && t.UserName == userName) || (email != "" && t.Email == email)) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = fmt.Sprintf("teacher-%d", len(f.order)+1)
	}
	teacher.Role = models.RoleTeacher
	copied := *teacher
	f.teachers[teacher.ID] = &copied
	f.order = append(f.order, teacher.ID)
	return nil
}

func (f *fakeTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := f.teachers[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *teacher
	f.teachers[teacher.ID] = &copied
	return nil
}

func (f *fakeTeacherRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.teachers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.teachers, id)
	return nil
}

type fakeBookingRepo struct {
	bookings     map[string]*models.Booking
	userLists    map[string][]string
	teacherLists map[string][]string
	staleUpdate  bool
	seq          int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*models.Booking{}, userLists: map[string][]string{}, teacherLists: map[string][]string{}}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		f.seq++
		booking.ID = fmt.Sprintf("booking-%d", f.seq)
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	f.userLists[booking.UserID] = append(f.userLists[booking.UserID], booking.ID)
	f.teacherLists[booking.TeacherID] = append(f.teacherLists[booking.TeacherID], booking.ID)
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) resolve(ids []string) []models.Booking {
	out := []models.Booking{}
	for _, id := range ids {
		if b := f.bookings[id]; b != nil {
			out = append(out, *b)
		}
	}
	return out
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return f.resolve(f.userLists[userID]), nil
}

func (f *fakeBookingRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	return f.resolve(f.teacherLists[teacherID]), nil
}

func (f *fakeBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	out := []models.Booking{}
	for _, b := range f.bookings {
		if filter.Status == nil || b.Status == *filter.Status {
			out = append(out, *b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error {
	stored, ok := f.bookings[booking.ID]
	if !ok || stored.Status != from || f.staleUpdate {
		return repository.ErrBookingStateChanged
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) DeletePending(ctx context.Context, id string) error {
	stored, ok := f.bookings[id]
	if !ok || stored.Status != models.BookingPending {
		return repository.ErrBookingStateChanged
	}
	delete(f.bookings, id)
	f.userLists[stored.UserID] = without(f.userLists[stored.UserID], id)
	f.teacherLists[stored.TeacherID] = without(f.teacherLists[stored.TeacherID], id)
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type fakeReviewRepo struct {
	teacherSide map[string][]models.TeacherReview
	userSide    map[string][]models.UserReview
	createErr   error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{teacherSide: map[string][]models.TeacherReview{}, userSide: map[string][]models.UserReview{}}
}

func (f *fakeReviewRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherReview, error) {
	return append([]models.TeacherReview{}, f.teacherSide[teacherID]...), nil
}

func (f *fakeReviewRepo) ListByUser(ctx context.Context, userID string) ([]models.UserReview, error) {
	return append([]models.UserReview{}, f.userSide[userID]...), nil
}

func (f *fakeReviewRepo) Exists(ctx context.Context, teacherID, userID string) (bool, error) {
	for _, r := range f.teacherSide[teacherID] {
		if r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) Create(ctx context.Context, review models.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.teacherSide[review.TeacherID] = append(f.teacherSide[review.TeacherID], review.TeacherSide())
	f.userSide[review.UserID] = append(f.userSide[review.UserID], review.UserSide())
	return nil
}

type fakeTokenRepo struct {
	resets        map[string]*models.ResetToken
	verifications map[string]*models.VerificationToken
	passwords     map[string]string
	verified      map[string]bool
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		resets:        map[string]*models.ResetToken{},
		verifications: map[string]*models.VerificationToken{},
		passwords:     map[string]string{},
		verified:      map[string]bool{},
	}
}

func (f *fakeTokenRepo) CreateResetToken(ctx context.Context, token *models.ResetToken) error {
	if token.ID == "" {
		token.ID = fmt.Sprintf("reset-%d", len(f.resets)+1)
	}
	copied := *token
	f.resets[token.ID] = &copied
	return nil
}

func (f *fakeTokenRepo) FindResetToken(ctx context.Context, id string) (*models.ResetToken, error) {
	t, ok := f.resets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokenRepo) ConsumeResetToken(ctx context.Context, token *models.ResetToken, passwordHash string) error {
	stored, ok := f.resets[token.ID]
	if !ok || stored.Expired {
		return sql.ErrNoRows
	}
	stored.Expired = true
	f.passwords[token.UserID] = passwordHash
	return nil
}

func (f *fakeTokenRepo) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	if token.ID == "" {
		token.ID = fmt.Sprintf("verify-%d", len(f.verifications)+1)
	}
	copied := *token
	f.verifications[token.Token] = &copied
	return nil
}

func (f *fakeTokenRepo) FindVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error) {
	t, ok := f.verifications[value]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokenRepo) ConsumeVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	stored, ok := f.verifications[token.Token]
	if !ok || stored.Expired {
		return sql.ErrNoRows
	}
	stored.Expired = true
	f.verified[token.UserID] = true
	return nil
}

type fakeCacheRepo struct {
	entries map[string][]byte
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

type staticPermissions struct {
	allowed map[string]bool
}

func (s staticPermissions) Can(ctx context.Context, principal *models.Principal, permission rbac.Permission) (bool, error) {
	if principal == nil {
		return false, nil
	}
	return s.allowed[principal.ID], nil
}
