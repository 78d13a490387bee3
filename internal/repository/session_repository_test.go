package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorhub-api/internal/models"
)

func TestSessionCreateAndFind(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRepository(client)

	session := &models.Session{ID: "sid-1", UserID: "u1", Kind: models.PrincipalTeacher, CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	payload, err := json.Marshal(session)
	require.NoError(t, err)

	mock.ExpectSet("session:sid-1", payload, 24*time.Hour).SetVal("OK")
	mock.ExpectGet("session:sid-1").SetVal(string(payload))

	require.NoError(t, repo.Create(context.Background(), session, 24*time.Hour))

	found, err := repo.Find(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", found.ID)
	assert.Equal(t, "u1", found.UserID)
	assert.Equal(t, models.PrincipalTeacher, found.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindUnknown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRepository(client)

	mock.ExpectGet("session:nope").RedisNil()

	_, err := repo.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindStoreFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRepository(client)

	mock.ExpectGet("session:sid-1").SetErr(errors.New("connection refused"))

	_, err := repo.Find(context.Background(), "sid-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionNotFound))
}

func TestSessionDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRepository(client)

	mock.ExpectDel("session:sid-1").SetVal(1)

	require.NoError(t, repo.Delete(context.Background(), "sid-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	value := []string{"a", "b"}
	payload, _ := json.Marshal(value)
	mock.ExpectSet("teachers:list", payload, time.Minute).SetVal("OK")
	mock.ExpectGet("teachers:list").SetVal(string(payload))

	require.NoError(t, repo.Set(context.Background(), "teachers:list", value, time.Minute))

	var got []string
	require.NoError(t, repo.Get(context.Background(), "teachers:list", &got))
	assert.Equal(t, value, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryDropsCorruptEntry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	mock.ExpectGet("teachers:list").SetVal("{not json")
	mock.ExpectDel("teachers:list").SetVal(1)

	var got []string
	assert.ErrorIs(t, repo.Get(context.Background(), "teachers:list", &got), ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryNilClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var got []string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &got), ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", got, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
}
