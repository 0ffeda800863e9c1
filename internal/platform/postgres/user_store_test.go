package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

var userColumnNames = []string{"id", "email", "name", "role", "password_hash", "created_at", "updated_at"}

func TestUserStoreCreateHashesPassword(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	user, err := domain.NewUser("boss@example.com", "Boss", "secret1", time.Now())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "boss@example.com", "Boss", "manager", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), user))

	assert.Empty(t, user.Password, "plaintext must be cleared")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret1")))
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	user, err := domain.NewUser("boss@example.com", "Boss", "secret1", time.Now())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err = s.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserStoreGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	id := uuid.New()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE lower\\(email\\) = \\$1").
		WithArgs("boss@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(id.String(), "boss@example.com", "Boss", "admin", "$2a$04$hash", now, now))

	user, err := s.GetByEmail(context.Background(), " Boss@Example.com ")

	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "$2a$04$hash", user.HashedPassword)
}

func TestUserStoreGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestNewPostgresUserStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserStore(nil, 10, nil) })
}
