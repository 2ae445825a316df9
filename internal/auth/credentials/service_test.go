package credentials

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoTuMD/Template-Admin/internal/db"
)

const testUserID = "6f1c2a9e-3b7d-4c1a-9a51-0f8e2d4b7c11"

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewService(&db.DB{DB: sqlDB}), mock
}

func TestRegisterCreatesUserAndCredentials(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credentials")).
		WithArgs(testUserID, sqlmock.AnyArg(), HashVersionBcrypt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := svc.Register(context.Background(), " A@X.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, testUserID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterExistingEmail(t *testing.T) {
	// holds for password accounts and federated-only users alike
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users")).
		WithArgs("b@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))
	mock.ExpectRollback()

	id, err := svc.Register(context.Background(), "B@x.com", "battery staple")
	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Empty(t, id)
	require.NoError(t, mock.ExpectationsWereMet(), "no credentials insert, no commit")
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Register(context.Background(), "a@x.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(context.Background(), "not-an-email", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	hash, version, err := HashPassword("correct horse")
	require.NoError(t, err)

	t.Run("valid password", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "hash_version"}).
				AddRow(testUserID, hash, version))

		id, err := svc.Authenticate(context.Background(), "a@x.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, testUserID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "hash_version"}).
				AddRow(testUserID, hash, version))

		_, err := svc.Authenticate(context.Background(), "a@x.com", "wrong horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email case is ignored", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "hash_version"}).
				AddRow(testUserID, hash, version))

		id, err := svc.Authenticate(context.Background(), " A@x.COM", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, testUserID, id)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
			WithArgs("b@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash", "hash_version"}))

		_, err := svc.Authenticate(context.Background(), "b@x.com", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com\t"))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, version, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.Equal(t, HashVersionBcrypt, version)
	assert.NoError(t, VerifyPassword(hash, "correct horse"))
	assert.Error(t, VerifyPassword(hash, "battery staple"))
}
