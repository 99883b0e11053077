package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
	"github.com/Kosench/tinyapp/internal/model"
)

var errUnknown = errors.New("unknown error")

var (
	urlRows   = []string{"short_code", "long_url", "owner_id", "created_at"}
	userRows  = []string{"id", "email", "password_hash", "created_at"}
	visitRows = []string{"short_code", "visitor_id", "visited_at"}
)

func setupMockDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db, mock
}

func TestPostgresURLRepository_Create(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	url := &model.URL{ShortCode: "abc123", LongURL: "https://example.com", OwnerID: "u1", CreatedAt: createdAt}

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("abc123", "https://example.com", "u1", createdAt).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))

		assert.NoError(t, repo.Create(context.TODO(), url))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code exists", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("abc123", "https://example.com", "u1", createdAt).
			WillReturnError(sql.ErrNoRows)

		err := repo.Create(context.TODO(), url)
		assert.ErrorIs(t, err, apperrors.ErrShortCodeExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("abc123", "https://example.com", "u1", createdAt).
			WillReturnError(errUnknown)

		err := repo.Create(context.TODO(), url)
		assert.ErrorIs(t, err, errUnknown)
		assert.True(t, apperrors.IsBusinessError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresURLRepository_Put(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresURLRepository(db)

	mock.ExpectExec(`INSERT INTO urls .* ON CONFLICT \(short_code\) DO UPDATE`).
		WithArgs("abc123", "https://example.com", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Put(context.TODO(), &model.URL{ShortCode: "abc123", LongURL: "https://example.com", OwnerID: "u1"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresURLRepository_Get(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectQuery(`SELECT .* FROM urls WHERE short_code`).
			WithArgs("nope00").
			WillReturnError(sql.ErrNoRows)

		url, err := repo.Get(context.TODO(), "nope00")
		assert.ErrorIs(t, err, apperrors.ErrURLNotFound)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .* FROM urls WHERE short_code`).
			WithArgs("abc123").
			WillReturnRows(sqlmock.NewRows(urlRows).AddRow("abc123", "https://example.com", "u1", createdAt))

		url, err := repo.Get(context.TODO(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, model.URL{ShortCode: "abc123", LongURL: "https://example.com", OwnerID: "u1", CreatedAt: createdAt}, *url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresURLRepository_UpdateDelete(t *testing.T) {
	t.Run("update missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectExec(`UPDATE urls SET long_url`).
			WithArgs("https://example.com", "nope00").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.TODO(), "nope00", "https://example.com")
		assert.ErrorIs(t, err, apperrors.ErrURLNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectExec(`UPDATE urls SET long_url`).
			WithArgs("https://example.com", "abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.TODO(), "abc123", "https://example.com"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectExec(`DELETE FROM urls`).
			WithArgs("nope00").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.TODO(), "nope00"), apperrors.ErrURLNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectExec(`DELETE FROM urls`).
			WithArgs("abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.TODO(), "abc123"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresURLRepository_ListByOwner(t *testing.T) {
	t.Run("owned URLs", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .* FROM urls WHERE owner_id = \$1 ORDER BY seq`).
			WithArgs("u2").
			WillReturnRows(sqlmock.NewRows(urlRows).AddRow("i3BoGr", "https://www.google.ca", "u2", createdAt))

		urls, err := repo.ListByOwner(context.TODO(), "u2")
		require.NoError(t, err)
		assert.Equal(t, []model.URL{{ShortCode: "i3BoGr", LongURL: "https://www.google.ca", OwnerID: "u2", CreatedAt: createdAt}}, urls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no owner skips the query", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		urls, err := repo.ListByOwner(context.TODO(), "")
		require.NoError(t, err)
		assert.Empty(t, urls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresURLRepository(db)

		mock.ExpectQuery(`SELECT .* FROM urls WHERE owner_id`).
			WithArgs("u2").
			WillReturnError(errUnknown)

		_, err := repo.ListByOwner(context.TODO(), "u2")
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepository_Create(t *testing.T) {
	user := &model.User{ID: "u1", Email: "a@example.com", PasswordHash: "hash"}

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "success"},
		{
			name:    "duplicate email",
			dbErr:   &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailKey},
			wantErr: apperrors.ErrEmailTaken,
		},
		{
			name:    "duplicate id",
			dbErr:   &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersPrimaryKey},
			wantErr: apperrors.ErrUserIDExists,
		},
		{
			name:    "unknown error",
			dbErr:   errUnknown,
			wantErr: errUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostgresUserRepository(db)

			exp := mock.ExpectExec(`INSERT INTO users`).
				WithArgs("u1", "a@example.com", "hash", sqlmock.AnyArg())
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Create(context.TODO(), user)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserRepository_FindByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresUserRepository(db)

		createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .* FROM users WHERE email`).
			WithArgs("a@example.com").
			WillReturnRows(sqlmock.NewRows(userRows).AddRow("u1", "a@example.com", "hash", createdAt))

		user, err := repo.FindByEmail(context.TODO(), "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresUserRepository(db)

		mock.ExpectQuery(`SELECT .* FROM users WHERE email`).
			WithArgs("b@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEmail(context.TODO(), "b@example.com")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty email", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresUserRepository(db)

		_, err := repo.FindByEmail(context.TODO(), "")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresVisitRepository(t *testing.T) {
	t.Run("append", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectExec(`INSERT INTO visits`).
			WithArgs("abc123", "v1", int64(1700000000000)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Append(context.TODO(), model.Visit{ShortCode: "abc123", VisitorID: "v1", TimestampMillis: 1700000000000})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("visits for", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectQuery(`SELECT .* FROM visits WHERE short_code = \$1 ORDER BY id`).
			WithArgs("abc123").
			WillReturnRows(sqlmock.NewRows(visitRows).
				AddRow("abc123", "v1", int64(1)).
				AddRow("abc123", "v2", int64(2)))

		visits, err := repo.VisitsFor(context.TODO(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, []model.Visit{
			{ShortCode: "abc123", VisitorID: "v1", TimestampMillis: 1},
			{ShortCode: "abc123", VisitorID: "v2", TimestampMillis: 2},
		}, visits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique visitors", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(DISTINCT visitor_id\) FROM visits`).
			WithArgs("abc123").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.UniqueVisitorCount(context.TODO(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresVisitRepository_DeleteFor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectExec(`DELETE FROM visits WHERE short_code`).
			WithArgs("abc123").
			WillReturnResult(sqlmock.NewResult(0, 3))

		assert.NoError(t, repo.DeleteFor(context.TODO(), "abc123"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no visits is not an error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectExec(`DELETE FROM visits WHERE short_code`).
			WithArgs("nope00").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.DeleteFor(context.TODO(), "nope00"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresVisitRepository(db)

		mock.ExpectExec(`DELETE FROM visits WHERE short_code`).
			WithArgs("abc123").
			WillReturnError(errUnknown)

		assert.ErrorIs(t, repo.DeleteFor(context.TODO(), "abc123"), errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
