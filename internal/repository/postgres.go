package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
	"github.com/Kosench/tinyapp/internal/model"
)

const (
	uniqueViolationCode = "23505"

	usersPrimaryKey   = "users_pkey"
	usersEmailKey     = "users_email_key"
	databaseErrorCode = "DATABASE_ERROR"
	urlColumns        = "short_code, long_url, owner_id, created_at"
	userColumns       = "id, email, password_hash, created_at"
	visitColumns      = "short_code, visitor_id, visited_at"
)

func databaseError(message string, err error) error {
	return apperrors.NewBusinessError(databaseErrorCode, message, err)
}

type PostgresURLRepository struct {
	db *sql.DB
}

func NewPostgresURLRepository(db *sql.DB) *PostgresURLRepository {
	return &PostgresURLRepository{
		db: db,
	}
}

func (r *PostgresURLRepository) Put(ctx context.Context, url *model.URL) error {
	query := `
	INSERT INTO urls (short_code, long_url, owner_id, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (short_code) DO UPDATE
	SET long_url = EXCLUDED.long_url, owner_id = EXCLUDED.owner_id
	`

	_, err := r.db.ExecContext(ctx, query, url.ShortCode, url.LongURL, url.OwnerID, url.CreatedAt)
	if err != nil {
		return databaseError("failed to put URL", err)
	}

	return nil
}

func (r *PostgresURLRepository) Create(ctx context.Context, url *model.URL) error {
	// Атомарная вставка
	query := `
	INSERT INTO urls (short_code, long_url, owner_id, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (short_code) DO NOTHING
	RETURNING seq
	`

	var seq int64
	err := r.db.QueryRowContext(ctx, query, url.ShortCode, url.LongURL, url.OwnerID, url.CreatedAt).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrShortCodeExists
	}

	if err != nil {
		return databaseError("failed to create URL", err)
	}

	return nil
}

func (r *PostgresURLRepository) Get(ctx context.Context, shortCode string) (*model.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1`

	url := &model.URL{}
	err := r.db.QueryRowContext(ctx, query, shortCode).Scan(
		&url.ShortCode,
		&url.LongURL,
		&url.OwnerID,
		&url.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("URL with short code '%s': %w", shortCode, apperrors.ErrURLNotFound)
	}

	if err != nil {
		return nil, databaseError("failed to get URL", err)
	}

	return url, nil
}

func (r *PostgresURLRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, shortCode).Scan(&exists); err != nil {
		return false, databaseError("failed to check short code existence", err)
	}

	return exists, nil
}

func (r *PostgresURLRepository) Update(ctx context.Context, shortCode, longURL string) error {
	query := `UPDATE urls SET long_url = $1 WHERE short_code = $2`

	result, err := r.db.ExecContext(ctx, query, longURL, shortCode)
	if err != nil {
		return databaseError("failed to update URL", err)
	}

	return requireAffected(result, shortCode)
}

func (r *PostgresURLRepository) Delete(ctx context.Context, shortCode string) error {
	query := `DELETE FROM urls WHERE short_code = $1`

	result, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return databaseError("failed to delete URL", err)
	}

	return requireAffected(result, shortCode)
}

func (r *PostgresURLRepository) List(ctx context.Context) ([]model.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls ORDER BY seq`
	return r.queryURLs(ctx, query)
}

// ListByOwner читает по индексу idx_urls_owner_id
func (r *PostgresURLRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.URL, error) {
	if ownerID == "" {
		return []model.URL{}, nil
	}

	query := `SELECT ` + urlColumns + ` FROM urls WHERE owner_id = $1 ORDER BY seq`
	return r.queryURLs(ctx, query, ownerID)
}

func (r *PostgresURLRepository) queryURLs(ctx context.Context, query string, args ...interface{}) ([]model.URL, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, databaseError("failed to list URLs", err)
	}
	defer rows.Close()

	urls := make([]model.URL, 0)
	for rows.Next() {
		var url model.URL
		if err := rows.Scan(&url.ShortCode, &url.LongURL, &url.OwnerID, &url.CreatedAt); err != nil {
			return nil, databaseError("failed to scan URL", err)
		}
		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, databaseError("failed to list URLs", err)
	}

	return urls, nil
}

func requireAffected(result sql.Result, shortCode string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return databaseError("failed to read affected rows", err)
	}

	if affected == 0 {
		return fmt.Errorf("URL with short code '%s': %w", shortCode, apperrors.ErrURLNotFound)
	}

	return nil
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
	INSERT INTO users (id, email, password_hash, created_at)
	VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case usersPrimaryKey:
			return apperrors.ErrUserIDExists
		case usersEmailKey:
			return apperrors.ErrEmailTaken
		}
	}

	return databaseError("failed to create user", err)
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperrors.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}

	if err != nil {
		return nil, databaseError("failed to get user", err)
	}

	return user, nil
}

type PostgresVisitRepository struct {
	db *sql.DB
}

func NewPostgresVisitRepository(db *sql.DB) *PostgresVisitRepository {
	return &PostgresVisitRepository{
		db: db,
	}
}

func (r *PostgresVisitRepository) Append(ctx context.Context, visit model.Visit) error {
	query := `INSERT INTO visits (` + visitColumns + `) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, visit.ShortCode, visit.VisitorID, visit.TimestampMillis); err != nil {
		return databaseError("failed to append visit", err)
	}

	return nil
}

func (r *PostgresVisitRepository) VisitsFor(ctx context.Context, shortCode string) ([]model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE short_code = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, shortCode)
	if err != nil {
		return nil, databaseError("failed to list visits", err)
	}
	defer rows.Close()

	visits := make([]model.Visit, 0)
	for rows.Next() {
		var v model.Visit
		if err := rows.Scan(&v.ShortCode, &v.VisitorID, &v.TimestampMillis); err != nil {
			return nil, databaseError("failed to scan visit", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, databaseError("failed to list visits", err)
	}

	return visits, nil
}

func (r *PostgresVisitRepository) UniqueVisitorCount(ctx context.Context, shortCode string) (int, error) {
	query := `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE short_code = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, shortCode).Scan(&count); err != nil {
		return 0, databaseError("failed to count unique visitors", err)
	}

	return count, nil
}

func (r *PostgresVisitRepository) DeleteFor(ctx context.Context, shortCode string) error {
	query := `DELETE FROM visits WHERE short_code = $1`

	if _, err := r.db.ExecContext(ctx, query, shortCode); err != nil {
		return databaseError("failed to delete visits", err)
	}

	return nil
}
