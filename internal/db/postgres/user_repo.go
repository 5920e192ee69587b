package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, location, latitude, longitude, temperature, search_scope, avatar_url, created_at, updated_at`

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, location, latitude, longitude, temperature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.Location, user.Latitude, user.Longitude, user.Temperature)

	created, err := scanUser(row)
	if err != nil {
		if conflictErr := userConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, for login
func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateUsername renames a user; the unique index surfaces duplicates
func (r *postgresUserRepo) UpdateUsername(ctx context.Context, id int64, username string) (*users.User, error) {
	query := `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		if conflictErr := userConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to update username: %w", err)
	}

	return user, nil
}

// UpdateLocation moves the user to a new neighborhood label and coordinate
func (r *postgresUserRepo) UpdateLocation(ctx context.Context, id int64, location string, lat, lng float64) (*users.User, error) {
	query := `
		UPDATE users
		SET location = $2, latitude = $3, longitude = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, location, lat, lng))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return user, nil
}

// UpdateSearchScope changes the user's discovery radius
func (r *postgresUserRepo) UpdateSearchScope(ctx context.Context, id int64, scope float64) (*users.User, error) {
	query := `
		UPDATE users
		SET search_scope = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, scope))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update search scope: %w", err)
	}

	return user, nil
}

// UpdatePassword stores a new password hash
func (r *postgresUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return users.ErrUserNotFound
	}

	return nil
}

// Warmest returns up to limit users by temperature descending, lowest id
// first on ties
func (r *postgresUserRepo) Warmest(ctx context.Context, limit int) ([]*users.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY temperature DESC, id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query warmest users: %w", err)
	}
	defer closeRows(rows)

	var result []*users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return result, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*users.User, error) {
	user := &users.User{}
	var avatarURL sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Location, &user.Latitude, &user.Longitude,
		&user.Temperature, &user.SearchScope, &avatarURL,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	return user, nil
}

// userConflict maps unique-constraint violations to the conflict sentinels
func userConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return users.ErrUsernameTaken
	case "users_email_key":
		return users.ErrEmailTaken
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", slog.String("error", err.Error()))
	}
}
