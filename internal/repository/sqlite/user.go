package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row.
//
// The primary key on username is the single source of truth for uniqueness;
// we let the INSERT hit the constraint rather than pre-checking, so two
// concurrent registrations of the same name cannot both succeed. A
// constraint violation is reported as a conflict, leaving any existing row
// untouched.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password, image_url) VALUES (?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.ImageURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user by their username.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, password, image_url FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&u.PasswordHash,
		&u.ImageURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// Delete removes a user row. The favorites cascade happens inside SQLite via
// the foreign key, so this is a single statement.
func (db *DB) Delete(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE username = ?`, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", username, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY
// constraint failure. modernc.org/sqlite does not export a typed constraint
// error, so the message text is the stable signal.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
