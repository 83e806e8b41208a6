package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campuslend/campuslend/internal/model"
)

const userColumns = `id, username, email, password_hash, school, program,
	rating_sum, rating_count, created_at, deleted_at`

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash, school, program string) (*model.User, error) {
	id := NewID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, school, program)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, username, email, passwordHash, school, program,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if it does not exist.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	return getUserWhere(ctx, db, "id = ?", id)
}

// GetUserByUsername returns a user by username (including soft-deleted for auth checks).
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	return getUserWhere(ctx, db, "username = ?", username)
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return getUserWhere(ctx, db, "email = ?", email)
}

func getUserWhere(ctx context.Context, db *sql.DB, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var school, program sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &school, &program,
		&u.RatingSum, &u.RatingCount, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.School = school.String
	u.Program = program.String
	return u, nil
}

// IncrementUserRating applies a rating delta to a user's reputation counters.
// The increment is a single atomic statement so concurrent ratings cannot
// lose updates.
func IncrementUserRating(ctx context.Context, db *sql.DB, id string, ratingDelta, countDelta int) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET rating_sum = rating_sum + ?, rating_count = rating_count + ?
		 WHERE id = ? AND deleted_at IS NULL`,
		ratingDelta, countDelta, id,
	)
	if err != nil {
		return fmt.Errorf("incrementing user rating: %w", err)
	}
	return nil
}

// UpdateUserProfile updates a user's school and program.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id, school, program string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET school = ?, program = ? WHERE id = ? AND deleted_at IS NULL`,
		school, program, id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
