package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/bakery-storefront/internal/domain/user"
)

const userColumns = `id, subject_id, phone, name, email, date_of_birth, addresses,
	preferences, loyalty_points, is_active, last_login_at, created_at, updated_at`

// PostgresUserStore persists user accounts in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore creates a user store backed by the given database.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// GetByID retrieves a user by internal ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetBySubject retrieves a user by identity provider subject.
func (s *PostgresUserStore) GetBySubject(ctx context.Context, subjectID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE subject_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, subjectID))
}

// Create inserts a new user. A duplicate phone number yields ErrPhoneTaken.
func (s *PostgresUserStore) Create(ctx context.Context, u *user.User) error {
	addresses, _ := json.Marshal(u.Addresses)
	preferences, _ := json.Marshal(u.Preferences)

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.SubjectID, u.Phone, u.Name, u.Email, u.DateOfBirth, addresses,
		preferences, u.LoyaltyPoints, u.IsActive, u.LastLoginAt, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err, "users_phone_key") {
		return user.ErrPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update rewrites a user's mutable fields.
func (s *PostgresUserStore) Update(ctx context.Context, u *user.User) error {
	addresses, _ := json.Marshal(u.Addresses)
	preferences, _ := json.Marshal(u.Preferences)

	query := `UPDATE users SET
			phone = NULLIF($2, ''),
			name = $3,
			email = $4,
			date_of_birth = $5,
			addresses = $6,
			preferences = $7,
			loyalty_points = $8,
			is_active = $9,
			last_login_at = $10,
			updated_at = $11
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		u.ID, u.Phone, u.Name, u.Email, u.DateOfBirth, addresses,
		preferences, u.LoyaltyPoints, u.IsActive, u.LastLoginAt, u.UpdatedAt)
	if isUniqueViolation(err, "users_phone_key") {
		return user.ErrPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return user.ErrNotFound
	}
	return nil
}

// AdjustLoyaltyPoints shifts a user's loyalty balance by delta, never below
// zero.
func (s *PostgresUserStore) AdjustLoyaltyPoints(ctx context.Context, id string, delta int) error {
	query := `UPDATE users
		SET loyalty_points = GREATEST(0, loyalty_points + $2), updated_at = $3
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, delta, time.Now())
	if err != nil {
		return fmt.Errorf("failed to adjust loyalty points: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) scanOne(row *sql.Row) (*user.User, error) {
	var u user.User
	var phone sql.NullString
	var addresses, preferences []byte

	err := row.Scan(&u.ID, &u.SubjectID, &phone, &u.Name, &u.Email, &u.DateOfBirth,
		&addresses, &preferences, &u.LoyaltyPoints, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Phone = phone.String
	json.Unmarshal(addresses, &u.Addresses)
	json.Unmarshal(preferences, &u.Preferences)
	return &u, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
