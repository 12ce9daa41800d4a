// Package repository provides PostgreSQL persistence for users and their
// profile sections.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/ProfileDesk/internal/models"
)

// PostgresUserRepository implements user lookups and registration using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the specified ID exists in the database.
func (s *PostgresUserRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists failed: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new user row.
func (s *PostgresUserRepository) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, role, created_at) VALUES ($1, $2, $3)`,
		user.ID, string(user.Role), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("CreateUser failed: %w", err)
	}
	return nil
}
