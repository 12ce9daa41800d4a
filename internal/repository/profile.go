package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/atinyakov/ProfileDesk/internal/models"
)

// PostgresProfileRepository stores each profile section of a user as one
// JSONB row. Cleared sections are soft-deleted and purged later by the
// db cleaner.
type PostgresProfileRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository using the provided *sql.DB.
func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

// GetSections returns the raw JSON of the requested, non-deleted sections of
// a user. Sections without a row are missing from the map.
func (s *PostgresProfileRepository) GetSections(ctx context.Context, userID string, sections []models.Section) (map[models.Section][]byte, error) {
	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = sec.String()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT section, data FROM profile_sections
		WHERE user_id = $1 AND deleted = false AND section = ANY($2)
	`, userID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("GetSections: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Section][]byte, len(sections))
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sec, err := models.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[sec] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetSections: %w", err)
	}
	return out, nil
}

// UpsertSection stores data as the new content of one section, reviving it
// if it was soft-deleted.
func (s *PostgresProfileRepository) UpsertSection(ctx context.Context, userID string, section models.Section, data []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profile_sections (user_id, section, data, updated_at, deleted)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (user_id, section) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at,
			deleted = false
	`, userID, section.String(), data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// DeleteSection soft-deletes one section. It reports whether a live row was found.
func (s *PostgresProfileRepository) DeleteSection(ctx context.Context, userID string, section models.Section) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE profile_sections SET deleted = true, updated_at = $3
		WHERE user_id = $1 AND section = $2 AND deleted = false
	`, userID, section.String(), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	return n > 0, nil
}
