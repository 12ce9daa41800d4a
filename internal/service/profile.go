package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/ProfileDesk/internal/completion"
	"github.com/atinyakov/ProfileDesk/internal/models"
)

var (
	// ErrInvalidSectionData is returned when a section body does not decode into the section shape.
	ErrInvalidSectionData = errors.New("invalid section data")
	// ErrSectionNotFound is returned when clearing a section that holds no data.
	ErrSectionNotFound = errors.New("section not found")
)

// ProfileRepository defines the persistence operations needed by the ProfileService.
type ProfileRepository interface {
	// GetSections returns the raw JSON of the requested sections that have data.
	GetSections(ctx context.Context, userID string, sections []models.Section) (map[models.Section][]byte, error)
	// UpsertSection replaces the content of one section.
	UpsertSection(ctx context.Context, userID string, section models.Section, data []byte) error
	// DeleteSection clears one section and reports whether it held data.
	DeleteSection(ctx context.Context, userID string, section models.Section) (bool, error)
}

// ProfileService implements reading, saving and clearing profile sections.
type ProfileService struct {
	repo  ProfileRepository
	users UserRepository
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo ProfileRepository, users UserRepository) *ProfileService {
	return &ProfileService{repo: repo, users: users}
}

// Profile assembles the full profile record of userID. Sections without
// data are left nil.
func (s *ProfileService) Profile(ctx context.Context, userID string) (models.ProfileRecord, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return models.ProfileRecord{}, err
	}

	raw, err := s.repo.GetSections(ctx, userID, models.Sections())
	if err != nil {
		return models.ProfileRecord{}, err
	}

	var rec models.ProfileRecord
	for sec, data := range raw {
		v, err := models.DecodeSection(sec, data)
		if err != nil {
			return models.ProfileRecord{}, fmt.Errorf("corrupt stored section: %w", err)
		}
		if err := rec.SetSection(sec, v); err != nil {
			return models.ProfileRecord{}, err
		}
	}
	return rec, nil
}

// SaveSection validates body against the section shape and stores its
// normalised JSON form.
func (s *ProfileService) SaveSection(ctx context.Context, userID string, section models.Section, body []byte) error {
	if !section.Valid() {
		return fmt.Errorf("%w: %d", models.ErrUnknownSection, int(section))
	}
	v, err := models.DecodeSection(section, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSectionData, err)
	}
	if v == nil {
		return fmt.Errorf("%w: %s must not be null", ErrInvalidSectionData, section)
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	normalized, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", section, err)
	}
	return s.repo.UpsertSection(ctx, userID, section, normalized)
}

// ClearSection removes the data of one section.
func (s *ProfileService) ClearSection(ctx context.Context, userID string, section models.Section) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	found, err := s.repo.DeleteSection(ctx, userID, section)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, section)
	}
	return nil
}

// Completion evaluates the completion predicates over the stored profile.
func (s *ProfileService) Completion(ctx context.Context, userID string) (models.CompletionState, error) {
	rec, err := s.Profile(ctx, userID)
	if err != nil {
		return models.CompletionState{}, err
	}
	return completion.Evaluate(rec), nil
}

func (s *ProfileService) ensureUser(ctx context.Context, userID string) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}
