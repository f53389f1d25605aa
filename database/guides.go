package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuideStore persists generated guides.
type GuideStore struct {
	db *DB
}

// NewGuideStore returns a store backed by db.
func NewGuideStore(db *DB) *GuideStore {
	return &GuideStore{db: db}
}

// Save inserts rec, assigning an ID when it has none.
func (s *GuideStore) Save(ctx context.Context, rec *GuideRecord) error {
	if len(rec.Content) == 0 {
		return fmt.Errorf("guide content is empty")
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("save guide: %w", err)
	}
	return nil
}

// Get loads a guide by ID. Unknown or malformed IDs return ErrNotFound.
func (s *GuideStore) Get(ctx context.Context, id string) (*GuideRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec GuideRecord
	err = s.db.WithContext(ctx).First(&rec, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load guide %s: %w", id, err)
	}
	return &rec, nil
}

// Recent returns up to limit guides, newest first.
func (s *GuideStore) Recent(ctx context.Context, limit int) ([]GuideRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var recs []GuideRecord
	err := s.db.WithContext(ctx).
		Select("id", "created_at", "updated_at", "run_id", "destination", "title", "generator").
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	return recs, nil
}
