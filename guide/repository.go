package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/guidegen/database"
)

// ErrNotFound is returned for unknown guide IDs.
var ErrNotFound = errors.New("guide not found")

// Repository stores generated guides. Save assigns the guide's ID and
// creation time.
type Repository interface {
	Save(ctx context.Context, g *TravelGuide) error
	Get(ctx context.Context, id string) (*TravelGuide, error)
	Recent(ctx context.Context, limit int) ([]Summary, error)
}

// MemoryRepository keeps the most recent guides in memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	capacity int
	guides   map[string]*TravelGuide
	order    []string
	clock    func() time.Time
}

// NewMemoryRepository keeps up to capacity guides, evicting the oldest.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryRepository{
		capacity: capacity,
		guides:   make(map[string]*TravelGuide),
		clock:    time.Now,
	}
}

func (r *MemoryRepository) Save(_ context.Context, g *TravelGuide) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g.ID = uuid.NewString()
	g.CreatedAt = r.clock().UTC()
	copied := *g
	r.guides[g.ID] = &copied
	r.order = append(r.order, g.ID)
	if len(r.order) > r.capacity {
		delete(r.guides, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*TravelGuide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.guides[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]Summary, 0, limit)
	for _, id := range slices.Backward(r.order) {
		if len(out) == limit {
			break
		}
		out = append(out, summaryOf(r.guides[id]))
	}
	return out, nil
}

func summaryOf(g *TravelGuide) Summary {
	return Summary{
		ID:          g.ID,
		RunID:       g.RunID,
		Title:       g.Title,
		Destination: g.Destination,
		Generator:   g.Generator,
		CreatedAt:   g.CreatedAt,
	}
}

// StoreSource yields the database guide store once it is started.
// *database.Component implements it.
type StoreSource interface {
	Store() *database.GuideStore
}

// DBRepository stores guides as JSON records through the database store.
type DBRepository struct {
	source StoreSource
}

// NewDBRepository returns a repository reading the store from source on
// every call, so it can be built before the database is started.
func NewDBRepository(source StoreSource) *DBRepository {
	return &DBRepository{source: source}
}

func (r *DBRepository) store() (*database.GuideStore, error) {
	s := r.source.Store()
	if s == nil {
		return nil, errors.New("guide store is not started")
	}
	return s, nil
}

func (r *DBRepository) Save(ctx context.Context, g *TravelGuide) error {
	store, err := r.store()
	if err != nil {
		return err
	}

	rec := &database.GuideRecord{
		BaseModel:   database.BaseModel{ID: uuid.New()},
		RunID:       g.RunID,
		Destination: g.Destination,
		Title:       g.Title,
		Prompt:      g.Prompt,
		Generator:   g.Generator,
	}
	g.ID = rec.ID.String()
	g.CreatedAt = time.Now().UTC()
	rec.CreatedAt = g.CreatedAt

	if rec.Content, err = json.Marshal(g); err != nil {
		return fmt.Errorf("encode guide: %w", err)
	}
	if err := store.Save(ctx, rec); err != nil {
		g.ID = ""
		return err
	}
	return nil
}

func (r *DBRepository) Get(ctx context.Context, id string) (*TravelGuide, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	rec, err := store.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var g TravelGuide
	if err := json.Unmarshal(rec.Content, &g); err != nil {
		return nil, fmt.Errorf("decode guide %s: %w", id, err)
	}
	return &g, nil
}

func (r *DBRepository) Recent(ctx context.Context, limit int) ([]Summary, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	recs, err := store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(recs))
	for i, rec := range recs {
		out[i] = Summary{
			ID:          rec.ID.String(),
			RunID:       rec.RunID,
			Title:       rec.Title,
			Destination: rec.Destination,
			Generator:   rec.Generator,
			CreatedAt:   rec.CreatedAt,
		}
	}
	return out, nil
}
