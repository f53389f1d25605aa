package guide

import (
	"bytes"
	"context"
	"encoding/json"
	"path"

	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/storage"
)

// ArchiveSource yields the archive backend once it is started.
// *storage.Component implements it.
type ArchiveSource interface {
	Storage() storage.Storage
}

// ArchivingRepository exports every saved guide to object storage as
// <prefix>/<id>.json and <prefix>/<id>.md. Export failures are logged and
// never fail the save.
type ArchivingRepository struct {
	Repository
	source ArchiveSource
	prefix string
	log    *logger.Logger
}

// NewArchivingRepository wraps repo.
func NewArchivingRepository(repo Repository, source ArchiveSource, prefix string) *ArchivingRepository {
	return &ArchivingRepository{
		Repository: repo,
		source:     source,
		prefix:     prefix,
		log:        logger.WithComponent("archive"),
	}
}

func (r *ArchivingRepository) Save(ctx context.Context, g *TravelGuide) error {
	if err := r.Repository.Save(ctx, g); err != nil {
		return err
	}

	s := r.source.Storage()
	if s == nil {
		return nil
	}
	if err := r.export(ctx, s, g); err != nil {
		r.log.Warn("Guide archive failed", logger.Fields("guide_id", g.ID, logger.FieldError, err.Error()))
	}
	return nil
}

func (r *ArchivingRepository) export(ctx context.Context, s storage.Storage, g *TravelGuide) error {
	doc, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	if err := s.Upload(ctx, r.objectPath(g.ID, ".json"), bytes.NewReader(doc)); err != nil {
		return err
	}
	return s.Upload(ctx, r.objectPath(g.ID, ".md"), bytes.NewReader(Markdown(g)))
}

func (r *ArchivingRepository) objectPath(id, ext string) string {
	return path.Join(r.prefix, id+ext)
}
