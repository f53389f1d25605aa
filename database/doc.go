// Package database provides the GORM-backed guide store: connection
// pooling with retry on open, health checks, transactions, auto-migration
// and the GuideStore repository.
//
// The component respects the Enabled flag. When disabled, Start does
// nothing and Store returns nil.
//
//	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(database.Models()...)
//	registry.Register(db)
//	...
//	rec, err := db.Store().Get(ctx, id)
package database
