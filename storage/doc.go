// Package storage provides the object store that archives generated
// guides. Backends register themselves by provider name:
//
//	import _ "github.com/kbukum/guidegen/storage/local"
//	import _ "github.com/kbukum/guidegen/storage/s3"
//
//	archive := storage.NewComponent(cfg, log)
//	repo := guide.NewArchivingRepository(repo, archive, cfg.Prefix)
package storage
