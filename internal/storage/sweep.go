package storage

import (
	"log/slog"
	"path/filepath"

	"github.com/olesko/rodovid/internal/store"
)

// Sweep compares the photo files on disk against the photo references
// held by person documents and reports orphans. The database is
// authoritative, so the sweep only logs; it never deletes files.
func Sweep(db *store.DB, fs *FS, logger *slog.Logger) error {
	refs, err := db.PhotoPaths()
	if err != nil {
		return err
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, p := range refs {
		referenced[filepath.Base(p)] = struct{}{}
	}

	files, err := fs.List()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(files))
	orphans := 0
	for _, name := range files {
		onDisk[name] = struct{}{}
		if _, ok := referenced[name]; !ok {
			orphans++
			logger.Warn("sweep: photo not referenced by any person",
				slog.String("file", name))
		}
	}
	for id, p := range refs {
		if _, ok := onDisk[filepath.Base(p)]; !ok {
			logger.Warn("sweep: referenced photo missing from disk",
				slog.String("person", id), slog.String("photo", p))
		}
	}

	logger.Info("photo sweep complete",
		slog.Int("files", len(files)),
		slog.Int("referenced", len(referenced)),
		slog.Int("orphans", orphans))
	return nil
}
