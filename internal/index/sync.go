package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/checksum"
	"github.com/eldrid/munin/internal/models"
	"github.com/eldrid/munin/internal/storage"
)

// Sync walks the vault and brings the cache up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the cache
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile extracts derived metadata from raw note text and upserts it.
func indexFile(db *DB, path string, data []byte, updatedAt time.Time) error {
	content := string(data)
	res := annotate.Parse(content)

	row := NoteRow{
		Path:      path,
		Name:      models.NameForPath(path),
		Category:  models.CategoryForPath(path),
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		WordCount: len(strings.Fields(content)),
		UpdatedAt: updatedAt,
	}
	return db.UpsertNote(row, res.Links)
}

// IndexFile is the exported form used by the note service and watcher.
func IndexFile(db *DB, path string, data []byte, updatedAt time.Time) error {
	return indexFile(db, path, data, updatedAt)
}
