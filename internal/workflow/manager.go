package workflow

import (
	"context"
	"log/slog"
	"path/filepath"

	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/services/vistopia"
	"vistopia/internal/tagging"
)

// DefaultWorkers is the archiver pool size.
const DefaultWorkers = 3

// Catalogs provides show metadata, normally through a catalogcache.Cache.
type Catalogs interface {
	Catalog(ctx context.Context, id int64) (*vistopia.Catalog, error)
	ContentShow(ctx context.Context, id int64) (*vistopia.Series, error)
	Subscriptions(ctx context.Context) ([]vistopia.Subscription, error)
}

// Fetcher retrieves article artifacts; *fetch.Fetcher implements it.
type Fetcher interface {
	Audio(ctx context.Context, link, dest string) (fetch.Status, error)
	Video(ctx context.Context, link, dest string) (fetch.Status, error)
	Transcript(ctx context.Context, contentURL, dest string) (fetch.Status, error)
	TranscriptText(ctx context.Context, contentURL, dest string) (fetch.Status, error)
	Archive(ctx context.Context, binary, articleID, dest, cookieFile string) (fetch.Status, error)
}

// Tagger annotates downloaded audio; *tagging.Tagger implements it.
type Tagger interface {
	Tag(path string, fields tagging.Fields) error
	TagCover(ctx context.Context, path, coverURL string) error
}

// Manager coordinates catalog lookups, fetches, and tagging for shows.
type Manager struct {
	catalogs  Catalogs
	fetcher   Fetcher
	tagger    Tagger
	logger    *slog.Logger
	outputDir string
	lockDir   string
	workers   int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithOutputDir sets the directory under which show directories are created.
func WithOutputDir(dir string) ManagerOption {
	return func(m *Manager) {
		if dir != "" {
			m.outputDir = dir
		}
	}
}

// WithLockDir enables per-show locking with lock files in dir.
func WithLockDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.lockDir = dir
	}
}

// WithWorkers sets the default archiver pool size.
func WithWorkers(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(catalogs Catalogs, fetcher Fetcher, tagger Tagger, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		catalogs:  catalogs,
		fetcher:   fetcher,
		tagger:    tagger,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		outputDir: ".",
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	if abs, err := filepath.Abs(m.outputDir); err == nil {
		m.outputDir = abs
	}
	return m
}

// OutputDir returns the directory show directories are created in.
func (m *Manager) OutputDir() string {
	return m.outputDir
}
