package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vistopia/internal/episodes"
	"vistopia/internal/logging"
	"vistopia/internal/naming"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
	"vistopia/internal/showlock"
	"vistopia/internal/staging"
)

// unlockedPartialAge is how old a partial download must be before it is
// removed when no show lock guards the directory.
const unlockedPartialAge = time.Hour

// selection is one article chosen for a run together with its track number.
type selection struct {
	article vistopia.Article
	track   string
}

// showRun carries the per-show state shared by every article of one save.
type showRun struct {
	id      int64
	catalog *vistopia.Catalog
	dir     string
	lock    *showlock.Lock
	logger  *slog.Logger
	series  func() vistopia.Series
}

func (r *showRun) release() {
	if err := r.lock.Release(); err != nil {
		r.logger.Warn("show lock release failed", logging.Error(err))
	}
}

// prepareShow resolves the catalog, creates the show directory and takes the
// show lock. A nil run with a nil error means the show was skipped.
func (m *Manager) prepareShow(ctx context.Context, id int64) (*showRun, error) {
	logger := logging.WithContext(ctx, m.logger)

	catalog, err := m.catalogs.Catalog(ctx, id)
	if err != nil {
		if services.FailureScope(err) == services.ScopeShow {
			logging.WarnWithContext(logger, "catalog unavailable, skipping show", "catalog_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "show skipped"),
			)
			return nil, nil
		}
		return nil, err
	}

	dir := filepath.Join(m.outputDir, naming.ShowDirName(catalog.Title))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "create show directory", dir, err)
	}

	var lock *showlock.Lock
	if m.lockDir != "" {
		lock, err = showlock.Acquire(m.lockDir, id)
		if err != nil {
			return nil, err
		}
	}

	partialAge := unlockedPartialAge
	if lock != nil {
		partialAge = 0
	}
	staging.CleanPartials(ctx, dir, partialAge, logger)

	run := &showRun{
		id:      id,
		catalog: catalog,
		dir:     dir,
		lock:    lock,
		logger:  logger,
	}
	run.series = sync.OnceValue(func() vistopia.Series {
		return m.loadSeries(ctx, logger, id, catalog)
	})
	logger.Debug("show prepared",
		logging.String("title", catalog.Title),
		logging.String("dir", dir),
		logging.Int("articles", catalog.TotalArticles()),
	)
	return run, nil
}

// loadSeries fetches show-level tag metadata, falling back to the catalog.
func (m *Manager) loadSeries(ctx context.Context, logger *slog.Logger, id int64, catalog *vistopia.Catalog) vistopia.Series {
	fallback := vistopia.Series{Title: catalog.Title, Author: catalog.Author}
	series, err := m.catalogs.ContentShow(ctx, id)
	if err != nil || series == nil {
		logging.WarnWithContext(logger, "series info unavailable, tagging with catalog metadata", "series_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "album and artist taken from the catalog"),
		)
		return fallback
	}
	out := *series
	if out.Title == "" {
		out.Title = fallback.Title
	}
	if out.Author == "" {
		out.Author = fallback.Author
	}
	return out
}

// selectArticles flattens the catalog and keeps the requested sort numbers.
// Track ordinals count selected articles; the width follows the catalog size.
func selectArticles(catalog *vistopia.Catalog, want episodes.Set) []selection {
	total := catalog.TotalArticles()
	var out []selection
	for _, article := range catalog.Articles() {
		if !want.Contains(article.SortNumber.Int()) {
			continue
		}
		out = append(out, selection{
			article: article,
			track:   naming.TrackNumber(len(out)+1, total),
		})
	}
	return out
}

// articleContext annotates ctx with the article being processed.
func articleContext(ctx context.Context, article vistopia.Article) context.Context {
	return services.WithEpisode(ctx, article.SortNumber.Int())
}

// recordFailure logs a per-article failure and counts it.
func recordFailure(ctx context.Context, logger *slog.Logger, report *syncReport, showID int64, article vistopia.Article, stage string, err error) {
	logger = logging.WithContext(ctx, logger)
	attrs := []logging.Attr{
		logging.String("stage", stage),
		logging.String("title", article.Title),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	}
	switch {
	case errors.Is(err, services.ErrToolMissing), errors.Is(err, services.ErrMediaUnresolved):
		logging.WarnWithContext(logger, "episode skipped", stage+"_skipped", attrs...)
	default:
		logging.ErrorWithContext(logger, "episode failed", stage+"_failed", attrs...)
	}
	report.failed(Failure{
		ShowID:     showID,
		SortNumber: article.SortNumber.Int(),
		Title:      article.Title,
		Err:        err,
	})
}
