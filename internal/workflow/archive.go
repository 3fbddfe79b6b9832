package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"vistopia/internal/episodes"
	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/naming"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
)

// ArchiveOptions controls SaveTranscriptWithSingleFile.
type ArchiveOptions struct {
	Episodes    episodes.Set
	PrefixIndex bool
	Binary      string
	CookieFile  string
	// Workers overrides the manager's pool size when positive.
	Workers int
}

// SaveTranscriptWithSingleFile archives the public page of every selected
// episode with the external archiver. Articles run on a fixed-size pool; a
// failing or panicking worker is logged and never stops its siblings. The
// call returns once every article has finished.
func (m *Manager) SaveTranscriptWithSingleFile(ctx context.Context, id int64, opts ArchiveOptions) (Report, error) {
	if opts.Binary == "" {
		return Report{}, services.Wrap(services.ErrValidation, "workflow", "archive", "archiver binary path is required", nil)
	}
	ctx = services.WithShowID(ctx, id)
	run, err := m.prepareShow(ctx, id)
	if err != nil || run == nil {
		return Report{}, err
	}
	defer run.release()

	workers := m.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	report := &syncReport{}
	report.report.Shows = 1

	// Workers report through the shared report and always return nil, so
	// the group never cancels outstanding articles.
	var g errgroup.Group
	g.SetLimit(workers)
	for _, sel := range selectArticles(run.catalog, opts.Episodes) {
		dest := filepath.Join(run.dir, naming.FileName(sel.article.Title, ".html", sel.track, opts.PrefixIndex))
		article := sel.article
		g.Go(func() error {
			actx := articleContext(ctx, article)
			defer func() {
				if r := recover(); r != nil {
					recordFailure(actx, m.logger, report, id, article, "archive",
						fmt.Errorf("archiver worker panic: %v", r))
				}
			}()
			m.archiveArticle(actx, id, article, dest, opts, report)
			return nil
		})
	}
	_ = g.Wait()

	out := report.snapshot()
	run.logger.Info("transcripts archived",
		logging.String("title", run.catalog.Title),
		logging.Int("workers", workers),
		logging.Int("saved", out.Saved),
		logging.Int("skipped", out.Skipped),
		logging.Int("failed", out.Failed),
	)
	return out, nil
}

func (m *Manager) archiveArticle(ctx context.Context, id int64, article vistopia.Article, dest string, opts ArchiveOptions, report *syncReport) {
	if err := ctx.Err(); err != nil {
		recordFailure(ctx, m.logger, report, id, article, "archive", err)
		return
	}
	status, err := m.fetcher.Archive(ctx, opts.Binary, article.ArticleID, dest, opts.CookieFile)
	switch {
	case err != nil:
		recordFailure(ctx, m.logger, report, id, article, "archive", err)
	case status == fetch.StatusExists:
		report.skipped()
	default:
		report.saved()
	}
}
