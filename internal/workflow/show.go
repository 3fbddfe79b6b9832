package workflow

import (
	"context"
	"path/filepath"

	"vistopia/internal/episodes"
	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/media"
	"vistopia/internal/naming"
	"vistopia/internal/services"
	"vistopia/internal/tagging"
)

// ShowOptions controls SaveShow.
type ShowOptions struct {
	Episodes    episodes.Set
	NoTag       bool
	NoCover     bool
	PrefixIndex bool
}

// SaveShow downloads the media of every selected episode of show id, one at a
// time, and tags new audio files.
func (m *Manager) SaveShow(ctx context.Context, id int64, opts ShowOptions) (Report, error) {
	ctx = services.WithShowID(ctx, id)
	run, err := m.prepareShow(ctx, id)
	if err != nil || run == nil {
		return Report{}, err
	}
	defer run.release()

	report := &syncReport{}
	report.report.Shows = 1
	for _, sel := range selectArticles(run.catalog, opts.Episodes) {
		if err := ctx.Err(); err != nil {
			return report.snapshot(), err
		}
		m.saveMedia(articleContext(ctx, sel.article), run, sel, opts, report)
	}
	out := report.snapshot()
	run.logger.Info("show saved",
		logging.String("title", run.catalog.Title),
		logging.Int("saved", out.Saved),
		logging.Int("skipped", out.Skipped),
		logging.Int("failed", out.Failed),
	)
	return out, nil
}

func (m *Manager) saveMedia(ctx context.Context, run *showRun, sel selection, opts ShowOptions, report *syncReport) {
	article := sel.article
	resolved, ok := media.Resolve(article)
	if !ok {
		recordFailure(ctx, m.logger, report, run.id, article, "resolve",
			services.Wrap(services.ErrMediaUnresolved, "workflow", "resolve media", article.Title, nil))
		return
	}

	dest := filepath.Join(run.dir, naming.FileName(article.Title, resolved.Kind.Extension(), sel.track, opts.PrefixIndex))
	var (
		status fetch.Status
		err    error
	)
	switch resolved.Kind {
	case media.KindVideo:
		status, err = m.fetcher.Video(ctx, resolved.URL, dest)
	default:
		status, err = m.fetcher.Audio(ctx, resolved.URL, dest)
	}
	if err != nil {
		recordFailure(ctx, m.logger, report, run.id, article, resolved.Kind.String(), err)
		return
	}
	if status == fetch.StatusExists {
		logging.WithContext(ctx, m.logger).Debug("already present", logging.Path(dest))
		report.skipped()
		return
	}
	report.saved()

	if resolved.Kind != media.KindAudio {
		return
	}
	m.tagAudio(ctx, run, sel, dest, opts)
}

// tagAudio writes tags and cover art to a freshly downloaded file. Failures
// are logged and leave the media file in place.
func (m *Manager) tagAudio(ctx context.Context, run *showRun, sel selection, dest string, opts ShowOptions) {
	logger := logging.WithContext(ctx, m.logger)
	if !opts.NoTag {
		series := run.series()
		fields := tagging.Fields{
			Title:   sel.article.Title,
			Album:   series.Title,
			Artist:  series.Author,
			Track:   sel.track,
			Website: sel.article.ContentURL,
		}
		if err := m.tagger.Tag(dest, fields); err != nil {
			logging.WarnWithContext(logger, "tag write failed", "tag_failed",
				logging.Path(dest),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "file saved without tags"),
			)
		}
	}
	if opts.NoCover || run.catalog.BackgroundImage == "" {
		return
	}
	if err := m.tagger.TagCover(ctx, dest, run.catalog.BackgroundImage); err != nil {
		logging.WarnWithContext(logger, "cover embed failed", "cover_failed",
			logging.Path(dest),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "file saved without cover art"),
		)
	}
}
