package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"vistopia/internal/episodes"
	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/naming"
	"vistopia/internal/services"
)

// Format selects how plain transcripts are stored.
type Format string

const (
	// FormatHTML keeps the upstream page with an absolute stylesheet link.
	FormatHTML Format = "html"
	// FormatText stores the readable article text.
	FormatText Format = "text"
)

// ParseFormat accepts "html" (default when blank) or "text".
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatText, "txt":
		return FormatText, nil
	default:
		return "", services.Wrap(services.ErrValidation, "workflow", "transcript format",
			fmt.Sprintf("unsupported format %q (want html or text)", value), nil)
	}
}

func (f Format) extension() string {
	if f == FormatText {
		return ".txt"
	}
	return ".html"
}

// TranscriptOptions controls SaveTranscript.
type TranscriptOptions struct {
	Episodes    episodes.Set
	PrefixIndex bool
	Format      Format
}

// SaveTranscript saves the transcript page of every selected episode.
func (m *Manager) SaveTranscript(ctx context.Context, id int64, opts TranscriptOptions) (Report, error) {
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
		actx := articleContext(ctx, sel.article)
		dest := filepath.Join(run.dir, naming.FileName(sel.article.Title, opts.Format.extension(), sel.track, opts.PrefixIndex))

		var status fetch.Status
		if opts.Format == FormatText {
			status, err = m.fetcher.TranscriptText(actx, sel.article.ContentURL, dest)
		} else {
			status, err = m.fetcher.Transcript(actx, sel.article.ContentURL, dest)
		}
		switch {
		case err != nil:
			recordFailure(actx, m.logger, report, id, sel.article, "transcript", err)
		case status == fetch.StatusExists:
			report.skipped()
		default:
			report.saved()
		}
	}
	out := report.snapshot()
	run.logger.Info("transcripts saved",
		logging.String("title", run.catalog.Title),
		logging.String("format", string(opts.Format)),
		logging.Int("saved", out.Saved),
		logging.Int("skipped", out.Skipped),
		logging.Int("failed", out.Failed),
	)
	return out, nil
}
