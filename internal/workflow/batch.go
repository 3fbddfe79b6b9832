package workflow

import (
	"context"
	"errors"
	"fmt"

	"vistopia/internal/episodes"
	"vistopia/internal/logging"
	"vistopia/internal/services"
	"vistopia/internal/showlock"
)

// BatchOptions controls BatchSave.
type BatchOptions struct {
	Episodes    episodes.Set
	PrefixIndex bool
	NoAudio     bool
	Transcript  bool
	NoTag       bool
	NoCover     bool
	Format      Format
	// Archive, when Binary is set, stores transcripts with the archiver.
	Archive ArchiveOptions
}

// BatchSave runs the requested saves for each show in ids, in order. A show
// that fails is logged and the batch moves on; only configuration errors and
// cancellation stop it early.
func (m *Manager) BatchSave(ctx context.Context, ids []int64, opts BatchOptions) (Report, error) {
	var total Report
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		report, err := m.saveOne(ctx, id, opts)
		total.Add(report)
		if err == nil {
			continue
		}
		if services.FailureScope(err) == services.ScopeRun || errors.Is(err, context.Canceled) {
			return total, err
		}
		logger := logging.WithContext(services.WithShowID(ctx, id), m.logger)
		impact := "show skipped"
		if errors.Is(err, showlock.ErrHeld) {
			impact = "show skipped while another process saves it"
		}
		logging.ErrorWithContext(logger, "show failed", "batch_show_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, impact),
		)
		total.Failures = append(total.Failures, Failure{ShowID: id, Err: err})
	}
	return total, nil
}

func (m *Manager) saveOne(ctx context.Context, id int64, opts BatchOptions) (Report, error) {
	var total Report
	if !opts.NoAudio {
		report, err := m.SaveShow(ctx, id, ShowOptions{
			Episodes:    opts.Episodes,
			NoTag:       opts.NoTag,
			NoCover:     opts.NoCover,
			PrefixIndex: opts.PrefixIndex,
		})
		total.Add(report)
		if err != nil {
			return total, err
		}
	}
	if !opts.Transcript {
		return total, nil
	}
	var (
		report Report
		err    error
	)
	if opts.Archive.Binary != "" {
		archive := opts.Archive
		archive.Episodes = opts.Episodes
		archive.PrefixIndex = opts.PrefixIndex
		report, err = m.SaveTranscriptWithSingleFile(ctx, id, archive)
	} else {
		report, err = m.SaveTranscript(ctx, id, TranscriptOptions{
			Episodes:    opts.Episodes,
			PrefixIndex: opts.PrefixIndex,
			Format:      opts.Format,
		})
	}
	// SaveShow and SaveTranscript each count the show once.
	if !opts.NoAudio && report.Shows > 0 {
		report.Shows = 0
	}
	total.Add(report)
	return total, err
}

// SubscribedIDs returns the content ids of the user's subscriptions in the
// order the API lists them.
func (m *Manager) SubscribedIDs(ctx context.Context) ([]int64, error) {
	subs, err := m.catalogs.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(subs))
	seen := make(map[int64]struct{}, len(subs))
	for _, sub := range subs {
		id := int64(sub.ContentID)
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no subscriptions: %w", services.ErrNotFound)
	}
	return ids, nil
}
