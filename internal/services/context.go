package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	showIDKey  contextKey = "show_id"
	episodeKey contextKey = "episode"
)

// WithRunID annotates context with the correlation identifier of one command run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithShowID annotates context with the content id being processed.
func WithShowID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, showIDKey, id)
}

// ShowIDFromContext extracts the content id if present.
func ShowIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(showIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithEpisode annotates context with the article sort number being processed.
func WithEpisode(ctx context.Context, sortNumber int) context.Context {
	if sortNumber <= 0 {
		return ctx
	}
	return context.WithValue(ctx, episodeKey, sortNumber)
}

// EpisodeFromContext returns the article sort number if present.
func EpisodeFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(episodeKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}
