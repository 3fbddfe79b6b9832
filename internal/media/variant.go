package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grafov/m3u8"

	"vistopia/internal/logging"
)

// VariantSelector narrows an HLS master playlist down to its highest-bandwidth
// variant so the converter does not have to pick one itself.
type VariantSelector struct {
	client *http.Client
	logger *slog.Logger
}

// NewVariantSelector builds a selector. A nil client uses a 30 second timeout.
func NewVariantSelector(client *http.Client, logger *slog.Logger) *VariantSelector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &VariantSelector{client: client, logger: logging.NewComponentLogger(logger, "media")}
}

// Select returns the absolute URL of the best variant when link is an HLS
// master playlist. Media playlists, non-HLS links, variants whose audio lives
// in a separate rendition, and any fetch or parse failure return link
// unchanged.
func (s *VariantSelector) Select(ctx context.Context, link string) string {
	if s == nil || !isPlaylist(link) {
		return link
	}
	chosen, err := s.selectVariant(ctx, link)
	if err != nil {
		s.logger.Debug("variant selection skipped",
			logging.String("url", link),
			logging.Error(err),
		)
		return link
	}
	if chosen != link {
		s.logger.Info("selected hls variant", logging.String("variant", chosen))
	}
	return chosen
}

func (s *VariantSelector) selectVariant(ctx context.Context, link string) (string, error) {
	base, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse playlist url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch playlist: status %d", resp.StatusCode)
	}

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, false)
	if err != nil {
		return "", fmt.Errorf("decode playlist: %w", err)
	}
	if listType != m3u8.MASTER {
		return link, nil
	}
	master, ok := playlist.(*m3u8.MasterPlaylist)
	if !ok {
		return link, nil
	}

	var best *m3u8.Variant
	for _, variant := range master.Variants {
		if variant == nil || strings.TrimSpace(variant.URI) == "" {
			continue
		}
		if best == nil || variant.Bandwidth > best.Bandwidth {
			best = variant
		}
	}
	if best == nil {
		return link, nil
	}
	// A variant with an AUDIO group carries no audio itself; only the master
	// lets the converter map both streams.
	if strings.TrimSpace(best.Audio) != "" {
		return link, nil
	}
	ref, err := url.Parse(strings.TrimSpace(best.URI))
	if err != nil {
		return "", fmt.Errorf("parse variant uri: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func isPlaylist(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".m3u8")
}
