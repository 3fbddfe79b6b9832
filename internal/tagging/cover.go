package tagging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bogem/id3v2/v2"
	"golang.org/x/sync/singleflight"

	"vistopia/internal/logging"
	"vistopia/internal/services"
)

const maxCoverBytes = 10 << 20

// Tagger writes tags and covers, fetching each cover URL at most once.
type Tagger struct {
	client *http.Client
	logger *slog.Logger

	group  singleflight.Group
	mu     sync.Mutex
	covers map[string][]byte
}

// NewTagger builds a Tagger. A nil client uses a 30 second timeout.
func NewTagger(client *http.Client, logger *slog.Logger) *Tagger {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Tagger{
		client: client,
		logger: logging.NewComponentLogger(logger, "tagging"),
		covers: make(map[string][]byte),
	}
}

// Tag writes fields into the file at path.
func (t *Tagger) Tag(path string, fields Fields) error {
	return WriteTags(path, fields)
}

// TagCover embeds the image at coverURL as the single front cover of the file
// at path, replacing any earlier picture frames.
func (t *Tagger) TagCover(ctx context.Context, path, coverURL string) error {
	if strings.TrimSpace(coverURL) == "" {
		return services.Wrap(services.ErrTagWrite, "tagging", "cover", "catalog has no cover image", nil)
	}
	picture, err := t.Cover(ctx, coverURL)
	if err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return services.Wrap(services.ErrTagWrite, "tagging", "open", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    coverMimeType(picture),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     picture,
	})
	if err := tag.Save(); err != nil {
		return services.Wrap(services.ErrTagWrite, "tagging", "save cover", path, err)
	}
	return nil
}

// Cover returns the image bytes at coverURL, downloading them on first use.
func (t *Tagger) Cover(ctx context.Context, coverURL string) ([]byte, error) {
	t.mu.Lock()
	cached, ok := t.covers[coverURL]
	t.mu.Unlock()
	if ok {
		return cached, nil
	}
	value, err, _ := t.group.Do(coverURL, func() (any, error) {
		t.mu.Lock()
		cached, ok := t.covers[coverURL]
		t.mu.Unlock()
		if ok {
			return cached, nil
		}
		picture, err := t.download(ctx, coverURL)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.covers[coverURL] = picture
		t.mu.Unlock()
		t.logger.Debug("cover fetched", logging.String("url", coverURL), logging.Size(int64(len(picture))))
		return picture, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

func (t *Tagger) download(ctx context.Context, coverURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "tagging", "cover request", coverURL, err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "tagging", "cover download", coverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransport, "tagging", "cover download",
			fmt.Sprintf("%s returned %d", coverURL, resp.StatusCode), nil)
	}
	picture, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "tagging", "cover read", coverURL, err)
	}
	if len(picture) == 0 {
		return nil, services.Wrap(services.ErrTransport, "tagging", "cover download", "empty image", nil)
	}
	return picture, nil
}

// coverMimeType labels PNG covers correctly; everything else is treated as JPEG.
func coverMimeType(picture []byte) string {
	if http.DetectContentType(picture) == "image/png" {
		return "image/png"
	}
	return "image/jpeg"
}
