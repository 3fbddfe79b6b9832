package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"vistopia/internal/fileutil"
	"vistopia/internal/logging"
	"vistopia/internal/services"
)

const (
	// DefaultConverter is the media converter used for video.
	DefaultConverter = "ffmpeg"
	// DefaultAssetBase serves the stylesheet referenced by transcript pages.
	DefaultAssetBase = "https://api.vistopia.com.cn"
	// DefaultSiteURL hosts the public article pages given to the archiver.
	DefaultSiteURL = "https://www.vistopia.com.cn"

	maxPageBytes = 16 << 20
)

// Status reports what a fetch did.
type Status int

const (
	// StatusSaved means the artifact was written by this call.
	StatusSaved Status = iota
	// StatusExists means the destination was already present and nothing ran.
	StatusExists
)

func (s Status) String() string {
	if s == StatusExists {
		return "exists"
	}
	return "saved"
}

// VariantSelector narrows an HLS master playlist to one variant.
type VariantSelector interface {
	Select(ctx context.Context, link string) string
}

// Fetcher retrieves artifacts. The zero value is not usable; call New.
type Fetcher struct {
	httpClient     *http.Client
	exec           Executor
	lookPath       func(string) (string, error)
	sleep          Sleeper
	logger         *slog.Logger
	converter      string
	assetBase      string
	siteURL        string
	policy         RetryPolicy
	variants       VariantSelector
	progressWriter io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *Fetcher) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithLookPath overrides how the converter binary is located.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(f *Fetcher) {
		if lookPath != nil {
			f.lookPath = lookPath
		}
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleep Sleeper) Option {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logging.NewComponentLogger(logger, "fetch")
	}
}

// WithConverter sets the converter binary used for video.
func WithConverter(binary string) Option {
	return func(f *Fetcher) {
		if binary = strings.TrimSpace(binary); binary != "" {
			f.converter = binary
		}
	}
}

// WithAssetBase sets the scheme and host that relative stylesheet links are
// resolved against.
func WithAssetBase(base string) Option {
	return func(f *Fetcher) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			f.assetBase = base
		}
	}
}

// WithSiteURL sets the host of public article pages.
func WithSiteURL(site string) Option {
	return func(f *Fetcher) {
		if site = strings.TrimRight(strings.TrimSpace(site), "/"); site != "" {
			f.siteURL = site
		}
	}
}

// WithRetryPolicy overrides the archiver retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithVariantSelector enables HLS variant selection before remuxing.
func WithVariantSelector(selector VariantSelector) Option {
	return func(f *Fetcher) {
		f.variants = selector
	}
}

// WithProgress renders a download progress bar to w. A nil w disables it.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progressWriter = w
	}
}

// New constructs a Fetcher with production defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Minute},
		exec:       commandExecutor{},
		lookPath:   exec.LookPath,
		sleep:      contextSleep,
		logger:     logging.NewComponentLogger(nil, "fetch"),
		converter:  DefaultConverter,
		assetBase:  DefaultAssetBase,
		siteURL:    DefaultSiteURL,
		policy:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Audio streams link to dest.
func (f *Fetcher) Audio(ctx context.Context, link, dest string) (Status, error) {
	if fileutil.Exists(dest) {
		return StatusExists, nil
	}
	resp, err := f.get(ctx, link)
	if err != nil {
		return StatusSaved, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if f.progressWriter != nil {
		bar := newProgressBar(f.progressWriter, resp.ContentLength, dest)
		defer bar.Close()
		body = io.TeeReader(resp.Body, bar)
	}

	written, err := fileutil.WriteAtomic(dest, body)
	if err != nil {
		return StatusSaved, services.Wrap(services.ErrTransport, "fetch", "download audio", link, err)
	}
	f.logger.Info("audio saved", logging.Path(dest), logging.Size(written))
	return StatusSaved, nil
}

// Video remuxes link into dest with the converter, copying streams as-is.
func (f *Fetcher) Video(ctx context.Context, link, dest string) (Status, error) {
	if fileutil.Exists(dest) {
		return StatusExists, nil
	}
	binary, err := f.lookPath(f.converter)
	if err != nil {
		return StatusSaved, services.Wrap(services.ErrToolMissing, "fetch", "video",
			fmt.Sprintf("%s not found on PATH; install it to save video episodes", f.converter), err)
	}
	source := link
	if f.variants != nil {
		source = f.variants.Select(ctx, link)
	}
	if err := f.exec.Run(ctx, binary, ConverterArgs(source, dest)); err != nil {
		removePartial(dest)
		return StatusSaved, classifyToolError(err, binary)
	}
	if !fileutil.Exists(dest) {
		return StatusSaved, services.Wrap(services.ErrExternalTool, "fetch", "video", "converter produced no output", nil)
	}
	if info, statErr := os.Stat(dest); statErr == nil {
		f.logger.Info("video saved", logging.Path(dest), logging.Size(info.Size()))
	}
	return StatusSaved, nil
}

// ConverterArgs returns the converter arguments that copy source into dest.
func ConverterArgs(source, dest string) []string {
	return []string{"-i", source, "-c", "copy", dest}
}

// Transcript saves the HTML page at contentURL to dest with the stylesheet
// reference made absolute.
func (f *Fetcher) Transcript(ctx context.Context, contentURL, dest string) (Status, error) {
	if fileutil.Exists(dest) {
		return StatusExists, nil
	}
	page, err := f.readPage(ctx, contentURL)
	if err != nil {
		return StatusSaved, err
	}
	rewritten := RewriteStylesheet(string(page), f.assetBase)
	if _, err := fileutil.WriteAtomic(dest, strings.NewReader(rewritten)); err != nil {
		return StatusSaved, err
	}
	f.logger.Info("transcript saved", logging.Path(dest))
	return StatusSaved, nil
}

// TranscriptText saves the readable text of the page at contentURL to dest.
func (f *Fetcher) TranscriptText(ctx context.Context, contentURL, dest string) (Status, error) {
	if fileutil.Exists(dest) {
		return StatusExists, nil
	}
	page, err := f.readPage(ctx, contentURL)
	if err != nil {
		return StatusSaved, err
	}
	doc, err := ExtractText(string(page), contentURL)
	if err != nil {
		return StatusSaved, err
	}
	if _, err := fileutil.WriteAtomic(dest, strings.NewReader(doc.Render())); err != nil {
		return StatusSaved, err
	}
	f.logger.Info("transcript text saved", logging.Path(dest))
	return StatusSaved, nil
}

// Archive captures the public page of articleID into dest with the external
// single-file archiver. Timeouts are retried per the retry policy; any other
// failure is returned after the first attempt.
func (f *Fetcher) Archive(ctx context.Context, binary, articleID, dest, cookieFile string) (Status, error) {
	if fileutil.Exists(dest) {
		return StatusExists, nil
	}
	args := ArchiverArgs(f.PageURL(articleID), dest, cookieFile)
	err := f.policy.Do(ctx, f.sleep, func(attemptCtx context.Context) error {
		err := f.exec.Run(attemptCtx, binary, args)
		if err != nil {
			removePartial(dest)
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !Retryable(err) {
				err = services.Wrap(services.ErrTimeout, "fetch", "archive", "attempt timed out", err)
			}
		}
		return err
	}, func(n int, err error) {
		f.logger.Warn("archiver timed out, retrying",
			logging.String("article_id", articleID),
			logging.Int("attempt", n),
			logging.Int("max_attempts", f.policy.MaxAttempts),
			logging.Duration("retry_in", f.policy.Delay),
		)
	})
	if err != nil {
		if errors.Is(err, ErrRetriesExhausted) {
			f.logger.Error("giving up, check the network or the URL",
				logging.String("article_id", articleID),
				logging.Error(err),
			)
			return StatusSaved, err
		}
		return StatusSaved, classifyToolError(err, binary)
	}
	if !fileutil.Exists(dest) {
		return StatusSaved, services.Wrap(services.ErrExternalTool, "fetch", "archive", "archiver produced no output", nil)
	}
	f.logger.Info("transcript archived", logging.Path(dest))
	return StatusSaved, nil
}

// PageURL is the public article page handed to the archiver.
func (f *Fetcher) PageURL(articleID string) string {
	return f.siteURL + "/article/" + articleID
}

// ArchiverArgs returns the archiver arguments for one page.
func ArchiverArgs(pageURL, dest, cookieFile string) []string {
	return []string{pageURL, dest, "--browser-cookies-file=" + cookieFile}
}

func (f *Fetcher) get(ctx context.Context, link string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "fetch", "build request", link, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "fetch", "get", link, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransport, "fetch", "get", fmt.Sprintf("%s returned %d", link, resp.StatusCode), nil)
	}
	return resp, nil
}

func (f *Fetcher) readPage(ctx context.Context, link string) ([]byte, error) {
	if strings.TrimSpace(link) == "" {
		return nil, services.Wrap(services.ErrMediaUnresolved, "fetch", "transcript", "article has no content url", nil)
	}
	resp, err := f.get(ctx, link)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "fetch", "read page", link, err)
	}
	return page, nil
}

func newProgressBar(w io.Writer, size int64, dest string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(filepath.Base(dest)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
}

func classifyToolError(err error, binary string) error {
	switch {
	case errors.Is(err, services.ErrTimeout),
		errors.Is(err, services.ErrToolMissing),
		errors.Is(err, services.ErrExternalTool):
		return err
	case errors.Is(err, context.Canceled):
		return err
	}
	return services.Wrap(services.ErrExternalTool, "fetch", binary, "run failed", err)
}

// removePartial deletes whatever a failed tool run left at dest.
func removePartial(dest string) {
	_ = os.Remove(dest)
}
