package vistopia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"vistopia/internal/logging"
	"vistopia/internal/services"
)

const (
	// DefaultBaseURL is the versioned root of the content API.
	DefaultBaseURL = "https://api.vistopia.com.cn/api/v1/"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
	component      = "vistopia"
)

// Client provides access to the Vistopia content API.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, component)
	}
}

// New creates an API client. An empty token is allowed because public
// catalogs are served anonymously.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "parse base url", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "parse base url", "base url must be absolute", nil)
	}
	client := &Client{
		baseURL:    parsed,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultTimeout},
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logging.NewComponentLogger(nil, component),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Get performs one GET against endpoint (relative to the base URL) and
// returns the raw data member of a successful envelope.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	ref, err := url.Parse(strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "build url", endpoint, err)
	}
	target := c.baseURL.ResolveReference(ref)
	query := target.Query()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	query.Set("api_token", c.token)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "build request", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request", logging.String("endpoint", endpoint))
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "get "+endpoint, fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "read "+endpoint, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.Wrap(services.ErrTransport, component, "get "+endpoint,
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, services.Wrap(services.ErrDecode, component, "decode "+endpoint, "response is not JSON", err)
	}
	if env.Status != "success" {
		return nil, services.Wrap(services.ErrNotFound, component, "get "+endpoint,
			fmt.Sprintf("status %q", env.Status), nil)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, services.Wrap(services.ErrNotFound, component, "get "+endpoint, "envelope has no data", nil)
	}
	c.logger.Debug("api response",
		logging.String("endpoint", endpoint),
		logging.Duration("latency", latency),
		logging.Size(int64(len(body))),
	)
	return env.Data, nil
}

// Catalog fetches the episode listing of a show.
func (c *Client) Catalog(ctx context.Context, id int64) (*Catalog, error) {
	var catalog Catalog
	if err := c.getInto(ctx, "content/catalog/"+strconv.FormatInt(id, 10), nil, &catalog); err != nil {
		return nil, err
	}
	if catalog.ContentID == 0 {
		catalog.ContentID = FlexInt(id)
	}
	return &catalog, nil
}

// ContentShow fetches the show-level title and author.
func (c *Client) ContentShow(ctx context.Context, id int64) (*Series, error) {
	var series Series
	if err := c.getInto(ctx, "content/content-show/"+strconv.FormatInt(id, 10), nil, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Search runs a keyword search across shows, articles, and authors.
func (c *Client) Search(ctx context.Context, keyword string) ([]SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, services.Wrap(services.ErrValidation, component, "search", "keyword must not be empty", nil)
	}
	var payload listPayload[SearchResult]
	if err := c.getInto(ctx, "search/web", url.Values{"keyword": {keyword}}, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Subscriptions lists the shows the token's account subscribes to.
func (c *Client) Subscriptions(ctx context.Context) ([]Subscription, error) {
	var payload listPayload[Subscription]
	if err := c.getInto(ctx, "user/subscriptions-list", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) getInto(ctx context.Context, endpoint string, params url.Values, dst any) error {
	data, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return services.Wrap(services.ErrDecode, component, "decode "+endpoint, "unexpected payload shape", err)
	}
	if err := c.validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return services.Wrap(services.ErrDecode, component, "decode "+endpoint,
				fmt.Sprintf("field %s failed %q", invalid[0].Namespace(), invalid[0].Tag()), err)
		}
		return services.Wrap(services.ErrDecode, component, "decode "+endpoint, "validation failed", err)
	}
	return nil
}
