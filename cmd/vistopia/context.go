package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"vistopia/internal/catalogcache"
	"vistopia/internal/config"
	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/media"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
	"vistopia/internal/tagging"
	"vistopia/internal/workflow"
)

type commandContext struct {
	flags  *globalFlags
	stdout io.Writer
	stderr io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	servicesOnce sync.Once
	logger       *slog.Logger
	cache        *catalogcache.Cache
	manager      *workflow.Manager
	servicesErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:  flags,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// ensureConfig loads the config file once and applies global flag overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if token := strings.TrimSpace(c.flags.token); token != "" {
		cfg.API.Token = token
	}
	if dir := strings.TrimSpace(c.flags.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if level := strings.TrimSpace(c.flags.verbosity); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if format := strings.TrimSpace(c.flags.logFormat); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
	}
	return cfg.Validate()
}

// ensureServices wires the API client, cache, fetcher, tagger and workflow
// manager from the loaded config.
func (c *commandContext) ensureServices() error {
	c.servicesOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.servicesErr = err
			return
		}
		verbosity := 0
		if c.flags.debug {
			verbosity = 1
		}
		logger, err := logging.NewFromConfig(cfg, c.stderr, verbosity)
		if err != nil {
			c.servicesErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger

		client, err := vistopia.New(cfg.API.BaseURL, cfg.API.Token,
			vistopia.WithTimeout(cfg.APITimeout()),
			vistopia.WithLogger(logger),
		)
		if err != nil {
			c.servicesErr = err
			return
		}
		c.cache = catalogcache.New(client)

		// Downloads can run far longer than one API call, so only the wait
		// for response headers is bounded.
		download := &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: cfg.APITimeout(),
		}}
		opts := []fetch.Option{
			fetch.WithHTTPClient(download),
			fetch.WithLogger(logger),
			fetch.WithConverter(cfg.Video.ConverterBinary),
			fetch.WithAssetBase(cfg.AssetBaseURL()),
			fetch.WithSiteURL(cfg.API.SiteURL),
			fetch.WithRetryPolicy(fetch.RetryPolicy{
				MaxAttempts: cfg.Archiver.MaxAttempts,
				Delay:       cfg.ArchiveRetryDelay(),
				Timeout:     cfg.ArchiveTimeout(),
			}),
		}
		if cfg.Video.SelectBestVariant {
			opts = append(opts, fetch.WithVariantSelector(media.NewVariantSelector(download, logger)))
		}
		if cfg.Download.Progress && isTerminal(c.stderr) {
			opts = append(opts, fetch.WithProgress(c.stderr))
		}
		fetcher := fetch.New(opts...)
		tagger := tagging.NewTagger(download, logger)

		c.manager = workflow.NewManager(c.cache, fetcher, tagger, logger,
			workflow.WithOutputDir(cfg.Paths.OutputDir),
			workflow.WithLockDir(cfg.LockDir()),
			workflow.WithWorkers(cfg.Archiver.Workers),
		)
	})
	return c.servicesErr
}

// runContext tags ctx with a fresh correlation id for this invocation.
func (c *commandContext) runContext(ctx context.Context) context.Context {
	return services.WithRunID(ctx, uuid.NewString())
}
