package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the Vistopia content API.
type API struct {
	BaseURL        string `toml:"base_url"`
	SiteURL        string `toml:"site_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Download contains defaults for audio downloads and file naming.
type Download struct {
	PrefixIndex bool `toml:"prefix_index"`
	Tag         bool `toml:"tag"`
	Cover       bool `toml:"cover"`
	Progress    bool `toml:"progress"`
}

// Video contains configuration for the external media converter.
type Video struct {
	ConverterBinary   string `toml:"converter_binary"`
	SelectBestVariant bool   `toml:"select_best_variant"`
}

// Archiver contains configuration for the external page archiver used to
// save transcripts as single self-contained HTML files.
type Archiver struct {
	Binary            string `toml:"binary"`
	CookieFile        string `toml:"cookie_file"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	MaxAttempts       int    `toml:"max_attempts"`
	Workers           int    `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vistopia.
//
// Configuration sections by subsystem:
//   - API: upstream endpoints, token, request timeout
//   - Paths: output, state (locks), and optional log directories
//   - Download: tagging, cover, index prefix, progress defaults
//   - Video: converter binary and HLS variant selection
//   - Archiver: single-file archiver binary, cookies, retry policy, pool size
//   - Logging: log format and level
type Config struct {
	API      API      `toml:"api"`
	Paths    Paths    `toml:"paths"`
	Download Download `toml:"download"`
	Video    Video    `toml:"video"`
	Archiver Archiver `toml:"archiver"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vistopia/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/vistopia/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vistopia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when configured, the log
// directory. The output directory is created lazily per show by the workflow.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// APITimeout returns the per-request timeout for API calls and downloads.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ArchiveTimeout returns how long one archiver invocation may run.
func (c *Config) ArchiveTimeout() time.Duration {
	return time.Duration(c.Archiver.TimeoutSeconds) * time.Second
}

// ArchiveRetryDelay returns the pause between archiver attempts.
func (c *Config) ArchiveRetryDelay() time.Duration {
	return time.Duration(c.Archiver.RetryDelaySeconds) * time.Second
}

// AssetBaseURL returns the scheme and host of the API, which also serves the
// stylesheets referenced by transcript pages.
func (c *Config) AssetBaseURL() string {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(defaultAssetBaseURL, "/")
	}
	return parsed.Scheme + "://" + parsed.Host
}

// LockDir returns the directory holding per-show run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
