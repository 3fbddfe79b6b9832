package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// dotEnvFile is read relative to the working directory; a missing file is fine.
const dotEnvFile = ".env"

func (c *Config) normalize() error {
	if err := c.normalizeAPI(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeArchiver(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPI() error {
	if value, ok := lookupEnv(TokenEnvVar); ok {
		c.API.Token = value
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	c.API.SiteURL = strings.TrimRight(strings.TrimSpace(c.API.SiteURL), "/")
	if c.API.SiteURL == "" {
		c.API.SiteURL = defaultSiteURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchiver() error {
	c.Archiver.Binary = strings.TrimSpace(c.Archiver.Binary)
	if c.Archiver.Binary == "" {
		c.Archiver.Binary = defaultArchiverBinary
	}
	if cookie := strings.TrimSpace(c.Archiver.CookieFile); cookie != "" {
		expanded, err := expandPath(cookie)
		if err != nil {
			return fmt.Errorf("archiver.cookie_file: %w", err)
		}
		c.Archiver.CookieFile = expanded
	}
	if c.Archiver.TimeoutSeconds <= 0 {
		c.Archiver.TimeoutSeconds = defaultArchiveTimeoutSeconds
	}
	if c.Archiver.RetryDelaySeconds < 0 {
		c.Archiver.RetryDelaySeconds = defaultArchiveRetryDelay
	}
	if c.Archiver.MaxAttempts <= 0 {
		c.Archiver.MaxAttempts = defaultArchiveMaxAttempts
	}
	if c.Archiver.Workers <= 0 {
		c.Archiver.Workers = defaultArchiveWorkers
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.ConverterBinary = strings.TrimSpace(c.Video.ConverterBinary)
	if c.Video.ConverterBinary == "" {
		c.Video.ConverterBinary = defaultConverterBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// lookupEnv checks the process environment first and then the .env file.
func lookupEnv(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), true
	}
	values, err := godotenv.Read(dotEnvFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: ignoring unreadable %s: %v\n", dotEnvFile, err)
		}
		return "", false
	}
	value := strings.TrimSpace(values[key])
	return value, value != ""
}
