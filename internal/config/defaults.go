package config

const (
	defaultAPIBaseURL            = "https://api.vistopia.com.cn/api/v1/"
	defaultAssetBaseURL          = "https://api.vistopia.com.cn"
	defaultSiteURL               = "https://www.vistopia.com.cn"
	defaultAPITimeoutSeconds     = 30
	defaultOutputDir             = "."
	defaultStateDir              = "~/.local/share/vistopia"
	defaultConverterBinary       = "ffmpeg"
	defaultArchiverBinary        = "single-file"
	defaultArchiveTimeoutSeconds = 60
	defaultArchiveRetryDelay     = 10
	defaultArchiveMaxAttempts    = 3
	defaultArchiveWorkers        = 3
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"

	// TokenEnvVar names the environment variable consulted for the API token.
	TokenEnvVar = "VISTOPIA_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			SiteURL:        defaultSiteURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Download: Download{
			Tag:      true,
			Cover:    true,
			Progress: true,
		},
		Video: Video{
			ConverterBinary:   defaultConverterBinary,
			SelectBestVariant: false,
		},
		Archiver: Archiver{
			Binary:            defaultArchiverBinary,
			TimeoutSeconds:    defaultArchiveTimeoutSeconds,
			RetryDelaySeconds: defaultArchiveRetryDelay,
			MaxAttempts:       defaultArchiveMaxAttempts,
			Workers:           defaultArchiveWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
