package config

const (
	defaultDataDir        = "~/.local/share/replayvault"
	defaultBaseURL        = "https://www.replaymod.com/api/download_file?id=$id$"
	defaultTimeoutSeconds = 30
	defaultNotFoundStatus = 400
	defaultCrawlStartID   = 0
	defaultCrawlMaxID     = 20000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Source: Source{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
			NotFoundStatus: defaultNotFoundStatus,
		},
		Crawl: Crawl{
			StartID: defaultCrawlStartID,
			MaxID:   defaultCrawlMaxID,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
