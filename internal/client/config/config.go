package config

import "time"

// Config holds runtime settings for the admin console.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - RequestTimeout: per-request timeout for API calls.
//   - StateDBPath: path of the local SQLite state database.
//   - UploadEndpoint: files endpoint for chunked uploads; defaults to
//     APIBaseURL + "/files" when empty.
//   - UploadBackend: "http" (chunked, default) or "s3".
//   - S3Bucket: target bucket when UploadBackend is "s3".
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	StateDBPath    string
	UploadEndpoint string
	UploadBackend  string
	S3Bucket       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.StateDBPath = "console.db"
	c.UploadBackend = "http"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	if cfg.UploadEndpoint == "" {
		cfg.UploadEndpoint = cfg.APIBaseURL + "/files"
	}
	return cfg
}
