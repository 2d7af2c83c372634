package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/adminkit/adminctl/internal/flagx"
	"github.com/adminkit/adminctl/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify timeouts either as strings like "10s"
// or as integer nanoseconds.
type jsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	StateDBPath    string         `json:"state_db_path"`
	UploadEndpoint string         `json:"upload_endpoint"`
	UploadBackend  string         `json:"upload_backend"`
	S3Bucket       string         `json:"s3_bucket"`
}

// parseJSON overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags; when absent, nothing is loaded. Only
// fields present in the file override the current values.
//
// Intended usage is: defaults -> parseJSON -> parseFlags, where later stages
// override earlier ones.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.StateDBPath != "" {
		cfg.StateDBPath = jc.StateDBPath
	}
	if jc.UploadEndpoint != "" {
		cfg.UploadEndpoint = jc.UploadEndpoint
	}
	if jc.UploadBackend != "" {
		cfg.UploadBackend = jc.UploadBackend
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
}
