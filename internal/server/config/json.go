package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	LogLevel              string         `json:"log_level"`
	MediaBackend          string         `json:"media_backend"`
	MediaRoot             string         `json:"media_root"`
	MediaBaseURL          string         `json:"media_base_url"`
	MaxImageBytes         int64          `json:"max_image_bytes"`
	ImageURLValidity      timex.Duration `json:"image_url_validity"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	RateLimit             float64        `json:"rate_limit"`
	RateLimitBurst        int            `json:"rate_limit_burst"`
}

// parseJson overlays the JSON file at path on config. Keys missing from the
// file keep their current values. An empty path is a no-op.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP:      config.EndpointAddrHTTP,
		DatabaseDSN:           config.DatabaseDSN,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		LogLevel:              config.LogLevel,
		MediaBackend:          config.MediaBackend,
		MediaRoot:             config.MediaRoot,
		MediaBaseURL:          config.MediaBaseURL,
		MaxImageBytes:         config.MaxImageBytes,
		ImageURLValidity:      timex.Duration{Duration: config.ImageURLValidity},
		S3RootUser:            config.S3RootUser,
		S3RootPassword:        config.S3RootPassword,
		S3Bucket:              config.S3Bucket,
		S3Region:              config.S3Region,
		S3BaseEndpoint:        config.S3BaseEndpoint,
		RateLimit:             config.RateLimit,
		RateLimitBurst:        config.RateLimitBurst,
	}

	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration
	config.LogLevel = c.LogLevel
	config.MediaBackend = c.MediaBackend
	config.MediaRoot = c.MediaRoot
	config.MediaBaseURL = c.MediaBaseURL
	config.MaxImageBytes = c.MaxImageBytes
	config.ImageURLValidity = c.ImageURLValidity.Duration
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.RateLimit = c.RateLimit
	config.RateLimitBurst = c.RateLimitBurst
	return nil
}
