package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/handiism/apkpure-downloader/internal/apkpure"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "APKPURE"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath string `json:"downloads_path" yaml:"downloads_path" envconfig:"DOWNLOADS_PATH" validate:"required"`
	Parallel      int    `json:"parallel" yaml:"parallel" envconfig:"PARALLEL" validate:"min=1,max=64"`
	SleepDuration int    `json:"sleep_duration" yaml:"sleep_duration" envconfig:"SLEEP_DURATION" validate:"min=0"` // milliseconds

	// BucketURL sends downloads to a gocloud bucket (s3://, gs://, file://,
	// mem://) instead of the local filesystem. DownloadsPath is then the key
	// prefix inside the bucket.
	BucketURL string `json:"bucket_url" yaml:"bucket_url" envconfig:"BUCKET_URL" validate:"omitempty,contains=://"`

	// Catalog settings
	VersionsURL       string  `json:"versions_url" yaml:"versions_url" envconfig:"VERSIONS_URL" validate:"required,url"`
	RequestTimeout    int     `json:"request_timeout" yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"min=0"` // seconds per listing fetch, 0 = none
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"min=0"`
	RequestBurst      int     `json:"request_burst" yaml:"request_burst" envconfig:"REQUEST_BURST" validate:"min=0"`

	// Logging settings
	LogLevel  string `json:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath: ".",
		Parallel:      1,
		SleepDuration: 0,

		VersionsURL:       apkpure.VersionsURL,
		RequestTimeout:    0,
		RequestsPerSecond: 0,
		RequestBurst:      1,

		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Pace is the delay each task waits before its first request.
func (s *Settings) Pace() time.Duration {
	return time.Duration(s.SleepDuration) * time.Millisecond
}

// Timeout bounds each listing page fetch, zero when unlimited. APK
// downloads are not limited by it.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return settings, nil
}

// LoadEnv overrides settings from APKPURE_* environment variables.
// If envFile is not empty it is loaded first; variables already present
// in the environment win over the file, and a missing file is ignored.
func (s *Settings) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	return nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints and returns the
// first violations found.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
