package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/apkpure-downloader/internal/apkpure"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 1, s.Parallel)
	assert.Equal(t, 0, s.SleepDuration)
	assert.Equal(t, apkpure.VersionsURL, s.VersionsURL)
	assert.NoError(t, s.Validate())
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parallel": 4, "sleep_duration": 250, "downloads_path": "/apks"}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Parallel)
	assert.Equal(t, 250*time.Millisecond, s.Pace())
	assert.Equal(t, "/apks", s.DownloadsPath)
	assert.Equal(t, apkpure.VersionsURL, s.VersionsURL, "unset fields keep defaults")
}

func TestLoad_YAML(t *testing.T) {
	yamlContent := `
parallel: 8
request_timeout: 30
requests_per_second: 2.5
log_level: debug
log_format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Parallel)
	assert.Equal(t, 30*time.Second, s.Timeout())
	assert.InDelta(t, 2.5, s.RequestsPerSecond, 0.0001)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
}

func TestLoad_Missing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: [yaml: content"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("APKPURE_PARALLEL", "6")
	t.Setenv("APKPURE_SLEEP_DURATION", "100")
	t.Setenv("APKPURE_DOWNLOADS_PATH", "/env/apks")

	s := DefaultSettings()
	require.NoError(t, s.LoadEnv(""))

	assert.Equal(t, 6, s.Parallel)
	assert.Equal(t, 100, s.SleepDuration)
	assert.Equal(t, "/env/apks", s.DownloadsPath)
	assert.Equal(t, "warn", s.LogLevel, "unset variables keep current values")
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	// godotenv only sets variables that are absent, so clear it; t.Setenv
	// restores the original value afterwards.
	t.Setenv("APKPURE_REQUEST_BURST", "")
	require.NoError(t, os.Unsetenv("APKPURE_REQUEST_BURST"))
	t.Setenv("APKPURE_LOG_LEVEL", "error")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APKPURE_REQUEST_BURST=5\nAPKPURE_LOG_LEVEL=debug\n"), 0644))

	s := DefaultSettings()
	require.NoError(t, s.LoadEnv(envFile))

	assert.Equal(t, 5, s.RequestBurst)
	assert.Equal(t, "error", s.LogLevel, "process environment wins over .env")
}

func TestLoadEnv_MissingDotEnv(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.LoadEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadEnv_BadValue(t *testing.T) {
	t.Setenv("APKPURE_PARALLEL", "many")

	s := DefaultSettings()
	assert.Error(t, s.LoadEnv(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "zero parallel", mutate: func(s *Settings) { s.Parallel = 0 }, wantErr: true},
		{name: "negative sleep", mutate: func(s *Settings) { s.SleepDuration = -1 }, wantErr: true},
		{name: "empty output", mutate: func(s *Settings) { s.DownloadsPath = "" }, wantErr: true},
		{name: "bad url", mutate: func(s *Settings) { s.VersionsURL = "not a url" }, wantErr: true},
		{name: "bad log level", mutate: func(s *Settings) { s.LogLevel = "loud" }, wantErr: true},
		{name: "negative rps", mutate: func(s *Settings) { s.RequestsPerSecond = -1 }, wantErr: true},
		{name: "mem bucket", mutate: func(s *Settings) { s.BucketURL = "mem://" }},
		{name: "s3 bucket", mutate: func(s *Settings) { s.BucketURL = "s3://apks?region=eu-west-1" }},
		{name: "bad bucket", mutate: func(s *Settings) { s.BucketURL = "apks" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	s := DefaultSettings()
	s.Parallel = 3
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	s := DefaultSettings()
	s.LogLevel = "info"
	s.LogFormat = "json"

	logger := s.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
