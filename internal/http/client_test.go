package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.VersionsURL = srv.URL + "/versions?package_name="
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClient_GetListing(t *testing.T) {
	var gotPackage, gotCV string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPackage = r.URL.Query().Get("package_name")
		gotCV = r.Header.Get("x-cv")
		_, _ = w.Write([]byte("listing body"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{Headers: http.Header{"X-Cv": {"3172501"}}})

	page, err := c.GetListing(t.Context(), "org.example.app")
	require.NoError(t, err)
	assert.Equal(t, "listing body", page)
	assert.Equal(t, "org.example.app", gotPackage)
	assert.Equal(t, "3172501", gotCV)
}

func TestClient_ListingTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{ListingTimeout: 30 * time.Millisecond})

	_, err := c.GetListing(t.Context(), "org.example.app")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ListingTimeoutSparesDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04"))
		w.(http.Flusher).Flush()
		time.Sleep(80 * time.Millisecond)
		_, _ = w.Write([]byte(" rest of the archive"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{ListingTimeout: 20 * time.Millisecond})
	dir := t.TempDir()

	require.NoError(t, c.DownloadFile(t.Context(), srv.URL+"/file.apk", dir, "a.apk"))

	data, err := os.ReadFile(filepath.Join(dir, "a.apk"))
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04 rest of the archive", string(data))
}

func TestClient_GetListing_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	_, err := c.GetListing(t.Context(), "org.example.app")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadStatus)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_DownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04apk"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	dir := t.TempDir()

	require.NoError(t, c.DownloadFile(t.Context(), srv.URL+"/file", dir, "a.apk"))

	data, err := os.ReadFile(filepath.Join(dir, "a.apk"))
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04apk", string(data))
}

func TestClient_DownloadFile_ExistsSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.apk"), []byte("x"), 0644))

	err := c.DownloadFile(t.Context(), srv.URL+"/file", dir, "a.apk")
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Zero(t, hits.Load())
}

func TestClient_DownloadFile_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	dir := t.TempDir()

	err := c.DownloadFile(t.Context(), srv.URL+"/file", dir, "a.apk")
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.NoFileExists(t, filepath.Join(dir, "a.apk"))
}

func TestClient_DownloadFile_Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(100))
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	dir := t.TempDir()

	err := c.DownloadFile(t.Context(), srv.URL+"/file", dir, "a.apk")
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrExist)
	assert.NoFileExists(t, filepath.Join(dir, "a.apk"))
}

func TestClient_Throttle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{RequestsPerSecond: 20, Burst: 1})

	start := time.Now()
	for range 3 {
		_, err := c.GetListing(t.Context(), "a")
		require.NoError(t, err)
	}
	// Burst of one at 20 rps: the second and third calls wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestNewClient_InvalidThrottle(t *testing.T) {
	_, err := newThrottle(0, 1, nil, http.DefaultTransport)
	assert.ErrorIs(t, err, errMustBePositive)
}
