package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	ioutils "github.com/handiism/apkpure-downloader/internal/io"
)

// ErrBadStatus is wrapped by StatusError.
var ErrBadStatus = errors.New("unexpected status")

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s", ErrBadStatus, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// Config holds the settings for NewClient.
type Config struct {
	// VersionsURL is the listing endpoint; the package id is appended to it.
	VersionsURL string

	// Headers are attached to every listing request. They are read, never
	// modified, so one value can be shared by every task.
	Headers http.Header

	// ListingTimeout bounds one listing fetch including its body. Artifact
	// downloads are not limited by it. Zero means no limit.
	ListingTimeout time.Duration

	// RequestsPerSecond enables throttling when greater than zero.
	RequestsPerSecond float64

	// Burst is the throttle's bucket size. Values below 1 are treated as 1.
	Burst int

	// Transport overrides http.DefaultTransport. Used by tests.
	Transport http.RoundTripper

	// Logger receives throttle diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client wraps HTTP operations with catalog-specific configuration.
//
// A Client is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	versionsURL    string
	headers        http.Header
	listingTimeout time.Duration
}

// NewClient creates a new HTTP client configured for the catalog.
func NewClient(cfg Config) (*Client, error) {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RequestsPerSecond > 0 {
		rt, err := newThrottle(cfg.RequestsPerSecond, cfg.Burst, logger, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
		},
		versionsURL:    cfg.VersionsURL,
		headers:        cfg.Headers,
		listingTimeout: cfg.ListingTimeout,
	}, nil
}

// GetListing fetches the version listing page for packageID and returns
// its body as text.
//
// Returns a *StatusError if the response status is not 200 OK.
func (c *Client) GetListing(ctx context.Context, packageID string) (string, error) {
	if c.listingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.listingTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.versionsURL+packageID, nil)
	if err != nil {
		return "", fmt.Errorf("building listing request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading listing body: %w", err)
	}
	return string(body), nil
}

// DownloadFile streams url into dir/filename.
//
// The existence check happens before any network traffic, so re-running a
// batch does not re-download what is already on disk. Errors wrap
// fs.ErrExist or fs.ErrPermission for those two conditions; everything
// else (network errors, bad status, short reads) is transient from the
// caller's point of view.
func (c *Client) DownloadFile(ctx context.Context, url, dir, filename string) error {
	if ioutils.Exists(dir, filename) {
		return &fs.PathError{Op: "download", Path: filepath.Join(dir, filename), Err: fs.ErrExist}
	}

	body, err := c.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	// A body shorter than Content-Length fails the copy with
	// io.ErrUnexpectedEOF, so a truncated file is never renamed into place.
	if _, err := ioutils.WriteStream(ctx, body, dir, filename); err != nil {
		return err
	}
	return nil
}

// Open issues a GET for url and returns the response body. The caller must
// close it. Returns a *StatusError if the response status is not 200 OK.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, nil
}
