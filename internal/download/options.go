package download

import (
	"context"
	"errors"
	"log/slog"
)

// Catalog fetches listing pages.
type Catalog interface {
	GetListing(ctx context.Context, packageID string) (string, error)
}

// Downloader streams a URL to dir/filename. Errors wrapping fs.ErrExist or
// fs.ErrPermission are final; all others are retried.
type Downloader interface {
	DownloadFile(ctx context.Context, url, dir, filename string) error
}

// Option is a functional option for NewManager.
type Option func(*options) error

type options struct {
	catalog    Catalog
	downloader Downloader
	logger     *slog.Logger
	metrics    *Metrics
}

// WithCatalog replaces the HTTP listing client.
func WithCatalog(c Catalog) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("catalog must not be nil")
		}
		o.catalog = c
		return nil
	}
}

// WithDownloader replaces the HTTP download client.
func WithDownloader(d Downloader) Option {
	return func(o *options) error {
		if d == nil {
			return errors.New("downloader must not be nil")
		}
		o.downloader = d
		return nil
	}
}

// WithLogger injects a custom slog.Logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics records into m instead of a private Metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) error {
		if m == nil {
			return errors.New("metrics must not be nil")
		}
		o.metrics = m
		return nil
	}
}
