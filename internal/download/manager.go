package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/apkpure-downloader/internal/apkpure"
	"github.com/handiism/apkpure-downloader/internal/config"
	"github.com/handiism/apkpure-downloader/internal/http"
	ioutils "github.com/handiism/apkpure-downloader/internal/io"
	"github.com/handiism/apkpure-downloader/internal/model"
	"github.com/handiism/apkpure-downloader/internal/storage"
)

// maxAttempts is how many times one download URL is tried.
const maxAttempts = 3

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Package is the request in "id" or "id@version" form.
	Package string

	// Outcome is set on the last event of a request and OutcomeNone otherwise.
	Outcome model.Outcome

	// Attempt is the failed attempt number on retry events.
	Attempt int

	// Versions is set on version listing events.
	Versions []string
}

// Result is the terminal state of one request.
type Result struct {
	Request  model.Request
	Outcome  model.Outcome
	URL      string
	Attempts int
	Err      error
}

// VersionListing holds the versions advertised for one package.
type VersionListing struct {
	PackageID string
	Versions  []string
	Err       error
}

// Manager coordinates APK downloads.
type Manager struct {
	settings   *config.Settings
	catalog    Catalog
	downloader Downloader
	logger     *slog.Logger
	metrics    *Metrics

	// bucket is set when downloads go to a blob bucket opened by NewManager.
	bucket *storage.Bucket

	totalRequests int32
	doneRequests  int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager. Unless replaced by options,
// listing pages and artifacts are fetched with one shared http.Client
// carrying the catalog headers. When settings.BucketURL is set the
// artifacts are written to that bucket; call Close to release it.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), optFns ...Option) (*Manager, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying manager option: %w", err)
		}
	}

	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.metrics == nil {
		opts.metrics = NewMetrics()
	}

	var bucket *storage.Bucket
	if opts.catalog == nil || opts.downloader == nil {
		client, err := http.NewClient(http.Config{
			VersionsURL:       settings.VersionsURL,
			Headers:           apkpure.Headers(),
			ListingTimeout:    settings.Timeout(),
			RequestsPerSecond: settings.RequestsPerSecond,
			Burst:             settings.RequestBurst,
			Logger:            opts.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating http client: %w", err)
		}
		if opts.catalog == nil {
			opts.catalog = client
		}
		if opts.downloader == nil {
			if settings.BucketURL != "" {
				bucket, err = storage.Open(context.Background(), settings.BucketURL, client)
				if err != nil {
					return nil, err
				}
				opts.downloader = bucket
			} else {
				opts.downloader = client
			}
		}
	}

	return &Manager{
		settings:   settings,
		catalog:    opts.catalog,
		downloader: opts.downloader,
		logger:     opts.logger,
		metrics:    opts.metrics,
		bucket:     bucket,
		onProgress: onProgress,
	}, nil
}

// Close releases the bucket opened for settings.BucketURL, if any.
func (m *Manager) Close() error {
	if m.bucket == nil {
		return nil
	}
	return m.bucket.Close()
}

// Metrics returns the metrics the manager records into.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// GetProgress returns how many requests of the current run have finished.
func (m *Manager) GetProgress() (done, total int32) {
	return atomic.LoadInt32(&m.doneRequests), atomic.LoadInt32(&m.totalRequests)
}

// Download processes every request and blocks until all of them reached a
// terminal outcome. Failures are per request and never stop the others.
//
// Results are returned in input order. The only error returned is for an
// output directory that cannot be created.
func (m *Manager) Download(ctx context.Context, requests []model.Request) ([]Result, error) {
	dir := m.settings.DownloadsPath
	if m.settings.BucketURL == "" {
		if err := ioutils.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	atomic.StoreInt32(&m.totalRequests, int32(len(requests)))
	atomic.StoreInt32(&m.doneRequests, 0)

	logger := m.logger.With("run_id", uuid.NewString())
	logger.Info("starting downloads", "requests", len(requests), "parallel", m.settings.Parallel, "pace", m.settings.Pace())

	var g errgroup.Group
	g.SetLimit(max(m.settings.Parallel, 1))

	results := make([]Result, len(requests))
	for i, req := range requests {
		g.Go(func() error {
			m.metrics.active.Inc()
			defer m.metrics.active.Dec()

			results[i] = m.downloadRequest(ctx, logger, req, dir)

			m.metrics.observeOutcome(results[i].Outcome)
			atomic.AddInt32(&m.doneRequests, 1)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (m *Manager) downloadRequest(ctx context.Context, logger *slog.Logger, req model.Request, dir string) Result {
	label := req.String()
	logger = logger.With("package", label)
	result := Result{Request: req}

	if req.Pinned() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s version %s...", req.PackageID, req.Version), Level: LevelInfo, Package: label})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s...", label), Level: LevelInfo, Package: label})
	}

	if pace := m.settings.Pace(); pace > 0 {
		sleep(ctx, pace)
	}

	start := time.Now()
	page, err := m.catalog.GetListing(ctx, req.PackageID)
	m.metrics.observeListing(time.Since(start))
	if err != nil {
		logger.Warn("listing fetch failed", "error", err)
		result.Err = err
		return m.finish(result, model.OutcomeBadResponse)
	}

	matcher, err := apkpure.NewMatcher(req.Version)
	if err != nil {
		result.Err = err
		return m.finish(result, model.OutcomeNoMatch)
	}

	url, err := matcher.Resolve(page)
	if err != nil {
		logger.Warn("no download url", "error", err, "page_bytes", len(page))
		result.Err = err
		return m.finish(result, model.OutcomeNoMatch)
	}
	result.URL = url
	logger.Debug("resolved download url", "url", url)

	outcome, attempts, err := m.materialize(ctx, logger, label, url, dir, req.FileName())
	result.Attempts = attempts
	result.Err = err
	return m.finish(result, outcome)
}

// materialize runs up to maxAttempts downloads of url, back to back.
// It returns the terminal outcome, the number of attempts made and the
// last error seen.
func (m *Manager) materialize(ctx context.Context, logger *slog.Logger, label, url, dir, filename string) (model.Outcome, int, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.metrics.attempts.Inc()
		err = m.downloader.DownloadFile(ctx, url, dir, filename)

		switch {
		case err == nil:
			return model.OutcomeSuccess, attempt, nil
		case errors.Is(err, fs.ErrExist):
			return model.OutcomeAlreadyExists, attempt, err
		case errors.Is(err, fs.ErrPermission):
			return model.OutcomePermissionDenied, attempt, err
		}

		logger.Debug("download attempt failed", "attempt", attempt, "error", err)
		if attempt < maxAttempts {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("An error has occurred attempting to download %s.  Retry #%d...", label, attempt),
				Level:   LevelWarning,
				Package: label,
				Attempt: attempt,
			})
		}
	}

	return model.OutcomeExhausted, maxAttempts, err
}

// finish records the outcome on r and emits the request's final event.
func (m *Manager) finish(r Result, outcome model.Outcome) Result {
	r.Outcome = outcome
	label := r.Request.String()

	event := ProgressEvent{Package: label, Outcome: outcome}
	switch outcome {
	case model.OutcomeSuccess:
		event.Level = LevelSuccess
		event.Message = fmt.Sprintf("%s downloaded successfully!", label)
	case model.OutcomeAlreadyExists:
		event.Level = LevelInfo
		event.Message = fmt.Sprintf("File already exists for %s. Skipping...", label)
	case model.OutcomePermissionDenied:
		event.Level = LevelWarning
		event.Message = fmt.Sprintf("Permission denied when attempting to write file for %s. Skipping...", label)
	case model.OutcomeExhausted:
		event.Level = LevelError
		event.Message = fmt.Sprintf("An error has occurred attempting to download %s. Skipping...", label)
	case model.OutcomeNoMatch:
		event.Level = LevelError
		event.Message = fmt.Sprintf("Could not get download URL for %s. Skipping...", label)
	case model.OutcomeBadResponse:
		event.Level = LevelError
		event.Message = fmt.Sprintf("Invalid app response for %s. Skipping...", label)
	}

	m.progress(event)
	return r
}

// ListVersions fetches the listing page of each package in turn and reports
// the versions it advertises. Pinned versions on the requests are ignored.
func (m *Manager) ListVersions(ctx context.Context, requests []model.Request) []VersionListing {
	atomic.StoreInt32(&m.totalRequests, int32(len(requests)))
	atomic.StoreInt32(&m.doneRequests, 0)

	listings := make([]VersionListing, 0, len(requests))
	for _, req := range requests {
		listings = append(listings, m.listVersions(ctx, req.PackageID))
		atomic.AddInt32(&m.doneRequests, 1)
	}
	return listings
}

func (m *Manager) listVersions(ctx context.Context, packageID string) VersionListing {
	listing := VersionListing{PackageID: packageID}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Versions available for %s on APKPure:", packageID), Level: LevelInfo, Package: packageID})

	start := time.Now()
	page, err := m.catalog.GetListing(ctx, packageID)
	m.metrics.observeListing(time.Since(start))
	if err != nil {
		m.logger.Warn("listing fetch failed", "package", packageID, "error", err)
		listing.Err = err
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("| Invalid app response for %s. Skipping...", packageID),
			Level:   LevelError,
			Package: packageID,
			Outcome: model.OutcomeBadResponse,
		})
		return listing
	}

	listing.Versions = apkpure.Versions(page)
	m.progress(ProgressEvent{
		Message:  "| " + strings.Join(listing.Versions, ", "),
		Level:    LevelSuccess,
		Package:  packageID,
		Outcome:  model.OutcomeSuccess,
		Versions: listing.Versions,
	})
	return listing
}

// progress delivers event to the callback. Calls are serialized so the
// callback never runs concurrently with itself.
func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
