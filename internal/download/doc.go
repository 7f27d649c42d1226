// Package download provides the orchestration logic for fetching APKs
// from the APKPure catalog.
//
// # Manager
//
// The Manager coordinates the whole process for every request:
//
//  1. Wait the configured start delay
//  2. Fetch the package's version listing page
//  3. Resolve a download URL (latest, or pinned to a version)
//  4. Stream the APK to disk, retrying transient failures
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	results, err := manager.Download(ctx, requests)
//	listings := manager.ListVersions(ctx, requests)
//
// # Concurrency
//
// At most settings.Parallel requests are active at once. A request takes
// its slot before its start delay, so queued requests neither sleep nor
// touch the network. Events are delivered in completion order, which is
// unspecified; Download returns results in input order.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Package string
//	    Outcome model.Outcome // set on the final event of a request
//	    ...
//	}
//
// # Storage
//
// Artifacts are written under settings.DownloadsPath. With settings.BucketURL
// set they go to that blob bucket instead, keyed by the same path; Close
// releases the bucket.
//
// # Retry Logic
//
// A download is attempted at most three times, back to back. A file that
// already exists or cannot be written ends the request immediately; any
// other failure is retried. Listing fetch failures and pages without a
// download URL are reported and not retried.
package download
