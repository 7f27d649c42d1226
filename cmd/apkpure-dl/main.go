package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/apkpure-downloader/internal/config"
	"github.com/handiism/apkpure-downloader/internal/download"
	"github.com/handiism/apkpure-downloader/internal/model"
)

// Exit codes. Per-package failures are reported, not turned into a
// non-zero exit.
const (
	exitSuccess     = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		appFlag      = flag.String("app", "", "Package id(s) to download, comma-separated (id or id@version)")
		csvFlag      = flag.String("csv", "", "CSV file with one package per line (id, id@version or id,version)")
		listFlag     = flag.Bool("list", false, "List available versions instead of downloading")
		parallelFlag = flag.Int("parallel", 0, "Number of parallel downloads (overrides config)")
		sleepFlag    = flag.Int("sleep-duration", -1, "Milliseconds to sleep before each request (overrides config)")
		outputFlag   = flag.String("output", "", "Output directory, or key prefix with -bucket (overrides config)")
		bucketFlag   = flag.String("bucket", "", "Store downloads in a bucket URL (s3://, gs://, file://) instead of the filesystem")
		configFlag   = flag.String("config", "", "Path to config file (JSON or YAML)")
		envFlag      = flag.String("env-file", ".env", "Path to a .env file")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		metricsFlag  = flag.String("metrics-file", "", "Write Prometheus metrics to this file when done")
	)

	flag.Parse()

	if *appFlag == "" && *csvFlag == "" && flag.NArg() == 0 {
		fmt.Println("APKPure Downloader - Download Android packages from APKPure")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  apkpure-dl -app <id[@version],...> [options]")
		fmt.Println("  apkpure-dl -csv <file> [options]")
		fmt.Println("  apkpure-dl <id[@version],...> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: apkpure-tui")
		fmt.Println()
		flag.PrintDefaults()
		return exitUsage
	}

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitError
	}
	if err := settings.LoadEnv(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading environment: %v\n", err)
		return exitError
	}

	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *bucketFlag != "" {
		settings.BucketURL = *bucketFlag
	}
	if *parallelFlag != 0 {
		settings.Parallel = *parallelFlag
	}
	if *sleepFlag >= 0 {
		settings.SleepDuration = *sleepFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in settings: %v\n", err)
		return exitError
	}

	logger := settings.NewLogger(os.Stderr)

	requests, err := readRequests(*appFlag, *csvFlag, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading packages: %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}
		fmt.Println(event.Message)
	}, download.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating manager: %v\n", err)
		return exitError
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Error("closing bucket", "error", err)
		}
	}()

	if *listFlag {
		manager.ListVersions(ctx, requests)
	} else if _, err := manager.Download(ctx, requests); err != nil {
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		return exitError
	}

	if *metricsFlag != "" {
		if err := manager.Metrics().WriteTextfile(*metricsFlag); err != nil {
			logger.Error("writing metrics", "path", *metricsFlag, "error", err)
		}
	}

	if ctx.Err() != nil {
		fmt.Println("\nInterrupted.")
		return exitInterrupted
	}
	return exitSuccess
}

// readRequests collects requests from -app, -csv and positional arguments,
// in that order.
func readRequests(apps, csvPath string, args []string) ([]model.Request, error) {
	var requests []model.Request

	if apps != "" {
		reqs, err := model.ParseRequests(apps)
		if err != nil {
			return nil, err
		}
		requests = append(requests, reqs...)
	}

	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		reqs, err := model.ReadRequests(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", csvPath, err)
		}
		requests = append(requests, reqs...)
	}

	for _, arg := range args {
		reqs, err := model.ParseRequests(arg)
		if err != nil {
			return nil, err
		}
		requests = append(requests, reqs...)
	}

	slog.Debug("requests parsed", "count", len(requests))
	return requests, nil
}
