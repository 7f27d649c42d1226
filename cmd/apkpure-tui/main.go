package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/apkpure-downloader/internal/config"
	"github.com/handiism/apkpure-downloader/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file (JSON or YAML)")
		envFlag    = flag.String("env-file", ".env", "Path to a .env file")
		logFlag    = flag.String("log-file", "apkpure-tui.log", "File that receives the application log")
	)
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err == nil {
		err = settings.LoadEnv(*envFlag)
	}
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := tea.LogToFile(*logFlag, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if err := tui.Run(settings, settings.NewLogger(logFile)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
