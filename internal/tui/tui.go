// Package tui provides a Bubble Tea terminal user interface for apkpure-downloader.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/apkpure-downloader/internal/config"
	"github.com/handiism/apkpure-downloader/internal/download"
	"github.com/handiism/apkpure-downloader/internal/model"
)

// maxLogs is how many progress lines stay on screen.
const maxLogs = 12

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *slog.Logger
	logs      []LogEntry
	requests  []model.Request
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// run identifies the current run. Messages from earlier runs are dropped.
	run int

	done  int32
	total int32

	// Results of the last run, by outcome.
	summary map[model.Outcome]int

	// Options
	listVersions bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model running with settings.
func NewModel(settings *config.Settings, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "org.example.app, org.example.other@1.2.3"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accent

	prog := progress.New(progress.WithGradient(string(teal), string(green)))
	prog.Width = 50

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every event the manager emits.
	ProgressMsg struct {
		Run   int
		Event download.ProgressEvent
	}

	// StartMsg carries the manager created for a run.
	StartMsg struct {
		Run     int
		Manager *download.Manager
		Events  chan download.ProgressEvent
		Err     error
	}

	// DoneMsg is sent when the run has finished.
	DoneMsg struct {
		Run      int
		Outcomes []model.Outcome
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				reqs, err := model.ParseRequests(m.textInput.Value())
				if err != nil {
					m.state = StateError
					m.err = err
					return m, nil
				}
				if len(reqs) == 0 {
					return m, nil
				}
				m.requests = reqs
				m.state = StateRunning
				m.run++
				return m, tea.Batch(m.start(), m.spinner.Tick)
			}

		case "l":
			if m.state == StateInput {
				m.listVersions = !m.listVersions
				return m, nil
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.cancel()
				m.run++
				m.state = StateInput
				m.logs = nil
				m.requests = nil
				m.err = nil
				m.done = 0
				m.total = 0
				m.summary = nil
				m.manager = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StartMsg:
		if msg.Run != m.run {
			if msg.Manager != nil {
				close(msg.Events)
				_ = msg.Manager.Close()
			}
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.manager = msg.Manager
		m.events = msg.Events
		m.total = int32(len(m.requests))
		cmds = append(cmds, m.execute(), waitForEvent(m.run, m.events), m.tickProgress())

	case ProgressMsg:
		if msg.Run != m.run {
			break
		}
		cmds = append(cmds, waitForEvent(m.run, m.events))
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case DoneMsg:
		if msg.Run != m.run {
			break
		}
		if m.manager != nil {
			m.done, m.total = m.manager.GetProgress()
		}
		m.summary = make(map[model.Outcome]int)
		for _, o := range msg.Outcomes {
			m.summary[o]++
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.done, m.total = m.manager.GetProgress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event of run. It returns nil once
// the channel is closed, which ends the chain.
func waitForEvent(run int, events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Run: run, Event: event}
	}
}

// start creates the manager for the current requests. Events are forwarded
// through a buffered channel that run closes when the manager returns; once
// the run is cancelled undelivered events are dropped.
func (m Model) start() tea.Cmd {
	settings := *m.settings
	logger := m.logger
	ctx := m.ctx
	run := m.run
	return func() tea.Msg {
		events := make(chan download.ProgressEvent, 64)
		manager, err := download.NewManager(&settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		}, download.WithLogger(logger))
		if err != nil {
			return StartMsg{Run: run, Err: err}
		}
		return StartMsg{Run: run, Manager: manager, Events: events}
	}
}

// execute runs the downloads or the version listing in the background.
func (m Model) execute() tea.Cmd {
	run := m.run
	ctx := m.ctx
	manager := m.manager
	events := m.events
	requests := m.requests
	listVersions := m.listVersions
	return func() tea.Msg {
		defer close(events)
		defer manager.Close()

		var outcomes []model.Outcome
		if listVersions {
			for _, l := range manager.ListVersions(ctx, requests) {
				if l.Err != nil {
					outcomes = append(outcomes, model.OutcomeBadResponse)
				} else {
					outcomes = append(outcomes, model.OutcomeSuccess)
				}
			}
			return DoneMsg{Run: run, Outcomes: outcomes}
		}

		results, err := manager.Download(ctx, requests)
		for _, r := range results {
			outcomes = append(outcomes, r.Outcome)
		}
		return DoneMsg{Run: run, Outcomes: outcomes, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
