package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/apkpure-downloader/internal/download"
)

var (
	green  = lipgloss.Color("#3DDC84")
	teal   = lipgloss.Color("#2BB3A3")
	red    = lipgloss.Color("#E5534B")
	amber  = lipgloss.Color("#F2B84B")
	sky    = lipgloss.Color("#8EC5E8")
	gray   = lipgloss.Color("#7A8089")
	orange = lipgloss.Color("#F09A4A")

	accent  = lipgloss.NewStyle().Foreground(green)
	heading = lipgloss.NewStyle().Bold(true).Foreground(green).MarginBottom(1)
	label   = lipgloss.NewStyle().Foreground(teal)
	muted   = lipgloss.NewStyle().Foreground(gray)
	pkg     = lipgloss.NewStyle().Foreground(orange)
	failure = lipgloss.NewStyle().Foreground(red)

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(teal).
			Padding(0, 2)
)

// levelMark is how one progress level is drawn in the log pane.
type levelMark struct {
	prefix string
	style  lipgloss.Style
}

var levelMarks = map[download.ProgressLevel]levelMark{
	download.LevelInfo:    {"›", lipgloss.NewStyle().Foreground(sky)},
	download.LevelVerbose: {"·", muted},
	download.LevelWarning: {"!", lipgloss.NewStyle().Foreground(amber)},
	download.LevelError:   {"✗", failure},
	download.LevelSuccess: {"✓", accent},
}

func markFor(level download.ProgressLevel) levelMark {
	if mark, ok := levelMarks[level]; ok {
		return mark
	}
	return levelMark{"•", muted}
}
