package tui

import (
	"fmt"
	"strings"

	"github.com/handiism/apkpure-downloader/internal/model"
)

// View renders the UI.
func (m Model) View() string {
	sections := []string{
		heading.Render("APKPure Downloader"),
		muted.Render("Download Android packages from APKPure"),
		"",
	}

	switch m.state {
	case StateInput:
		sections = append(sections, m.viewInput())
	case StateRunning:
		sections = append(sections, m.viewRunning())
	case StateComplete:
		sections = append(sections, m.viewComplete())
	case StateError:
		sections = append(sections, m.viewError())
	}

	sections = append(sections, muted.Render(m.helpLine()))
	return strings.Join(sections, "\n")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	lines := []string{
		label.Render("Enter package ids (id or id@version, comma-separated):"),
		"",
		m.textInput.View(),
		"",
		label.Render("Options:"),
		fmt.Sprintf("  %s List available versions only (l)", checkbox(m.listVersions)),
		fmt.Sprintf("  %s Verbose/debug output (v)", checkbox(m.verbose)),
		"",
	}

	target := m.settings.DownloadsPath
	if m.settings.BucketURL != "" {
		target = m.settings.BucketURL + " (" + target + ")"
	}
	lines = append(lines, muted.Render(fmt.Sprintf("Output: %s | Parallel: %d | Sleep: %dms",
		target, m.settings.Parallel, m.settings.SleepDuration)), "")

	return strings.Join(lines, "\n")
}

func (m Model) viewRunning() string {
	var b strings.Builder

	title := fmt.Sprintf("Downloading %d package(s):", len(m.requests))
	if m.listVersions {
		title = "Fetching version listings..."
	}
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), label.Render(title))
	for _, req := range m.requests {
		b.WriteString(pkg.Render("  • "+req.String()) + "\n")
	}

	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	fmt.Fprintf(&b, "\n%s\n%s\n\n", m.progress.ViewAs(percent),
		muted.Render(fmt.Sprintf("Packages: %d/%d", m.done, m.total)))

	b.WriteString(m.logPane())
	return b.String()
}

func (m Model) viewComplete() string {
	title := "Download Complete!"
	if m.listVersions {
		title = "Listing Complete!"
	}

	lines := []string{accent.Render(title), ""}
	for _, o := range model.Outcomes() {
		if n := m.summary[o]; n > 0 {
			lines = append(lines, fmt.Sprintf("%-18s %d", o.String()+":", n))
		}
	}

	return summaryBox.Render(strings.Join(lines, "\n")) + "\n\n" + m.logPane()
}

func (m Model) viewError() string {
	out := failure.Render("Error occurred:") + "\n\n"
	if m.err != nil {
		out += "  " + m.err.Error() + "\n"
	}
	return out
}

// logPane renders the most recent progress lines.
func (m Model) logPane() string {
	var b strings.Builder
	for _, entry := range m.logs {
		mark := markFor(entry.Level)
		b.WriteString(mark.style.Render(mark.prefix+" "+entry.Message) + "\n")
	}
	return b.String()
}

func (m Model) helpLine() string {
	switch m.state {
	case StateInput:
		return "enter: start • l: list versions • v: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	default:
		return "r: new run • q: quit"
	}
}
