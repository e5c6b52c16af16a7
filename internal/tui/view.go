package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/reclaim-cli/reclaim/internal/browse"
)

type styles struct {
	title     lipgloss.Style
	path      lipgloss.Style
	muted     lipgloss.Style
	cursor    lipgloss.Style
	matched   lipgloss.Style
	protected lipgloss.Style
	danger    lipgloss.Style
	confirm   lipgloss.Style
	container lipgloss.Style
}

var ui = styles{
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	path:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true),
	matched:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	protected: lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true),
	danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
	container: lipgloss.NewStyle().Padding(0, 1),
}

func (m Model) View() string {
	if m.scanning {
		return ui.container.Render(m.scanView())
	}
	if m.browser == nil {
		return ""
	}
	return ui.container.Render(m.browseView())
}

func (m Model) scanView() string {
	line := fmt.Sprintf(
		"%s Scanning %s · %d dirs · %d files · %d matches · %s",
		m.spinner.View(),
		m.root,
		m.progress.Dirs.Load(),
		m.progress.Files.Load(),
		m.progress.Matches.Load(),
		humanize.IBytes(uint64(m.progress.Bytes.Load())),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		ui.title.Render("reclaim"),
		"",
		line,
		"",
		ui.muted.Render("q to cancel"),
	)
}

func (m Model) browseView() string {
	header := lipgloss.JoinHorizontal(
		lipgloss.Left,
		ui.title.Render("reclaim"),
		"  ",
		ui.path.Render(m.browser.Current().Path),
		"  ",
		ui.muted.Render(fmt.Sprintf("(%s, sort: %s)",
			humanize.IBytes(uint64(max64(m.browser.Current().Size, 0))),
			m.browser.Order())),
	)

	rows := m.listRows()
	footer := m.footerView()

	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n"), "", footer)
}

func (m Model) listRows() []string {
	entries := m.browser.Entries()
	if len(entries) == 0 {
		return []string{ui.muted.Render("  (empty)")}
	}

	visible := len(entries)
	limit := m.height - 7
	if limit < 5 {
		limit = 5
	}
	offset := 0
	if visible > limit {
		// Keep the cursor in view.
		offset = m.browser.Cursor() - limit/2
		if offset < 0 {
			offset = 0
		}
		if offset > visible-limit {
			offset = visible - limit
		}
		visible = limit
	}

	rows := make([]string, 0, visible)
	for i := offset; i < offset+visible; i++ {
		e := entries[i]
		size := humanize.IBytes(uint64(max64(e.Size, 0)))
		name := e.Name
		if e.Dir {
			name += "/"
		}

		var label string
		switch {
		case e.Protected:
			label = ui.protected.Render("protected")
		case e.Matched():
			label = ui.matched.Render(e.Reason.Pattern)
		}

		row := fmt.Sprintf("  %9s  %-40s %s", size, name, label)
		if i == m.browser.Cursor() {
			row = ui.cursor.Render("▸" + row[1:])
		}
		rows = append(rows, row)
	}
	return rows
}

func (m Model) footerView() string {
	switch m.browser.Phase() {
	case browse.PhaseConfirming:
		t := m.browser.Target()
		return ui.confirm.Render(fmt.Sprintf("Delete %s (%s)? (y/n)",
			t.Name, humanize.IBytes(uint64(max64(t.Size, 0)))))
	case browse.PhaseDeleting:
		return fmt.Sprintf("%s Deleting…", m.spinner.View())
	}

	var lines []string
	if errMsg := m.browser.LastError(); errMsg != "" {
		lines = append(lines, ui.danger.Render(errMsg))
	} else if status := m.browser.Status(); status != "" {
		lines = append(lines, ui.muted.Render(status))
	}
	if len(m.warnings) > 0 {
		lines = append(lines, ui.muted.Render(fmt.Sprintf("%d scan warnings", len(m.warnings))))
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
