// Package tui runs the interactive browsing session: scan with live
// progress, then navigate the result tree and delete entries one at a time.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reclaim-cli/reclaim/internal/browse"
	"github.com/reclaim-cli/reclaim/internal/scan"
	"github.com/reclaim-cli/reclaim/internal/sweep"
)

type scanDoneMsg struct {
	result *scan.Result
	err    error
}

type progressTickMsg struct{}

type deleteDoneMsg struct {
	err error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Sort   key.Binding
	Delete key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("←/h", "back"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Sort, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Enter, k.Back},
		{k.Sort, k.Delete, k.Help, k.Quit},
	}
}

// Model is the bubbletea program state. All deletion and navigation logic
// lives in the browser state machine; the model only translates messages.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	scanner  *scan.Scanner
	executor *sweep.Executor
	progress *scan.Progress

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int

	scanning bool
	root     string
	browser  *browse.Browser
	warnings []scan.Warning
	fatalErr error
}

// New builds the interactive model. The scanner must not have been started.
func New(ctx context.Context, root string, scanner *scan.Scanner, progress *scan.Progress, executor *sweep.Executor) Model {
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return Model{
		ctx:      ctx,
		cancel:   cancel,
		scanner:  scanner,
		executor: executor,
		progress: progress,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  sp,
		scanning: true,
		root:     root,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startScan(), progressTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.scanning || m.deleting() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case progressTickMsg:
		if m.scanning {
			return m, progressTick()
		}
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		if msg.err != nil {
			m.fatalErr = msg.err
			m.cancel()
			return m, tea.Quit
		}
		m.browser = browse.New(msg.result.Root)
		m.warnings = msg.result.Warnings
		return m, nil

	case deleteDoneMsg:
		if m.browser != nil {
			m.browser.Resolve(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.browser != nil {
			m.browser.Quit()
		}
		m.cancel()
		return m, tea.Quit
	}

	if m.scanning || m.browser == nil {
		return m, nil
	}

	switch m.browser.Phase() {
	case browse.PhaseConfirming:
		switch msg.String() {
		case "y", "Y":
			target := m.browser.Confirm()
			return m, tea.Batch(m.spinner.Tick, m.deleteCmd(target))
		case "n", "N":
			m.browser.Cancel()
		}
		return m, nil

	case browse.PhaseDeleting:
		// The one suspension point: wait for deleteDoneMsg.
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.browser.CursorUp()
	case key.Matches(msg, m.keys.Down):
		m.browser.CursorDown()
	case key.Matches(msg, m.keys.Top):
		m.browser.CursorTop()
	case key.Matches(msg, m.keys.Bottom):
		m.browser.CursorBottom()
	case key.Matches(msg, m.keys.Enter):
		m.browser.Enter()
	case key.Matches(msg, m.keys.Back):
		m.browser.Back()
	case key.Matches(msg, m.keys.Sort):
		m.browser.CycleSort()
	case key.Matches(msg, m.keys.Delete):
		// Protected entries are rejected inside the browser; the inline
		// error is already set.
		_ = m.browser.RequestDelete()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// FatalErr reports a scan failure after the program exits.
func (m Model) FatalErr() error { return m.fatalErr }

func (m Model) deleting() bool {
	return m.browser != nil && m.browser.Phase() == browse.PhaseDeleting
}

func (m Model) startScan() tea.Cmd {
	return func() tea.Msg {
		res, err := m.scanner.Scan(m.ctx)
		return scanDoneMsg{result: res, err: err}
	}
}

func (m Model) deleteCmd(target *scan.Entry) tea.Cmd {
	return func() tea.Msg {
		report := m.executor.DeleteOne(target, false)
		if failures := report.Failures(); len(failures) > 0 {
			return deleteDoneMsg{err: failures[0]}
		}
		return deleteDoneMsg{}
	}
}

func progressTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
