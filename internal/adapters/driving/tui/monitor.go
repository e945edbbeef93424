// Package tui provides the terminal import monitor following the Elm
// architecture. It implements tea.Model for use with Bubbletea: the
// import runs in a background command while the model polls the
// importer's status and renders live progress.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mongoflat/mongoflat/internal/adapters/driving/tui/keymap"
	"github.com/mongoflat/mongoflat/internal/adapters/driving/tui/styles"
	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
)

// statusPollInterval is how often the monitor asks the importer for
// progress.
const statusPollInterval = 250 * time.Millisecond

// pollMsg asks for a status refresh.
type pollMsg time.Time

// runDoneMsg reports the finished import.
type runDoneMsg struct {
	summary domain.RunSummary
	err     error
}

// Monitor is the import progress TUI. It starts one import run on Init,
// shows its phase and counters while it goes, and quits when the run
// finishes or the user asks to stop watching.
type Monitor struct {
	// importer is the service running the import.
	importer driving.Importer

	// entity is the entity being imported.
	entity string

	// delta selects a delta import instead of a full one.
	delta bool

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// spin is the activity spinner shown while the run is going.
	spin spinner.Model

	// status is the importer's last reported progress.
	status driving.ImportStatus

	// summary and err hold the run's outcome once done is set.
	summary domain.RunSummary
	err     error
	done    bool

	// showAll expands the stats block beyond rows and records.
	showAll bool

	// width is the terminal width.
	width int
}

// Ensure Monitor implements tea.Model.
var _ tea.Model = (*Monitor)(nil)

// NewMonitor creates a monitor for one import run.
func NewMonitor(importer driving.Importer, entity string, delta bool) *Monitor {
	s := styles.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &Monitor{
		importer: importer,
		entity:   entity,
		delta:    delta,
		ctx:      context.Background(),
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		spin:     sp,
	}
}

// WithContext sets the context for the monitor.
func (m *Monitor) WithContext(ctx context.Context) *Monitor {
	if ctx != nil {
		m.ctx = ctx
	}
	return m
}

// Init implements tea.Model. It kicks off the import, the spinner and
// the status polling loop.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("mongoflat import"),
		m.spin.Tick,
		m.startRun(),
		m.poll(),
	)
}

// startRun runs the import in a background command.
func (m *Monitor) startRun() tea.Cmd {
	return func() tea.Msg {
		var summary domain.RunSummary
		var err error
		if m.delta {
			summary, err = m.importer.DeltaImport(m.ctx, m.entity)
		} else {
			summary, err = m.importer.FullImport(m.ctx, m.entity)
		}
		return runDoneMsg{summary: summary, err: err}
	}
}

// poll schedules the next status refresh.
func (m *Monitor) poll() tea.Cmd {
	return tea.Tick(statusPollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), m.keymap.Quit):
			return m, tea.Quit
		case keymap.Matches(msg.String(), m.keymap.ToggleStats):
			m.showAll = !m.showAll
		}
		return m, nil

	case pollMsg:
		if m.done {
			return m, nil
		}
		status, err := m.importer.Status(m.ctx)
		if err == nil {
			m.status = status
		}
		return m, m.poll()

	case runDoneMsg:
		m.done = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder

	mode := "full import"
	if m.delta {
		mode = "delta import"
	}
	b.WriteString(m.styles.Title.Render("mongoflat"))
	b.WriteString(" ")
	b.WriteString(m.styles.Muted.Render(mode + " of " + m.entity))
	b.WriteString("\n\n")

	b.WriteString(m.viewPhase())
	b.WriteString("\n\n")
	b.WriteString(m.viewStats())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.viewHelp()))
	b.WriteString("\n")

	return b.String()
}

func (m *Monitor) viewPhase() string {
	if m.done {
		if m.err != nil {
			return m.styles.Error.Render("✗ import failed: " + m.err.Error())
		}
		return m.styles.Success.Render("✓ import finished")
	}

	phase := m.status.Phase.String()
	if !m.status.Running {
		phase = "starting"
	}
	return m.spin.View() + " " + m.styles.Subtitle.Render(phase)
}

func (m *Monitor) viewStats() string {
	stats := m.status.Stats
	if m.done {
		stats = m.summary.Stats
	}

	var b strings.Builder
	writeStat := func(label string, value int64) {
		b.WriteString(fmt.Sprintf("  %s %d\n",
			m.styles.Muted.Render(fmt.Sprintf("%-16s", label)), value))
	}

	writeStat("Rows read", stats.RowsRead)
	writeStat("Records written", stats.RecordsWritten)
	if m.showAll {
		writeStat("Keys discovered", stats.KeysDiscovered)
		writeStat("Queries", stats.Queries)
	}
	if m.showAll || stats.DateWarnings > 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.styles.Muted.Render(fmt.Sprintf("%-16s", "Date warnings")),
			m.styles.Warning.Render(fmt.Sprintf("%d", stats.DateWarnings))))
	}
	return b.String()
}

func (m *Monitor) viewHelp() string {
	parts := make([]string, 0, 2)
	for _, binding := range m.keymap.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return "  " + strings.Join(parts, " • ")
}

// Err returns the import error, if the run failed.
func (m *Monitor) Err() error {
	return m.err
}

// Summary returns the run summary and whether the run finished while
// the monitor was up.
func (m *Monitor) Summary() (domain.RunSummary, bool) {
	return m.summary, m.done
}

// Status returns the last polled import status.
func (m *Monitor) Status() driving.ImportStatus {
	return m.status
}
