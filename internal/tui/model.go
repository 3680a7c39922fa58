// Package tui is the terminal front end: a bubbletea program driving one
// calculator controller from the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/display"
	"calculator-frontend/internal/frontend"
	"calculator-frontend/internal/history"
)

// historyRows is how many history entries are rendered.
const historyRows = 10

// refreshMsg asks the model to re-read the controller state.
type refreshMsg struct{}

type calcDoneMsg struct{ err error }

type historyClearedMsg struct{}

type exportedMsg struct {
	path string
	err  error
}

// Refresher forwards controller changes to a running program. Its OnChange
// method is meant for frontend.WithOnChange.
type Refresher struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *Refresher) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

// OnChange never blocks: changes triggered from inside Update would
// otherwise wait on the program's own event loop.
func (r *Refresher) OnChange(display.View) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()

	if p != nil {
		go p.Send(refreshMsg{})
	}
}

type Model struct {
	ctx       context.Context
	ctrl      *frontend.Controller
	logger    *zap.Logger
	exportDir string
	now       func() time.Time

	keys keyMap
	help help.Model

	view    display.View
	history []calculator.HistoryEntry
	status  string
	busy    bool
}

type Option func(*Model)

// WithExportDir sets where ctrl+e writes history reports.
func WithExportDir(dir string) Option {
	return func(m *Model) { m.exportDir = dir }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

func New(ctx context.Context, ctrl *frontend.Controller, opts ...Option) Model {
	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		logger:    zap.NewNop(),
		exportDir: ".",
		now:       time.Now,
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m.refresh()
}

func (m Model) refresh() Model {
	m.view = m.ctrl.View()
	m.history = m.ctrl.History()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		return m.refresh(), nil

	case calcDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Debug("calculation finished with error", zap.Error(msg.err))
		}
		return m.refresh(), nil

	case historyClearedMsg:
		m.status = "history cleared"
		return m.refresh(), nil

	case exportedMsg:
		switch {
		case errors.Is(msg.err, history.ErrEmptyHistory):
			m.status = "no history to export"
		case msg.err != nil:
			m.status = "export failed: " + msg.err.Error()
			m.logger.Warn("history export failed", zap.Error(msg.err))
		default:
			m.status = "exported to " + msg.path
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ClearHistory):
		return m, m.clearHistory()
	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	case key.Matches(msg, m.keys.Sqrt):
		m.busy = true
		return m, m.calculate(func(ctx context.Context) error {
			return m.ctrl.CalculateUnary(ctx, calculator.OpSqrt)
		})
	}

	name, ok := controllerKey(msg)
	if !ok {
		return m, nil
	}

	if key.Matches(msg, m.keys.Calculate, m.keys.Percentage) {
		m.busy = true
		return m, m.calculate(func(ctx context.Context) error {
			return m.ctrl.HandleKey(ctx, name)
		})
	}

	if err := m.ctrl.HandleKey(m.ctx, name); err != nil {
		m.logger.Debug("key rejected", zap.String("key", name), zap.Error(err))
	}
	return m.refresh(), nil
}

// calculate runs fn off the event loop; service round trips never block input.
func (m Model) calculate(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return calcDoneMsg{err: fn(ctx)}
	}
}

func (m Model) clearHistory() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.ClearHistory(ctx)
		return historyClearedMsg{}
	}
}

func (m Model) export() tea.Cmd {
	ctrl := m.ctrl
	path := filepath.Join(m.exportDir, history.ReportFilename(m.now()))
	return func() tea.Msg {
		return exportedMsg{path: path, err: exportTo(ctrl, path)}
	}
}

func exportTo(ctrl *frontend.Controller, path string) error {
	if len(ctrl.History()) == 0 {
		return history.ErrEmptyHistory
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := ctrl.ExportHistory(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Calculator"))
	b.WriteString("\n")
	b.WriteString(m.renderDisplay())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n")
	b.WriteString(m.renderHistory())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderDisplay() string {
	previous := m.view.Previous
	if m.busy {
		previous = "… " + previous
	}

	current := currentStyle.Render(m.view.Current)
	if m.view.Error {
		current = errorStyle.Render(m.view.Current)
	}

	return displayStyle.Render(lipgloss.JoinVertical(lipgloss.Right,
		previousStyle.Render(previous),
		current,
	))
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("  no history")
	}

	rows := m.history
	if len(rows) > historyRows {
		rows = rows[:historyRows]
	}

	lines := make([]string, 0, len(rows))
	for _, e := range rows {
		result := resultStyle.Render("= " + e.Result)
		if e.IsError {
			result = errorStyle.Render("✗ " + e.Result)
		}
		lines = append(lines, fmt.Sprintf("  %s %s  %s", e.Operation, result, dimStyle.Render(e.Timestamp)))
	}
	return strings.Join(lines, "\n")
}
