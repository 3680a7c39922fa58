package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"calculator-frontend/internal/frontend"
)

type keyMap struct {
	Calculate    key.Binding
	Percentage   key.Binding
	Sqrt         key.Binding
	Delete       key.Binding
	Clear        key.Binding
	ClearHistory key.Binding
	Export       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Calculate:    key.NewBinding(key.WithKeys("enter", "="), key.WithHelp("enter/=", "calculate")),
		Percentage:   key.NewBinding(key.WithKeys("%"), key.WithHelp("%", "percent")),
		Sqrt:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "square root")),
		Delete:       key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Clear:        key.NewBinding(key.WithKeys("esc", "c", "C"), key.WithHelp("esc/c", "clear")),
		ClearHistory: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear history")),
		Export:       key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export history")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Calculate, k.Clear, k.Sqrt, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Calculate, k.Percentage, k.Sqrt},
		{k.Delete, k.Clear},
		{k.ClearHistory, k.Export},
		{k.Help, k.Quit},
	}
}

// controllerKey maps a terminal key press to the controller's key name.
func controllerKey(msg tea.KeyMsg) (string, bool) {
	var name string
	switch msg.Type {
	case tea.KeyEnter:
		name = frontend.KeyEnter
	case tea.KeyEsc:
		name = frontend.KeyEscape
	case tea.KeyBackspace:
		name = frontend.KeyBackspace
	default:
		name = msg.String()
	}
	return name, frontend.IsCalculatorKey(name)
}
