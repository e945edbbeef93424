// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the import monitor.
type KeyMap struct {
	// Quit exits the monitor. The running import keeps going in the
	// background service; quitting only stops watching it.
	Quit key.Binding

	// ToggleStats switches between the compact and full stats view.
	ToggleStats key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		ToggleStats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleStats, k.Quit}
}

// Matches reports whether the pressed key matches the binding.
func Matches(pressed string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == pressed {
			return true
		}
	}
	return false
}
