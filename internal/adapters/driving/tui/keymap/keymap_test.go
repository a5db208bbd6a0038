package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		key     string
	}{
		{"quit", km.Quit, "ctrl+c"},
		{"send", km.Send, "enter"},
		{"cancel", km.Cancel, "esc"},
		{"scroll up", km.ScrollUp, "pgup"},
		{"scroll down", km.ScrollDown, "pgdown"},
		{"clear", km.Clear, "ctrl+l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Matches(tt.key, tt.binding))
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	for _, b := range []key.Binding{km.Quit, km.Send, km.Cancel, km.ScrollUp, km.ScrollDown, km.Clear} {
		for _, k := range b.Keys() {
			assert.Greater(t, len(k), 1, "binding %q would swallow typed text", k)
		}
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+d", km.Quit))
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Send))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.ShortHelp(), km.Send)
	assert.Contains(t, km.BusyHelp(), km.Cancel)
	assert.NotContains(t, km.BusyHelp(), km.Send)
}
