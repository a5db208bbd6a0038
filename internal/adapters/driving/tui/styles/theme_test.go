package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted,
		theme.Warning, theme.Error, theme.Border, theme.Bar,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Warning, theme.Error} {
		assert.False(t, seen[c], "duplicate accent: %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.Equal(t, DefaultTheme(), styles.Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      styles.Title,
		"Normal":     styles.Normal,
		"Muted":      styles.Muted,
		"Warning":    styles.Warning,
		"Error":      styles.Error,
		"InputField": styles.InputField,
		"StatusBar":  styles.StatusBar,
		"Help":       styles.Help,
		"Question":   styles.Question,
		"Answer":     styles.Answer,
		"Source":     styles.Source,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
		assert.NotEmpty(t, style.Render("text"), name)
	}
}
