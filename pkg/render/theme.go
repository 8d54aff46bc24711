// Package render formats reconciliation progress, canvas snapshots and
// minimaps for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

// Autumn palette
var (
	ColorMuted   = lipgloss.Color("#5c5044")
	ColorText    = lipgloss.Color("#ab937b")
	ColorBright  = lipgloss.Color("#f5d7b9")
	ColorRed     = lipgloss.Color("#d95f5f")
	ColorOrange  = lipgloss.Color("#eb8755")
	ColorYellow  = lipgloss.Color("#f5b761")
	ColorGreen   = lipgloss.Color("#93b56b")
	ColorCyan    = lipgloss.Color("#61afaf")
	ColorBorder  = ColorMuted
	ColorSuccess = ColorGreen
	ColorError   = ColorRed
)

// Styles holds the lipgloss styles used for terminal output
type Styles struct {
	Applied  lipgloss.Style
	Thinking lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
	Finished lipgloss.Style
	Aborted  lipgloss.Style
	Minimap  lipgloss.Style
	Filled   lipgloss.Style
	Empty    lipgloss.Style
}

// DefaultStyles returns the default styles
func DefaultStyles() *Styles {
	return &Styles{
		Applied:  lipgloss.NewStyle().Foreground(ColorText),
		Thinking: lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
		Message:  lipgloss.NewStyle().Foreground(ColorBright),
		Error:    lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Finished: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Aborted:  lipgloss.NewStyle().Foreground(ColorYellow).Bold(true),
		Minimap: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Filled: lipgloss.NewStyle().Foreground(ColorOrange),
		Empty:  lipgloss.NewStyle().Foreground(ColorMuted),
	}
}
