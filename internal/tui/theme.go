package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, trimmed to what the list uses.
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(colorOverlay0)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed)
	addOnStyle     = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	addOffStyle    = lipgloss.NewStyle().Foreground(colorSurface1)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorText)
	doneStyle      = lipgloss.NewStyle().Foreground(colorOverlay0).Strikethrough(true)
	controlStyle   = lipgloss.NewStyle().Foreground(colorLavender)
	inertStyle     = lipgloss.NewStyle().Foreground(colorSurface1)
	optionStyle    = lipgloss.NewStyle().Background(colorSurface0)
	highlightStyle = lipgloss.NewStyle().Background(colorYellow).Foreground(colorSurface0)
)
