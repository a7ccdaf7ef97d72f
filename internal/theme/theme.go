package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the widget.
type Styles struct {
	Header    *lipgloss.Style
	Welcome   *lipgloss.Style
	User      *lipgloss.Style
	UserLabel *lipgloss.Style
	Bot       *lipgloss.Style
	BotLabel  *lipgloss.Style
	Citation  *lipgloss.Style
	Error     *lipgloss.Style
	Launcher  *lipgloss.Style
	Hint      *lipgloss.Style
	Spinner   *lipgloss.Style
	Prompt    *lipgloss.Style
}

var defaultStyles = Styles{
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("63")).Bold(true).Padding(0, 1),
	),
	Welcome: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	),
	User: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	),
	UserLabel: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	),
	Bot: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	BotLabel: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
	),
	Citation: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	),
	Launcher: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("63")).Bold(true).Padding(0, 2),
	),
	Hint: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Spinner: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	),
	Prompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
}

// Default returns the stock style set.
func Default() Styles {
	return defaultStyles
}

// WithBrandColors overrides the primary/accent colors from the brand
// document. Color values are lipgloss color strings (ANSI numbers or
// hex).
func (s Styles) WithBrandColors(primary, accent string) Styles {
	if primary != "" {
		s.Header = ptr(s.Header.Foreground(lipgloss.Color("255")).Background(lipgloss.Color(primary)))
		s.Launcher = ptr(s.Launcher.Background(lipgloss.Color(primary)))
		s.BotLabel = ptr(s.BotLabel.Foreground(lipgloss.Color(primary)))
		s.Spinner = ptr(s.Spinner.Foreground(lipgloss.Color(primary)))
	}
	if accent != "" {
		s.UserLabel = ptr(s.UserLabel.Foreground(lipgloss.Color(accent)))
	}
	return s
}

func ptr(s lipgloss.Style) *lipgloss.Style {
	return &s
}
