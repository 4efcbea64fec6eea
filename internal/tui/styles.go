package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// SuccessStyle is used for confirmations.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)

	// LiveBadgeStyle marks an open stream.
	LiveBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// OfflineBadgeStyle marks a failed or closed stream.
	OfflineBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")) // Red

	// IdleBadgeStyle marks a board with no landlord.
	IdleBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray
)

// emergencyStyles colors a ticket's emergency tag.
var emergencyStyles = map[string]lipgloss.Style{
	"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true), // Magenta
	"high":     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red
	"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),            // Orange
	"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("109")),            // Teal
}

// emergencyStyle returns the style for an emergency type, dim when unknown.
func emergencyStyle(emergencyType string) lipgloss.Style {
	if s, ok := emergencyStyles[emergencyType]; ok {
		return s
	}
	return dimStyle
}
