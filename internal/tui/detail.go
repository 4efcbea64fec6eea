package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/feedboard/internal/domain"
	"github.com/muesli/reflow/wordwrap"
)

// Layout constants
const (
	leftPanelRatio = 0.4 // Left panel takes 40% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

// DetailModel shows every field of one ticket, with the description in a
// scrollable panel
type DetailModel struct {
	ticket   domain.Ticket
	viewport viewport.Model
	errorMsg string

	// View dimensions
	width  int
	height int
}

// NewDetailModel creates a new detail view model
func NewDetailModel(ticket domain.Ticket) DetailModel {
	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		ticket:   ticket,
		viewport: vp,
	}
	m.updateViewportContent()
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	leftWidth := m.leftWidth(m.width)
	rightWidth := m.width - leftWidth - 1
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - borderSize - 2 // -2 for padding
	m.viewport.Height = contentHeight - borderSize - 1 // -1 for the panel title

	m.updateViewportContent()
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		if m.ticket.PhotoURL == "" {
			m.errorMsg = "No photo attached"
			return m, nil
		}
		if err := openURL(m.ticket.PhotoURL); err != nil {
			m.errorMsg = fmt.Sprintf("Open failed: %v", err)
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth := m.leftWidth(width)
	rightWidth := width - leftWidth - 1 // 1 char gap

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := m.renderHeader(width)

	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderLeftPanel(leftWidth - borderSize - 2))

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Padding(0, 1).
		Render(m.renderRightPanel())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, m.renderFooter())
}

func (m DetailModel) leftWidth(width int) int {
	leftWidth := int(float64(width) * leftPanelRatio)
	if leftWidth < minLeftWidth {
		leftWidth = minLeftWidth
	}
	if leftWidth > maxLeftWidth {
		leftWidth = maxLeftWidth
	}
	return leftWidth
}

// renderHeader renders the top help bar
func (m DetailModel) renderHeader(width int) string {
	parts := []string{"[q]back", "[j/k]scroll", "[g/G]top/bottom"}
	if m.ticket.PhotoURL != "" {
		parts = append(parts, "[o]photo")
	}
	hints := dimStyle.Render(strings.Join(parts, " "))

	if m.errorMsg == "" {
		return hints
	}
	msg := ErrorStyle.Render(m.errorMsg)
	padding := width - lipgloss.Width(hints) - lipgloss.Width(msg) - 1
	if padding < 1 {
		padding = 1
	}
	return hints + strings.Repeat(" ", padding) + msg
}

// renderFooter shows the scroll position of the description panel
func (m DetailModel) renderFooter() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}
	return scrollIndicatorStyle.Render(fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100))
}

// renderLeftPanel lists the ticket's fields
func (m DetailModel) renderLeftPanel(width int) string {
	t := m.ticket

	title := fmt.Sprintf("Unit %s · %s", t.UnitID, t.IssueCategory)
	lines := []string{detailTitleStyle.Render(truncate(title, width)), ""}

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		lines = append(lines, detailLabelStyle.Render(label+": ")+detailValueStyle.Render(value))
	}

	lines = append(lines, detailLabelStyle.Render("Emergency: ")+emergencyStyle(t.EmergencyType).Render(t.EmergencyType))
	field("Status", string(t.Status))
	field("Received", formatTimestamp(t.ReceivedAt))
	if t.Status == domain.StatusInProgress {
		field("Vendor", t.Vendor)
		field("Assigned", formatTimestamp(t.AssignedAt))
	}
	lines = append(lines, "")
	field("Ticket", t.ID)
	field("Request", t.RequestID)
	field("Backend status", t.Request.Status)
	field("Tenant", t.TenantID)
	field("Landlord", t.LandlordID)
	if t.PhotoURL != "" {
		field("Photo", truncate(t.PhotoURL, width-7))
	}

	return strings.Join(lines, "\n")
}

// renderRightPanel renders the description viewport
func (m DetailModel) renderRightPanel() string {
	return detailTitleStyle.Render("Description") + "\n" + m.viewport.View()
}

// updateViewportContent wraps the description to the viewport width
func (m *DetailModel) updateViewportContent() {
	body := strings.TrimSpace(m.ticket.Description)
	if body == "" {
		body = dimStyle.Render("(no description)")
	}
	width := m.viewport.Width
	if width < 10 {
		width = 10
	}
	m.viewport.SetContent(wordwrap.String(body, width))
}

// formatTimestamp renders t with its age, or "" for the zero time
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format("Jan 2 15:04:05"), formatTimeAgo(t))
}

// formatTimeAgo formats a timestamp as relative time
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	default:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

// Message types for detail view
type closeDetailMsg struct{}
