package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/feedboard/internal/domain"
	"github.com/h0rv/feedboard/internal/store"
	"github.com/h0rv/feedboard/internal/stream"
	"github.com/pkg/browser"
)

// Layout constants
const (
	minColumnWidth = 30
	maxColumnWidth = 70
	headerLines    = 1  // Single header line with title + status
	pageJumpSize   = 10 // Number of tickets to jump with Ctrl+D/U
)

// Column IDs, in display order.
const (
	colNew        = string(domain.StatusNew)
	colInProgress = string(domain.StatusInProgress)
)

// waitingText fills the New column while nothing has arrived.
const waitingText = "Waiting for new requests..."

// Styles for the board view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	urgentCountStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

// Feed is the live request source the board listens to.
// stream.Subscriber implements it.
type Feed interface {
	Subscribe(landlordID string) uint64
	Events() <-chan stream.Event
	Close()
}

// openURL opens photo links in the browser.
var openURL = browser.OpenURL

// connState is the board's view of the stream, display only.
type connState int

const (
	connIdle connState = iota
	connConnecting
	connLive
	connOffline
)

// BoardModel represents the two-column triage board
type BoardModel struct {
	// Dependencies
	store *store.Store
	feed  Feed

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// Board state
	landlord       domain.Landlord
	subscription   uint64 // sequence of the feed channel events must carry
	conn           connState
	columns        []string            // Column IDs in order
	columnNames    map[string]string   // Column ID -> display name
	filteredCards  map[string][]string // Column ID -> ticket IDs
	selectedColumn int                 // Currently selected column
	selectedCard   map[string]int      // Column ID -> selected ticket index
	scrollOffset   map[string]int      // Column ID -> scroll offset

	// View state
	width            int
	height           int
	showHelp         bool
	filterMode       bool
	filterText       string
	filterUrgentOnly bool
	errorToast       string
	infoToast        string
}

// NewBoardModel creates a new board model
func NewBoardModel(s *store.Store, feed Feed) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	m := BoardModel{
		store:         s,
		feed:          feed,
		keymap:        DefaultKeyMap(),
		help:          NewHelpModel(DefaultKeyMap()),
		spinner:       sp,
		filterInput:   ti,
		filteredCards: make(map[string][]string),
		selectedCard:  make(map[string]int),
		scrollOffset:  make(map[string]int),
	}
	m.rebuildColumns()
	m.applyFilter()
	return m
}

// Init initializes the board
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// setLandlord points the board at a landlord. The caller resets the store and
// resubscribes the feed.
func (m *BoardModel) setLandlord(l domain.Landlord) {
	m.landlord = l
	m.errorToast = ""
	m.infoToast = ""
	if l.ID == "" {
		m.conn = connIdle
	} else {
		m.conn = connConnecting
	}
	for _, colID := range m.columns {
		m.selectedCard[colID] = 0
		m.scrollOffset[colID] = 0
	}
	m.applyFilter()
}

// subscribe (re)opens the feed for the current landlord. Events from any
// earlier channel, even for the same landlord, are ignored from now on.
func (m *BoardModel) subscribe() {
	if m.feed == nil {
		return
	}
	m.subscription = m.feed.Subscribe(m.landlord.ID)
}

// handleStreamEvent applies one subscriber event. Events for any landlord
// other than the current one, or from a replaced channel, are stale and
// ignored.
func (m *BoardModel) handleStreamEvent(ev stream.Event) {
	if ev == nil || m.landlord.ID == "" || ev.Landlord() != m.landlord.ID {
		return
	}
	if ev.Sequence() != m.subscription {
		return
	}

	switch ev := ev.(type) {
	case stream.Opened:
		m.conn = connLive
		m.errorToast = ""

	case stream.Received:
		if _, ok := m.store.Ingest(ev.Request, ev.ReceivedAt); ok {
			m.applyFilter()
		}

	case stream.Disconnected:
		if ev.Retrying {
			m.conn = connConnecting
		} else {
			m.conn = connOffline
		}
		if ev.Err != nil {
			m.errorToast = fmt.Sprintf("Disconnected: %v", ev.Err)
		}
	}
}

// assign commits the selected ticket to vendor.
func (m *BoardModel) assign(vendor string) {
	t, err := m.store.Assign(vendor)
	if err != nil {
		// Missing selection or vendor is a silent no-op.
		return
	}
	m.infoToast = fmt.Sprintf("Assigned unit %s to %s", t.UnitID, t.Vendor)
	m.errorToast = ""
	m.applyFilter()
}

// reconnect reopens the stream for the current landlord.
func (m *BoardModel) reconnect() {
	if m.landlord.ID == "" || m.feed == nil {
		return
	}
	m.subscribe()
	m.conn = connConnecting
	m.errorToast = ""
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			(&m).applyFilter()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	// Any other key dismisses toasts
	m.infoToast = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.filterMode = true
		m.filterInput.Focus()
	case "u":
		m.filterUrgentOnly = !m.filterUrgentOnly
		(&m).applyFilter()
	case "h", "left":
		if m.selectedColumn > 0 {
			m.selectedColumn--
		}
	case "l", "right":
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
		}
	case "j", "down":
		(&m).moveCardSelection(1)
	case "k", "up":
		(&m).moveCardSelection(-1)
	case "g":
		(&m).jumpToCard(0)
	case "G":
		(&m).jumpToCard(-1)
	case "ctrl+d":
		(&m).moveCardSelection(pageJumpSize)
	case "ctrl+u":
		(&m).moveCardSelection(-pageJumpSize)
	case "enter", "a":
		ticket, ok := m.getSelectedTicket()
		if !ok {
			return m, nil
		}
		if ticket.Status == domain.StatusNew && m.store.Select(ticket.ID) {
			return m, func() tea.Msg { return openAssignMsg{ticket: ticket} }
		}
		if msg.String() == "enter" {
			return m, func() tea.Msg { return openDetailMsg{ticket: ticket} }
		}
	case "v":
		if ticket, ok := m.getSelectedTicket(); ok {
			return m, func() tea.Msg { return openDetailMsg{ticket: ticket} }
		}
	case "o":
		ticket, ok := m.getSelectedTicket()
		if !ok {
			return m, nil
		}
		if ticket.PhotoURL == "" {
			m.errorToast = "No photo attached"
			return m, nil
		}
		if err := openURL(ticket.PhotoURL); err != nil {
			m.errorToast = fmt.Sprintf("Open failed: %v", err)
		}
	case "c":
		ticket, ok := m.getSelectedTicket()
		if !ok {
			return m, nil
		}
		if err := m.store.Complete(ticket.ID); errors.Is(err, store.ErrCompleteUnsupported) {
			m.errorToast = "Completing tickets is not supported yet"
		}
	case "r":
		(&m).reconnect()
	case "L":
		return m, func() tea.Msg { return switchLandlordMsg{} }
	}

	return m, nil
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	// Use sensible defaults if dimensions not yet set
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string

	// === HEADER (title + status) ===
	sections = append(sections, m.renderHeader(width))

	// === SECOND HEADER LINE (navigation hints + toast or position) ===
	sections = append(sections, m.renderSecondHeader(width))

	// === FILTER INPUT (if active) ===
	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	boardHeight := height - 2 // header + second header
	if m.filterMode {
		boardHeight--
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	// === MAIN CONTENT ===
	var mainContent string
	if m.showHelp {
		helpContent := m.help.View(width)
		helpLines := strings.Split(helpContent, "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	} else {
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderBadge renders the connection badge
func (m BoardModel) renderBadge() string {
	switch m.conn {
	case connLive:
		return LiveBadgeStyle.Render("● live")
	case connConnecting:
		return m.spinner.View() + dimStyle.Render("connecting")
	case connOffline:
		return OfflineBadgeStyle.Render("○ offline")
	default:
		return IdleBadgeStyle.Render("idle")
	}
}

// renderHeader renders a single header line with title on left and status on right
func (m BoardModel) renderHeader(width int) string {
	title := "feedboard"
	if m.landlord.ID != "" {
		title = fmt.Sprintf("feedboard - %s", m.landlord.Label())
	}

	metrics := m.store.Metrics()
	urgent := fmt.Sprintf("Urgent %d", metrics.Urgent)
	if metrics.Urgent > 0 {
		urgent = urgentCountStyle.Render(urgent)
	}

	statusParts := []string{
		m.renderBadge(),
		fmt.Sprintf("Total %d", metrics.Total),
		urgent,
		fmt.Sprintf("In Progress %d", metrics.InProgress),
	}

	// Filter indicators
	if m.filterUrgentOnly {
		statusParts = append(statusParts, "!urgent")
	}
	if m.filterText != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s", m.filterText))
	}
	statusParts = append(statusParts, "[?]help")

	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + status
}

// renderSecondHeader renders navigation hints and toast or position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:ticket enter:assign v:view o:photo r:reconnect"

	right := ""
	switch {
	case m.errorToast != "":
		right = ErrorStyle.Render(m.errorToast)
	case m.infoToast != "":
		right = SuccessStyle.Render(m.infoToast)
	case len(m.columns) > 0:
		colID := m.columns[m.selectedColumn]
		cards := m.filteredCards[colID]
		if len(cards) > 0 {
			right = fmt.Sprintf("%s %d/%d", m.columnNames[colID], m.selectedCard[colID]+1, len(cards))
		} else {
			right = m.columnNames[colID]
		}
	}

	padding := width - len(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderBoard renders both columns side by side within the given dimensions
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// lipgloss Border adds 2 lines (top + bottom) to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	colWidth := totalWidth / numCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// Content width inside column (2 border + 2 padding)
	innerWidth := colWidth - 4

	columnViews := make([]string, 0, numCols)
	for i, colID := range m.columns {
		columnViews = append(columnViews, m.renderColumn(colID, i == m.selectedColumn, colWidth, colContentHeight, innerWidth))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

// renderColumn renders a single column with proper sizing
// innerHeight is the content area, not including border
func (m BoardModel) renderColumn(colID string, selected bool, width, innerHeight, innerWidth int) string {
	cards := m.filteredCards[colID]
	name := m.columnNames[colID]

	headerText := fmt.Sprintf("%s (%d)", name, len(cards))

	scrollOffset := m.scrollOffset[colID]
	selectedIdx := m.selectedCard[colID]

	// Slots for tickets below the header line
	availableSlots := innerHeight - 1
	if availableSlots < 1 {
		availableSlots = 1
	}

	needUpIndicator := scrollOffset > 0
	if needUpIndicator {
		availableSlots--
	}

	endIdx := scrollOffset + availableSlots
	if endIdx > len(cards) {
		endIdx = len(cards)
	}

	needDownIndicator := false
	if endIdx < len(cards) {
		needDownIndicator = true
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(cards) {
			endIdx = len(cards)
		}
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		ticket, err := m.store.Get(cards[i])
		if err != nil {
			continue
		}

		cardText := m.formatCardText(ticket, innerWidth-2) // 2 for "> " or "  " prefix
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> ")+cardText)
		} else {
			lines = append(lines, cardStyle.Render("  ")+cardText)
		}
	}

	remaining := len(cards) - endIdx
	if needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(cards) == 0 {
		lines = append(lines, dimStyle.Render(m.emptyText(colID)))
	}

	content := strings.Join(lines, "\n")

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	// Height sets content height, border adds 2 more lines
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(content)
}

// emptyText is the placeholder for a column with no visible tickets
func (m BoardModel) emptyText(colID string) string {
	switch {
	case m.filterText != "" || m.filterUrgentOnly:
		return "(no matches)"
	case colID != colNew:
		return "(empty)"
	case m.landlord.ID == "":
		return "No landlord selected"
	default:
		return waitingText
	}
}

// formatCardText formats a ticket line: emergency tag, unit and category on
// the left, receipt age or vendor right-aligned.
func (m BoardModel) formatCardText(t domain.Ticket, maxWidth int) string {
	tag := strings.ToUpper(t.EmergencyType)
	if tag == "" {
		tag = "?"
	}
	tag = "[" + tag + "]"

	title := fmt.Sprintf("Unit %s · %s", t.UnitID, t.IssueCategory)

	suffix := formatTimeAgo(t.ReceivedAt)
	if t.Status == domain.StatusInProgress {
		suffix = t.Vendor
	}

	availableForTitle := maxWidth - len(tag) - 1 - len(suffix) - 1
	if availableForTitle < 5 {
		availableForTitle = 5
		suffix = ""
	}
	title = truncate(title, availableForTitle)

	padding := maxWidth - len(tag) - 1 - lipgloss.Width(title) - len(suffix)
	if padding < 1 {
		padding = 1
	}

	style := cardStyle
	if t.IsUrgent() {
		style = style.Bold(true)
	}

	return emergencyStyle(t.EmergencyType).Render(tag) + " " +
		style.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
}

// truncate shortens s to at most n display cells, marking the cut with "…"
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// rebuildColumns sets up the fixed New and In Progress columns
func (m *BoardModel) rebuildColumns() {
	m.columns = []string{colNew, colInProgress}
	m.columnNames = map[string]string{
		colNew:        "New",
		colInProgress: "In Progress",
	}

	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
	}
}

// applyFilter filters tickets into columns, keeping each column's cursor on
// the same ticket when it is still visible
func (m *BoardModel) applyFilter() {
	prev := make(map[string]string, len(m.columns))
	for _, colID := range m.columns {
		cards := m.filteredCards[colID]
		if idx := m.selectedCard[colID]; idx < len(cards) {
			prev[colID] = cards[idx]
		}
	}

	sources := map[string][]domain.Ticket{
		colNew:        m.store.NewTickets(),
		colInProgress: m.store.InProgressTickets(),
	}

	m.filteredCards = make(map[string][]string, len(m.columns))
	for _, colID := range m.columns {
		filtered := []string{}
		for _, t := range sources[colID] {
			if m.filterUrgentOnly && !t.IsUrgent() {
				continue
			}
			if m.filterText != "" && !matchesFilter(t, m.filterText) {
				continue
			}
			filtered = append(filtered, t.ID)
		}
		m.filteredCards[colID] = filtered
	}

	for _, colID := range m.columns {
		cards := m.filteredCards[colID]
		idx := m.selectedCard[colID]
		if id, ok := prev[colID]; ok {
			for i, cardID := range cards {
				if cardID == id {
					idx = i
					break
				}
			}
		}
		if idx >= len(cards) {
			idx = len(cards) - 1
		}
		if idx < 0 {
			idx = 0
		}
		m.selectedCard[colID] = idx
		m.adjustScroll(colID)
	}
}

// matchesFilter reports whether any visible field of t contains text
func matchesFilter(t domain.Ticket, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range []string{t.Description, t.IssueCategory, t.EmergencyType, t.UnitID.String(), t.Vendor} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// moveCardSelection moves the ticket selection up or down by delta
func (m *BoardModel) moveCardSelection(delta int) {
	if len(m.columns) == 0 {
		return
	}

	colID := m.columns[m.selectedColumn]
	cards := m.filteredCards[colID]
	if len(cards) == 0 {
		return
	}

	newIdx := m.selectedCard[colID] + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(cards) {
		newIdx = len(cards) - 1
	}

	m.selectedCard[colID] = newIdx
	m.adjustScroll(colID)
}

// jumpToCard jumps to a specific ticket index. Use -1 to jump to the last.
func (m *BoardModel) jumpToCard(idx int) {
	if len(m.columns) == 0 {
		return
	}

	colID := m.columns[m.selectedColumn]
	cards := m.filteredCards[colID]
	if len(cards) == 0 {
		return
	}

	if idx < 0 || idx >= len(cards) {
		idx = len(cards) - 1
	}

	m.selectedCard[colID] = idx
	m.adjustScroll(colID)
}

// adjustScroll ensures the selected ticket is visible
func (m *BoardModel) adjustScroll(colID string) {
	selectedIdx := m.selectedCard[colID]
	scrollOffset := m.scrollOffset[colID]

	height := m.height
	if height == 0 {
		height = 24
	}
	contentHeight := height - headerLines - 1 - 2 // second header + column borders
	if m.filterMode {
		contentHeight--
	}
	visibleCards := contentHeight - 3 // column header + potential scroll indicators
	if visibleCards < 3 {
		visibleCards = 3
	}

	if selectedIdx < scrollOffset {
		m.scrollOffset[colID] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visibleCards {
		m.scrollOffset[colID] = selectedIdx - visibleCards + 1
	}
}

// getSelectedTicket returns the ticket under the cursor
func (m BoardModel) getSelectedTicket() (domain.Ticket, bool) {
	if len(m.columns) == 0 {
		return domain.Ticket{}, false
	}

	colID := m.columns[m.selectedColumn]
	cards := m.filteredCards[colID]
	if len(cards) == 0 {
		return domain.Ticket{}, false
	}

	idx := m.selectedCard[colID]
	if idx >= len(cards) {
		idx = 0
	}

	t, err := m.store.Get(cards[idx])
	if err != nil {
		return domain.Ticket{}, false
	}
	return t, true
}

// listen waits for the next feed event. The receiver re-arms it after each
// event.
func listen(events <-chan stream.Event) tea.Cmd {
	return func() tea.Msg {
		return streamEventMsg{event: <-events}
	}
}

// Message types
type (
	streamEventMsg    struct{ event stream.Event }
	openAssignMsg     struct{ ticket domain.Ticket }
	openDetailMsg     struct{ ticket domain.Ticket }
	switchLandlordMsg struct{}
)
