package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/feedboard/internal/domain"
)

// vendorItem wraps a vendor label for use in bubbles/list.
type vendorItem string

func (i vendorItem) FilterValue() string {
	return string(i)
}

// vendorDelegate is a custom item delegate for vendor items.
type vendorDelegate struct{}

func (d vendorDelegate) Height() int                             { return 1 }
func (d vendorDelegate) Spacing() int                            { return 0 }
func (d vendorDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d vendorDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(vendorItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, string(i))
	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
	}
}

// VendorPickerModel is the assignment panel: it binds one vendor label to the
// selected ticket. The first vendor is highlighted on open.
type VendorPickerModel struct {
	list   list.Model
	ticket domain.Ticket
}

// NewVendorPickerModel creates a picker for assigning ticket.
func NewVendorPickerModel(ticket domain.Ticket, vendors []string) VendorPickerModel {
	items := make([]list.Item, len(vendors))
	for i, v := range vendors {
		items[i] = vendorItem(v)
	}

	l := list.New(items, vendorDelegate{}, 80, 20)
	l.Title = fmt.Sprintf("Assign vendor: [%s] Unit %s · %s", ticket.EmergencyType, ticket.UnitID, ticket.IssueCategory)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	l.Styles.HelpStyle = HelpStyle

	return VendorPickerModel{
		list:   l,
		ticket: ticket,
	}
}

// Init initializes the model.
func (m VendorPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m VendorPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.SettingFilter() {
			break
		}
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg {
				return AssignCancelledMsg{}
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(vendorItem); ok {
				return m, func() tea.Msg {
					return VendorChosenMsg{Vendor: string(item)}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m VendorPickerModel) View() string {
	return m.list.View() + "\n" + dimStyle.Render(assignmentNote)
}
