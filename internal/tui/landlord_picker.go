package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/feedboard/internal/domain"
)

// landlordItem represents a landlord in the list.
type landlordItem struct {
	landlord domain.Landlord
}

func (i landlordItem) FilterValue() string { return i.landlord.Label() + " " + i.landlord.ID }

// landlordItemDelegate handles rendering of landlord items.
type landlordItemDelegate struct{}

func (d landlordItemDelegate) Height() int                             { return 1 }
func (d landlordItemDelegate) Spacing() int                            { return 0 }
func (d landlordItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d landlordItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(landlordItem)
	if !ok {
		return
	}

	// Format: name (id)
	str := i.landlord.ID
	if i.landlord.Name != "" {
		str = fmt.Sprintf("%s (%s)", i.landlord.Name, i.landlord.ID)
	}

	fn := NormalItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + s[0])
		}
	}

	fmt.Fprint(w, fn(str))
}

// LandlordPickerModel lets the operator choose which landlord's feed to watch.
type LandlordPickerModel struct {
	list list.Model
	// cancelable pickers return to the board instead of quitting
	cancelable bool
}

// NewLandlordPickerModel creates a new landlord picker.
func NewLandlordPickerModel(landlords []domain.Landlord, cancelable bool) LandlordPickerModel {
	items := make([]list.Item, len(landlords))
	for i, l := range landlords {
		items[i] = landlordItem{landlord: l}
	}

	// Start with a reasonable default - will be resized by WindowSizeMsg
	l := list.New(items, landlordItemDelegate{}, 80, 20)
	l.Title = "Select Landlord"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	l.Styles.HelpStyle = HelpStyle

	return LandlordPickerModel{
		list:       l,
		cancelable: cancelable,
	}
}

// Init initializes the model.
func (m LandlordPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m LandlordPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(landlordItem); ok {
				return m, func() tea.Msg {
					return LandlordSelectedMsg{Landlord: item.landlord}
				}
			}
		case "q", "esc":
			if !m.list.SettingFilter() {
				if m.cancelable {
					return m, func() tea.Msg { return closeLandlordPickerMsg{} }
				}
				return m, func() tea.Msg { return QuitMsg{} }
			}
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m LandlordPickerModel) View() string {
	return m.list.View()
}

type closeLandlordPickerMsg struct{}
