package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/feedboard/internal/domain"
	"github.com/h0rv/feedboard/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLandlordPicker AppScreen = iota
	ScreenBoard
	ScreenAssign
	ScreenDetail
)

// AppConfig carries the values the app starts from.
type AppConfig struct {
	// LandlordID, when set, skips the landlord picker.
	LandlordID string
	// Landlords are offered by the picker.
	Landlords []domain.Landlord
	// Vendors are offered by the assignment panel.
	Vendors []string
	Logger  *slog.Logger
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It owns the feed listener so stream events reach the board on every screen.
type AppModel struct {
	// Dependencies
	feed   Feed
	store  *store.Store
	logger *slog.Logger

	landlordFlag string
	landlords    []domain.Landlord
	vendors      []string

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model

	// Cached board to preserve state across screen transitions
	boardModel *BoardModel
}

// NewAppModel creates the root model.
func NewAppModel(feed Feed, s *store.Store, cfg AppConfig) AppModel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vendors := cfg.Vendors
	if len(vendors) == 0 {
		vendors = domain.DefaultVendors
	}

	board := NewBoardModel(s, feed)
	m := AppModel{
		feed:          feed,
		store:         s,
		logger:        logger,
		landlordFlag:  cfg.LandlordID,
		landlords:     cfg.Landlords,
		vendors:       vendors,
		currentScreen: ScreenBoard,
		boardModel:    &board,
	}
	m.currentModel = board

	if m.startLandlord() == nil && len(m.landlords) > 1 {
		m.currentScreen = ScreenLandlordPicker
		m.currentModel = NewLandlordPickerModel(m.landlords, false)
	}
	return m
}

// startLandlord returns the landlord to subscribe to at startup, or nil when
// the operator has to pick one or the board stays idle.
func (m AppModel) startLandlord() *domain.Landlord {
	if m.landlordFlag != "" {
		for _, l := range m.landlords {
			if l.ID == m.landlordFlag {
				return &l
			}
		}
		return &domain.Landlord{ID: m.landlordFlag}
	}
	if len(m.landlords) == 1 {
		return &m.landlords[0]
	}
	return nil
}

// Init starts the feed listener and the first screen.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.currentModel.Init()}
	if m.feed != nil {
		cmds = append(cmds, listen(m.feed.Events()))
	}
	if l := m.startLandlord(); l != nil {
		landlord := *l
		cmds = append(cmds, func() tea.Msg { return LandlordSelectedMsg{Landlord: landlord} })
	}
	if m.currentScreen != ScreenBoard {
		// Keep the board's spinner ticking behind the picker
		cmds = append(cmds, m.boardModel.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" && m.currentScreen != ScreenBoard {
			return m, tea.Quit
		}

	case QuitMsg:
		return m, tea.Quit

	case streamEventMsg:
		m.boardModel.handleStreamEvent(msg.event)
		m.syncBoard()
		return m, listen(m.feed.Events())

	case LandlordSelectedMsg:
		m.logger.Info("watching landlord", "landlord_id", msg.Landlord.ID)
		m.store.Reset()
		m.boardModel.setLandlord(msg.Landlord)
		m.boardModel.subscribe()
		return m.showBoard()

	case switchLandlordMsg:
		if len(m.landlords) < 2 {
			return m, nil
		}
		m.currentScreen = ScreenLandlordPicker
		picker := NewLandlordPickerModel(m.landlords, true)
		m.currentModel = picker
		return m, picker.Init()

	case closeLandlordPickerMsg:
		return m.showBoard()

	case openAssignMsg:
		m.currentScreen = ScreenAssign
		picker := NewVendorPickerModel(msg.ticket, m.vendors)
		m.currentModel = picker
		return m, picker.Init()

	case VendorChosenMsg:
		m.boardModel.assign(msg.Vendor)
		m.logger.Info("vendor assigned", "vendor", msg.Vendor)
		return m.showBoard()

	case AssignCancelledMsg:
		m.store.ClearSelection()
		return m.showBoard()

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.ticket)
		m.currentModel = detail
		return m, detail.Init()

	case closeDetailMsg:
		return m.showBoard()

	case spinner.TickMsg:
		// The board's spinner keeps ticking while another screen is shown
		if m.currentScreen != ScreenBoard {
			model, cmd := m.boardModel.Update(msg)
			if bm, ok := model.(BoardModel); ok {
				m.boardModel = &bm
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		// The cached board tracks the size even while hidden
		if m.currentScreen != ScreenBoard {
			model, _ := m.boardModel.Update(msg)
			if bm, ok := model.(BoardModel); ok {
				m.boardModel = &bm
			}
		}
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep boardModel in sync when on board screen
		if m.currentScreen == ScreenBoard {
			if bm, ok := m.currentModel.(BoardModel); ok {
				m.boardModel = &bm
			}
		}
		return m, cmd
	}

	return m, nil
}

// showBoard returns to the cached board.
func (m AppModel) showBoard() (tea.Model, tea.Cmd) {
	m.currentScreen = ScreenBoard
	m.currentModel = *m.boardModel
	// Request window size to ensure proper rendering
	return m, tea.WindowSize()
}

// syncBoard refreshes the visible board after the cached copy changed.
func (m *AppModel) syncBoard() {
	if m.currentScreen == ScreenBoard {
		m.currentModel = *m.boardModel
	}
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return "Starting...\n\nPress Ctrl+C to quit"
}
