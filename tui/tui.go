// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen browser over the cache controllers with per-tab load state
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Tab is one of the list screens.
type Tab int

const (
	TabContacts Tab = iota
	TabReminders
	TabInteractions
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabContacts:
		return "Contacts"
	case TabReminders:
		return "Reminders"
	case TabInteractions:
		return "Interactions"
	}
	return ""
}

// loadedMsg reports a finished controller load. The controller already
// holds the outcome; the message only triggers a redraw.
type loadedMsg struct {
	tab Tab
	err error
}

// changedMsg reports that a controller's state moved, whoever caused it.
type changedMsg struct{}

// actionMsg reports a finished write triggered from the list.
type actionMsg struct {
	text string
	err  error
}

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	store    *cache.Store
	viewMode ViewMode
	tab      Tab

	selectedRow int
	selectedID  string

	search    textinput.Model
	searching bool

	spinner spinner.Model
	flash   string

	changes chan struct{}

	width  int
	height int
	now    func() time.Time
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, store *cache.Store) Model {
	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "
	search.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return Model{
		ctx:      ctx,
		store:    store,
		viewMode: ViewList,
		tab:      TabContacts,
		search:   search,
		spinner:  sp,
		changes:  make(chan struct{}, 1),
		width:    80,
		height:   24,
		now:      time.Now,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, store *cache.Store) error {
	m := NewModel(ctx, store)
	stop := m.watch()
	defer stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	// Contacts back the names shown on every tab.
	return tea.Batch(m.spinner.Tick, m.load(TabContacts), m.waitForChange())
}

// watch subscribes to the controllers the screens read. Notifications
// coalesce into one pending redraw.
func (m Model) watch() (stop func()) {
	notify := func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}
	stops := []func(){
		m.store.Contacts.Subscribe(func(cache.Snapshot[models.Contact]) { notify() }),
		m.store.Reminders.Subscribe(func(cache.Snapshot[models.Reminder]) { notify() }),
		m.store.Interactions.Subscribe(func(cache.Snapshot[models.Interaction]) { notify() }),
		m.store.Topics.Subscribe(func(cache.Snapshot[models.Topic]) { notify() }),
	}
	return func() {
		for _, s := range stops {
			s()
		}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ctx, changes := m.ctx, m.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// load runs the tab's controller load off the update loop.
func (m Model) load(tab Tab) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		var err error
		switch tab {
		case TabContacts:
			err = store.Contacts.Load(ctx)
		case TabReminders:
			err = store.Reminders.Load(ctx)
		case TabInteractions:
			err = store.Interactions.Load(ctx)
		}
		return loadedMsg{tab: tab, err: err}
	}
}

func (m Model) tabStatus(tab Tab) (cache.Status, error) {
	switch tab {
	case TabReminders:
		return m.store.Reminders.Status(), m.store.Reminders.Err()
	case TabInteractions:
		return m.store.Interactions.Status(), m.store.Interactions.Err()
	}
	return m.store.Contacts.Status(), m.store.Contacts.Err()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		// A load for a tab the user already left is still in the
		// controller; nothing else to do.
		return m, nil
	case changedMsg:
		return m, m.waitForChange()
	case actionMsg:
		if msg.err != nil {
			m.flash = "Error: " + msg.err.Error()
		} else {
			m.flash = msg.text
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	}
	return m.renderListView()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}
	return m.handleListKeys(msg)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)
