// ABOUTME: Tests for the TUI model
// ABOUTME: Drives Update with key and load messages and checks the rendered views
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/repository"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupModel(t *testing.T) (Model, *cache.Store) {
	t.Helper()
	mem, err := db.NewMemoryGateway()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	store := cache.NewStore(repository.New(mem), cache.Options{})
	m := NewModel(context.Background(), store)
	m.now = func() time.Time { return testNow }
	return m, store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and runs any resulting command once, feeding its
// message back in, the way the bubbletea runtime would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	out := cmd()
	if batch, ok := out.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if inner := c(); inner != nil {
				next, _ = m.Update(inner)
				m = next.(Model)
			}
		}
		return m
	}
	if out != nil {
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

// press applies msg without running the command it returns.
func press(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func seed(t *testing.T, store *cache.Store) models.Contact {
	t.Helper()
	ctx := context.Background()
	bday := time.Date(1990, 6, 10, 0, 0, 0, 0, time.UTC)
	ada, err := store.Contacts.Add(ctx, models.ContactInput{Name: "Ada Lovelace", Email: "ada@example.com", Birthday: &bday})
	require.NoError(t, err)
	_, err = store.Contacts.Add(ctx, models.ContactInput{Name: "Charles Babbage"})
	require.NoError(t, err)
	_, err = store.Reminders.Add(ctx, models.ReminderInput{
		Title:     "Send notes",
		Type:      models.ReminderFollowUp,
		Date:      time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
		ContactID: ada.ID,
	})
	require.NoError(t, err)
	return ada
}

func TestInitialViewShowsLoading(t *testing.T) {
	m, _ := setupModel(t)
	view := m.View()
	assert.Contains(t, view, "RAPPORT")
	assert.Contains(t, view, "Loading contacts")
}

func TestLoadedContactsRenderTable(t *testing.T) {
	m, store := setupModel(t)
	seed(t, store)

	require.NoError(t, store.Contacts.Load(context.Background()))
	m = send(t, m, loadedMsg{tab: TabContacts})

	view := m.View()
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "Charles Babbage")
	assert.Contains(t, view, "Jun 10 *")
}

func TestFailedLoadOffersRetry(t *testing.T) {
	m, _ := setupModel(t)

	failing := cache.NewStore(repository.New(failingGateway{}), cache.Options{})
	m.store = failing
	m = send(t, m, key("r"))

	view := m.View()
	assert.Contains(t, view, "press r to retry")
	assert.Equal(t, cache.Failed, failing.Contacts.Status())
}

func TestSwitchingTabsLoadsIdleController(t *testing.T) {
	m, store := setupModel(t)
	seed(t, store)
	require.NoError(t, store.Contacts.Load(context.Background()))

	m = send(t, m, key("tab"))
	assert.Equal(t, TabReminders, m.tab)
	assert.Equal(t, cache.Ready, store.Reminders.Status())

	view := m.View()
	assert.Contains(t, view, "Send notes")
	assert.Contains(t, view, "! May 30, 2026")
}

func TestLateLoadForInactiveTabIsHarmless(t *testing.T) {
	m, store := setupModel(t)
	seed(t, store)
	require.NoError(t, store.Contacts.Load(context.Background()))

	m = send(t, m, loadedMsg{tab: TabInteractions, err: errors.New("boom")})
	assert.Equal(t, TabContacts, m.tab)
	assert.Contains(t, m.View(), "Ada Lovelace")
}

func TestSearchFiltersRows(t *testing.T) {
	m, store := setupModel(t)
	seed(t, store)
	require.NoError(t, store.Contacts.Load(context.Background()))

	m = press(m, key("/"))
	assert.True(t, m.searching)
	for _, r := range "babb" {
		m = press(m, key(string(r)))
	}
	m = press(m, key("enter"))
	assert.False(t, m.searching)

	view := m.View()
	assert.Contains(t, view, "Charles Babbage")
	assert.NotContains(t, view, "Ada Lovelace")

	m = press(m, key("/"))
	m = press(m, key("esc"))
	assert.Contains(t, m.View(), "Ada Lovelace")
}

func TestEnterOpensContactDetail(t *testing.T) {
	m, store := setupModel(t)
	ada := seed(t, store)
	require.NoError(t, store.Contacts.Load(context.Background()))

	m = send(t, m, key("enter"))
	assert.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, ada.ID, m.selectedID)

	view := m.View()
	assert.Contains(t, view, "ADA LOVELACE")
	assert.Contains(t, view, "in 9 days")
	assert.Contains(t, view, "Send notes")

	m = press(m, key("esc"))
	assert.Equal(t, ViewList, m.viewMode)
}

func TestCompleteReminderFromList(t *testing.T) {
	m, store := setupModel(t)
	seed(t, store)
	ctx := context.Background()
	require.NoError(t, store.Contacts.Load(ctx))
	require.NoError(t, store.Reminders.Load(ctx))
	m.tab = TabReminders

	m = send(t, m, key("c"))
	assert.Equal(t, "Completed: Send notes", m.flash)
	require.Len(t, store.Reminders.Items(), 1)
	assert.Equal(t, models.ReminderCompleted, store.Reminders.Items()[0].Status)
}

func TestControllerChangesWakeTheModel(t *testing.T) {
	m, store := setupModel(t)
	stop := m.watch()
	defer stop()

	seed(t, store)
	require.NoError(t, store.Contacts.Load(context.Background()))

	msg := m.waitForChange()()
	require.IsType(t, changedMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "the model keeps listening after a change")
	assert.Contains(t, next.(Model).View(), "Ada Lovelace")

	stop()
	_, err := store.Contacts.Add(context.Background(), models.ContactInput{Name: "Grace Hopper"})
	require.NoError(t, err)
	select {
	case <-m.changes:
		t.Fatal("no notification expected after stop")
	default:
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := setupModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTabNames(t *testing.T) {
	var names []string
	for tab := Tab(0); tab < tabCount; tab++ {
		names = append(names, tab.String())
	}
	assert.Equal(t, "Contacts Reminders Interactions", strings.Join(names, " "))
}

// failingGateway rejects every call.
type failingGateway struct{ db.Gateway }

func (failingGateway) Select(context.Context, string, db.Query) ([]db.Row, error) {
	return nil, errors.New("store unavailable")
}
