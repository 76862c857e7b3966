package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("RAPPORT"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderBody())
	s.WriteString("\n\n")

	if m.flash != "" {
		s.WriteString(flashStyle.Render(m.flash))
		s.WriteString("\n")
	}
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for t := Tab(0); t < tabCount; t++ {
		if t == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(t.String()))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderBody shows the tab's load state, or its table once Ready.
func (m Model) renderBody() string {
	status, err := m.tabStatus(m.tab)
	switch status {
	case cache.Idle, cache.Loading:
		return fmt.Sprintf("%s Loading %s...", m.spinner.View(), strings.ToLower(m.tab.String()))
	case cache.Failed:
		return errorStyle.Render(fmt.Sprintf("Error: %v", err)) + "\n" + helpStyle.Render("press r to retry")
	}

	columns, rows, _ := m.tableData()
	if len(rows) == 0 {
		return "Nothing here yet"
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

// tableData builds the active tab's columns, rows, and the id behind each row.
func (m Model) tableData() ([]table.Column, []table.Row, []string) {
	query := m.search.Value()
	now := m.now()
	names := make(map[string]string)
	for _, c := range m.store.Contacts.Items() {
		names[c.ID] = c.Name
	}

	var rows []table.Row
	var ids []string

	switch m.tab {
	case TabReminders:
		columns := []table.Column{
			{Title: "Due", Width: 14},
			{Title: "Status", Width: 10},
			{Title: "Contact", Width: 20},
			{Title: "Title", Width: 34},
		}
		for _, r := range views.Reminders(m.store.Reminders.Items(), views.ReminderCriteria{Query: query, Now: now}) {
			due := views.RelativeDateLabel(r.Date, now)
			if views.IsOverdue(r, now) {
				due = "! " + due
			}
			rows = append(rows, table.Row{due, string(r.EffectiveStatus(now)), names[r.ContactID], r.Title})
			ids = append(ids, r.ID)
		}
		return columns, rows, ids

	case TabInteractions:
		columns := []table.Column{
			{Title: "Date", Width: 12},
			{Title: "Type", Width: 18},
			{Title: "With", Width: 24},
			{Title: "Notes", Width: 30},
		}
		for _, i := range views.Interactions(m.store.Interactions.Items(), views.InteractionCriteria{Query: query}) {
			with := make([]string, 0, len(i.ContactIDs))
			for _, id := range i.ContactIDs {
				with = append(with, names[id])
			}
			rows = append(rows, table.Row{i.Date.Format("2006-01-02"), string(i.Type), strings.Join(with, ", "), i.Notes})
			ids = append(ids, i.ID)
		}
		return columns, rows, ids
	}

	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Email", Width: 28},
		{Title: "Relationship", Width: 14},
		{Title: "Birthday", Width: 10},
	}
	for _, c := range views.Contacts(m.store.Contacts.Items(), views.ContactCriteria{Query: query}) {
		bday := ""
		if c.Birthday != nil {
			bday = c.Birthday.Format("Jan 2")
			if views.BirthdaySoon(c, now) {
				bday += " *"
			}
		}
		rows = append(rows, table.Row{c.Name, c.Email, c.RelationshipType, bday})
		ids = append(ids, c.ID)
	}
	return columns, rows, ids
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"/: Search",
		"r: Reload",
	}
	switch m.tab {
	case TabContacts:
		help = append(help, "Enter: View details")
	case TabReminders:
		help = append(help, "c: Complete", "s: Snooze")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if _, rows, _ := m.tableData(); m.selectedRow < len(rows)-1 {
			m.selectedRow++
		}
	case "tab", "shift+tab":
		if msg.String() == "tab" {
			m.tab = (m.tab + 1) % tabCount
		} else {
			m.tab = (m.tab + tabCount - 1) % tabCount
		}
		m.selectedRow = 0
		m.flash = ""
		if status, _ := m.tabStatus(m.tab); status == cache.Idle {
			return m, m.load(m.tab)
		}
	case "r":
		m.flash = ""
		return m, m.load(m.tab)
	case "/":
		m.searching = true
		m.selectedRow = 0
		return m, m.search.Focus()
	case "enter":
		if m.tab == TabContacts {
			if id := m.getSelectedID(); id != "" {
				m.viewMode = ViewDetail
				m.selectedID = id
				return m, tea.Batch(m.load(TabInteractions), m.load(TabReminders), m.loadTopics())
			}
		}
	case "c":
		if m.tab == TabReminders {
			return m, m.reminderAction("Completed", m.store.CompleteReminder)
		}
	case "s":
		if m.tab == TabReminders {
			return m, m.reminderAction("Snoozed", m.store.SnoozeReminder)
		}
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedRow = 0
	return m, cmd
}

func (m Model) getSelectedID() string {
	_, _, ids := m.tableData()
	if m.selectedRow < len(ids) {
		return ids[m.selectedRow]
	}
	return ""
}

func (m Model) reminderAction(verb string, fn func(ctx context.Context, id string) (models.Reminder, error)) tea.Cmd {
	id := m.getSelectedID()
	if id == "" {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		r, err := fn(ctx, id)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("%s: %s", verb, r.Title)}
	}
}
