package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) loadTopics() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return loadedMsg{tab: -1, err: store.Topics.Load(ctx)}
	}
}

func (m Model) selectedContact() (models.Contact, bool) {
	for _, c := range m.store.Contacts.Items() {
		if c.ID == m.selectedID {
			return c, true
		}
	}
	return models.Contact{}, false
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	contact, ok := m.selectedContact()
	if !ok {
		s.WriteString(titleStyle.Render("CONTACT"))
		s.WriteString("\n\nThis contact is no longer in the list.\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	s.WriteString(titleStyle.Render(strings.ToUpper(contact.Name)))
	s.WriteString("\n\n")
	s.WriteString(m.renderContactDetail(contact))
	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail(contact models.Contact) string {
	now := m.now()
	var s strings.Builder

	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Relationship", contact.RelationshipType))
	if contact.Birthday != nil {
		s.WriteString(m.renderField("Birthday", fmt.Sprintf("%s (in %d days)",
			contact.Birthday.Format("January 2"), views.DaysUntilBirthday(*contact.Birthday, now))))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("REMINDERS"))
	s.WriteString("\n")
	for _, r := range views.Reminders(m.store.Reminders.Items(), views.ReminderCriteria{
		ContactID: contact.ID, Status: models.ReminderPending, Now: now,
	}) {
		s.WriteString(fmt.Sprintf("  • %s: %s\n", views.RelativeDateLabel(r.Date, now), r.Title))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("TOPICS"))
	s.WriteString("\n")
	for _, g := range views.GroupTopics(views.Topics(m.store.Topics.Items(), views.TopicCriteria{ContactID: contact.ID})) {
		for _, t := range g.Topics {
			s.WriteString(fmt.Sprintf("  • [%s] %s\n", g.Category, t.Name))
		}
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("RECENT INTERACTIONS"))
	s.WriteString("\n")
	recent := views.Interactions(m.store.Interactions.Items(), views.InteractionCriteria{ContactID: contact.ID})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, i := range recent {
		s.WriteString(fmt.Sprintf("  • [%s] %s\n", i.Date.Format("2006-01-02"), i.Notes))
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.selectedID = ""
	}
	return m, nil
}
