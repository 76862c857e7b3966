// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes contacts, reminders, birthdays, and the gift pipeline from cached lists
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/rapport/models"
)

// StaleAfterDays is how long without an interaction before a contact needs attention.
const StaleAfterDays = 30

type DashboardInput struct {
	Contacts     []models.Contact
	Interactions []models.Interaction
	Reminders    []models.Reminder
	Gifts        []models.Gift
	Now          time.Time
}

type DashboardStats struct {
	TotalContacts     int
	TotalInteractions int

	// Reminders
	DueToday int
	Overdue  []models.Reminder

	UpcomingBirthdays []UpcomingBirthday
	GiftsByStatus     map[models.GiftStatus]int

	// Needs attention
	StaleContacts []StaleContact
}

type StaleContact struct {
	Name      string
	DaysSince int // -1 when there has never been an interaction
}

func GenerateDashboardStats(in DashboardInput) *DashboardStats {
	now := in.Now
	stats := &DashboardStats{
		TotalContacts:     len(in.Contacts),
		TotalInteractions: len(in.Interactions),
		GiftsByStatus:     make(map[models.GiftStatus]int),
	}

	for _, r := range in.Reminders {
		if r.EffectiveStatus(now) == models.ReminderPending && calendarDays(r.Date, now) == 0 {
			stats.DueToday++
		}
	}
	stats.Overdue = Reminders(in.Reminders, ReminderCriteria{OverdueOnly: true, Now: now})
	stats.UpcomingBirthdays = UpcomingBirthdays(in.Contacts, now, BirthdayWindow)

	for _, g := range in.Gifts {
		stats.GiftsByStatus[g.Status]++
	}

	last := make(map[string]time.Time)
	for _, i := range in.Interactions {
		for _, id := range i.ContactIDs {
			if i.Date.After(last[id]) {
				last[id] = i.Date
			}
		}
	}
	for _, c := range Contacts(in.Contacts, ContactCriteria{}) {
		seen, ok := last[c.ID]
		if !ok {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name, DaysSince: -1})
			continue
		}
		if days := calendarDays(seen, now); days > StaleAfterDays {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name, DaysSince: days})
		}
	}

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  RAPPORT DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💬 %d interactions  🔔 %d due today\n\n",
		stats.TotalContacts, stats.TotalInteractions, stats.DueToday))

	if len(stats.UpcomingBirthdays) > 0 {
		out.WriteString("UPCOMING BIRTHDAYS\n")
		for _, b := range stats.UpcomingBirthdays {
			out.WriteString(fmt.Sprintf("  🎂 %-20s %s\n", b.Contact.Name, daysLabel(b.Days)))
		}
		out.WriteString("\n")
	}

	out.WriteString("GIFTS\n")
	renderGiftPipeline(&out, stats.GiftsByStatus)
	out.WriteString("\n")

	if len(stats.Overdue) > 0 || len(stats.StaleContacts) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.Overdue) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d reminders overdue\n", len(stats.Overdue)))
		}
		if len(stats.StaleContacts) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no interaction in %d+ days\n", len(stats.StaleContacts), StaleAfterDays))
		}
	}

	return out.String()
}

func daysLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", days)
}

func renderGiftPipeline(out *strings.Builder, counts map[models.GiftStatus]int) {
	stages := []models.GiftStatus{models.GiftIdea, models.GiftPurchased, models.GiftGiven}

	maxCount := 1
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	for _, stage := range stages {
		n := counts[stage]
		barLength := (n * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-10s %s  %2d\n", stage, bar, n))
	}
}
