// ABOUTME: Calendar arithmetic for birthday proximity, reminder labels, and overdue checks
// ABOUTME: Works on civil dates so time zones never shift a day across midnight
package views

import (
	"time"

	"github.com/harperreed/rapport/models"
)

// BirthdayWindow is how many days ahead a birthday counts as coming up.
const BirthdayWindow = 30

// dayNumber is the civil date of t, read in t's own location, as days since the epoch.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// calendarDays counts calendar days from from to to; negative when to is earlier.
func calendarDays(from, to time.Time) int {
	return int(dayNumber(to) - dayNumber(from))
}

// DaysUntilBirthday returns the days from now until the next occurrence of
// birthday's month and day, counting today as 0. The year of birthday is
// ignored. A Feb 29 birthday falls on Mar 1 in common years.
func DaysUntilBirthday(birthday, now time.Time) int {
	_, month, day := birthday.Date()
	year := now.Year()
	today := time.Date(year, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	next := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
	}
	return calendarDays(today, next)
}

// BirthdaySoon reports whether the contact's birthday is within BirthdayWindow days.
func BirthdaySoon(c models.Contact, now time.Time) bool {
	if c.Birthday == nil {
		return false
	}
	return DaysUntilBirthday(*c.Birthday, now) <= BirthdayWindow
}

// RelativeDateLabel renders a reminder date relative to now: Today,
// Tomorrow, the weekday within the coming week, otherwise the date.
// Past dates always show the full date.
func RelativeDateLabel(date, now time.Time) string {
	days := calendarDays(now, date)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days < 0:
		return date.Format("Jan 2, 2006")
	case days < 7:
		return date.Weekday().String()
	}
	return date.Format("Jan 2")
}

// IsOverdue reports whether a reminder that still needs attention is due
// before now. Completed reminders and active snoozes are never overdue.
func IsOverdue(r models.Reminder, now time.Time) bool {
	if r.EffectiveStatus(now) != models.ReminderPending {
		return false
	}
	due := r.Due()
	y, m, d := due.Date()
	local := time.Date(y, m, d, due.Hour(), due.Minute(), 0, 0, now.Location())
	if r.Time == "" {
		// Without a time the whole day counts, so only earlier days are late.
		return calendarDays(local, now) > 0
	}
	return local.Before(now)
}
