// ABOUTME: Data models for relationship tracking entities
// ABOUTME: Defines Contact, Interaction, Reminder, Topic, Gift, Group and their enums
package models

import (
	"slices"
	"time"
)

// Entity is implemented by every cached model so controllers can match rows by id.
type Entity interface {
	EntityID() string
}

type Contact struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	RelationshipType string     `json:"relationship_type,omitempty"`
	Birthday         *time.Time `json:"birthday,omitempty"`
	ProfilePicture   string     `json:"profile_picture,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (c Contact) EntityID() string { return c.ID }

type InteractionType string

const (
	InteractionLifeEvent         InteractionType = "life_event"
	InteractionRelationshipEvent InteractionType = "relationship_event"
)

func (t InteractionType) Valid() bool {
	return t == InteractionLifeEvent || t == InteractionRelationshipEvent
}

// Interaction is a logged event. ContactIDs comes from the interaction_contacts
// join table, never from a column on the interaction row.
type Interaction struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"`
	Type       InteractionType `json:"type"`
	Notes      string          `json:"notes,omitempty"`
	Location   string          `json:"location,omitempty"`
	ContactIDs []string        `json:"contact_ids"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (i Interaction) EntityID() string { return i.ID }

// Involves reports whether contactID is associated with the interaction.
func (i Interaction) Involves(contactID string) bool {
	return slices.Contains(i.ContactIDs, contactID)
}

type ReminderType string

const (
	ReminderBirthday ReminderType = "birthday"
	ReminderCheckIn  ReminderType = "check_in"
	ReminderFollowUp ReminderType = "follow_up"
	ReminderCustom   ReminderType = "custom"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderBirthday, ReminderCheckIn, ReminderFollowUp, ReminderCustom:
		return true
	}
	return false
}

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
	ReminderSnoozed   ReminderStatus = "snoozed"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderPending, ReminderCompleted, ReminderSnoozed:
		return true
	}
	return false
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// SnoozeDuration is how far a snooze pushes a reminder out.
const SnoozeDuration = 24 * time.Hour

type Reminder struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Type          ReminderType   `json:"type"`
	Date          time.Time      `json:"date"`
	Time          string         `json:"time,omitempty"` // "HH:MM"
	ContactID     string         `json:"contact_id"`
	Status        ReminderStatus `json:"status"`
	Recurrence    Recurrence     `json:"recurrence"`
	SnoozedUntil  *time.Time     `json:"snoozed_until,omitempty"`
	InteractionID string         `json:"interaction_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (r Reminder) EntityID() string { return r.ID }

// SnoozeActive reports whether the stored snooze still holds at now.
// A snoozedUntil left behind on a pending or completed reminder is ignored.
func (r Reminder) SnoozeActive(now time.Time) bool {
	return r.Status == ReminderSnoozed && r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil)
}

// EffectiveStatus is the status to display at now. An expired or
// incomplete snooze reads as pending again.
func (r Reminder) EffectiveStatus(now time.Time) ReminderStatus {
	if r.Status == ReminderSnoozed && !r.SnoozeActive(now) {
		return ReminderPending
	}
	return r.Status
}

// Due combines Date with the optional HH:MM Time in the date's location.
// Without a time the reminder is due at the start of its day.
func (r Reminder) Due() time.Time {
	d := DateOnly(r.Date)
	if r.Time == "" {
		return d
	}
	clock, err := time.Parse("15:04", r.Time)
	if err != nil {
		return d
	}
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, d.Location())
}

type TopicCategory string

const (
	TopicNextTime            TopicCategory = "next_time"
	TopicConversationStarter TopicCategory = "conversation_starter"
	TopicEvergreen           TopicCategory = "evergreen"
	TopicAvoid               TopicCategory = "avoid"
)

// TopicCategories lists the canonical categories in display order.
var TopicCategories = []TopicCategory{TopicNextTime, TopicConversationStarter, TopicEvergreen, TopicAvoid}

func (c TopicCategory) Valid() bool {
	return slices.Contains(TopicCategories, c)
}

// Topic is a conversation topic owned by ContactID. ContactIDs holds every
// contact linked through contact_topics, which may include more than the owner.
type Topic struct {
	ID            string        `json:"id"`
	ContactID     string        `json:"contact_id"`
	Name          string        `json:"name"`
	Category      TopicCategory `json:"category"`
	LastDiscussed *time.Time    `json:"last_discussed,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	ContactIDs    []string      `json:"contact_ids"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (t Topic) EntityID() string { return t.ID }

type GiftStatus string

const (
	GiftIdea      GiftStatus = "idea"
	GiftPurchased GiftStatus = "purchased"
	GiftGiven     GiftStatus = "given"
)

func (s GiftStatus) Valid() bool {
	return s == GiftIdea || s == GiftPurchased || s == GiftGiven
}

// Next returns the following status in the idea -> purchased -> given
// progression. Given is terminal and returns itself.
func (s GiftStatus) Next() GiftStatus {
	switch s {
	case GiftIdea:
		return GiftPurchased
	case GiftPurchased:
		return GiftGiven
	}
	return GiftGiven
}

type GiftReaction string

const (
	ReactionLoved   GiftReaction = "loved"
	ReactionLiked   GiftReaction = "liked"
	ReactionNeutral GiftReaction = "neutral"
)

func (r GiftReaction) Valid() bool {
	return r == ReactionLoved || r == ReactionLiked || r == ReactionNeutral
}

type Gift struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Status      GiftStatus   `json:"status"`
	Reaction    GiftReaction `json:"reaction,omitempty"`
	ContactID   string       `json:"contact_id"`
	Occasion    string       `json:"occasion,omitempty"`
	GivenDate   *time.Time   `json:"given_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (g Gift) EntityID() string { return g.ID }

// Group is an ad-hoc set of contacts used for filtering. It is never persisted.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Contacts    []string  `json:"contacts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g Group) Has(contactID string) bool {
	return slices.Contains(g.Contacts, contactID)
}

// DateOnly truncates t to midnight in t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
