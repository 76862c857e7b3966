// ABOUTME: Create inputs for each entity, excluding server-assigned id and timestamps
// ABOUTME: Each input carries validator tags checked before the gateway is called
package models

import "time"

type ContactInput struct {
	Name             string     `json:"name" validate:"nonblank"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty" validate:"omitempty,email"`
	RelationshipType string     `json:"relationship_type,omitempty"`
	Birthday         *time.Time `json:"birthday,omitempty"`
	ProfilePicture   string     `json:"profile_picture,omitempty" validate:"omitempty,uri"`
}

func (in ContactInput) Validate() error {
	return Validate("contact", in)
}

// InteractionInput creates an interaction together with its contact links.
type InteractionInput struct {
	Date       time.Time       `json:"date" validate:"required"`
	Type       InteractionType `json:"type" validate:"enum"`
	Notes      string          `json:"notes,omitempty"`
	Location   string          `json:"location,omitempty"`
	ContactIDs []string        `json:"contact_ids" validate:"dive,nonblank"`
}

func (in InteractionInput) Validate() error {
	return Validate("interaction", in)
}

type ReminderInput struct {
	Title         string         `json:"title" validate:"nonblank"`
	Description   string         `json:"description,omitempty"`
	Type          ReminderType   `json:"type" validate:"enum"`
	Date          time.Time      `json:"date" validate:"required"`
	Time          string         `json:"time,omitempty" validate:"omitempty,hhmm"`
	ContactID     string         `json:"contact_id" validate:"nonblank"`
	Status        ReminderStatus `json:"status,omitempty" validate:"omitempty,enum"`
	Recurrence    Recurrence     `json:"recurrence,omitempty" validate:"omitempty,enum"`
	InteractionID string         `json:"interaction_id,omitempty"`
}

func (in ReminderInput) Validate() error {
	if err := Validate("reminder", in); err != nil {
		return err
	}
	if in.Status == ReminderSnoozed {
		return &ValidationError{Entity: "reminder", Field: "status", Reason: "cannot start snoozed"}
	}
	return nil
}

// WithDefaults fills the status and recurrence a new reminder starts with.
func (in ReminderInput) WithDefaults() ReminderInput {
	if in.Status == "" {
		in.Status = ReminderPending
	}
	if in.Recurrence == "" {
		in.Recurrence = RecurrenceNone
	}
	return in
}

// TopicInput creates a topic owned by ContactID. ContactIDs lists the
// contacts linked through contact_topics; the owner is always included.
type TopicInput struct {
	ContactID     string        `json:"contact_id" validate:"nonblank"`
	Name          string        `json:"name" validate:"nonblank"`
	Category      TopicCategory `json:"category" validate:"enum"`
	LastDiscussed *time.Time    `json:"last_discussed,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	ContactIDs    []string      `json:"contact_ids,omitempty" validate:"dive,nonblank"`
}

func (in TopicInput) Validate() error {
	return Validate("topic", in)
}

type GiftInput struct {
	Name        string       `json:"name" validate:"nonblank"`
	Description string       `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status      GiftStatus   `json:"status,omitempty" validate:"omitempty,enum"`
	Reaction    GiftReaction `json:"reaction,omitempty" validate:"omitempty,enum"`
	ContactID   string       `json:"contact_id" validate:"nonblank"`
	Occasion    string       `json:"occasion,omitempty"`
	GivenDate   *time.Time   `json:"given_date,omitempty"`
}

func (in GiftInput) Validate() error {
	if err := Validate("gift", in); err != nil {
		return err
	}
	if in.Reaction != "" && in.Status != GiftGiven {
		return &ValidationError{Entity: "gift", Field: "reaction", Reason: "requires status given"}
	}
	return nil
}

// WithDefaults starts a gift as an idea unless told otherwise.
func (in GiftInput) WithDefaults() GiftInput {
	if in.Status == "" {
		in.Status = GiftIdea
	}
	return in
}
