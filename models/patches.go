// ABOUTME: Tagged partial-update types enumerating exactly the patchable fields
// ABOUTME: Nil pointers leave a field unchanged; Clear flags null out optional values
package models

import "time"

// ContactPatch updates a contact. Setting an optional string to "" clears it.
type ContactPatch struct {
	Name             *string
	Phone            *string
	Email            *string
	RelationshipType *string
	Birthday         *time.Time
	ClearBirthday    bool
	ProfilePicture   *string
}

func (p ContactPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.RelationshipType == nil &&
		p.Birthday == nil && !p.ClearBirthday && p.ProfilePicture == nil
}

func (p ContactPatch) Validate() error {
	if p.Name != nil {
		if err := checkVar("contact", "name", *p.Name, "nonblank"); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := checkVar("contact", "email", *p.Email, "omitempty,email"); err != nil {
			return err
		}
	}
	if p.ProfilePicture != nil {
		if err := checkVar("contact", "profile_picture", *p.ProfilePicture, "omitempty,uri"); err != nil {
			return err
		}
	}
	return nil
}

// InteractionPatch updates the interaction row only; contact links are
// replaced separately through the relation write.
type InteractionPatch struct {
	Date     *time.Time
	Type     *InteractionType
	Notes    *string
	Location *string
}

func (p InteractionPatch) Empty() bool {
	return p.Date == nil && p.Type == nil && p.Notes == nil && p.Location == nil
}

func (p InteractionPatch) Validate() error {
	if p.Date != nil && p.Date.IsZero() {
		return &ValidationError{Entity: "interaction", Field: "date", Reason: "is required"}
	}
	if p.Type != nil && !p.Type.Valid() {
		return &ValidationError{Entity: "interaction", Field: "type", Reason: "has an unknown value"}
	}
	return nil
}

// ReminderPatch updates a reminder. Any status may move to any other status;
// completed is terminal only by convention.
type ReminderPatch struct {
	Title             *string
	Description       *string
	Type              *ReminderType
	Date              *time.Time
	Time              *string
	ContactID         *string
	Status            *ReminderStatus
	Recurrence        *Recurrence
	SnoozedUntil      *time.Time
	ClearSnoozedUntil bool
	InteractionID     *string
}

func (p ReminderPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil && p.Date == nil && p.Time == nil &&
		p.ContactID == nil && p.Status == nil && p.Recurrence == nil && p.SnoozedUntil == nil &&
		!p.ClearSnoozedUntil && p.InteractionID == nil
}

func (p ReminderPatch) Validate() error {
	if p.Title != nil {
		if err := checkVar("reminder", "title", *p.Title, "nonblank"); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return &ValidationError{Entity: "reminder", Field: "type", Reason: "has an unknown value"}
	}
	if p.Date != nil && p.Date.IsZero() {
		return &ValidationError{Entity: "reminder", Field: "date", Reason: "is required"}
	}
	if p.Time != nil {
		if err := checkVar("reminder", "time", *p.Time, "omitempty,hhmm"); err != nil {
			return err
		}
	}
	if p.ContactID != nil {
		if err := checkVar("reminder", "contact_id", *p.ContactID, "nonblank"); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Entity: "reminder", Field: "status", Reason: "has an unknown value"}
	}
	if p.Recurrence != nil && !p.Recurrence.Valid() {
		return &ValidationError{Entity: "reminder", Field: "recurrence", Reason: "has an unknown value"}
	}
	return nil
}

// CompletePatch marks a reminder completed. A stored snoozedUntil is left
// in place; EffectiveStatus ignores it once the status is not snoozed.
func CompletePatch() ReminderPatch {
	s := ReminderCompleted
	return ReminderPatch{Status: &s}
}

// SnoozePatch snoozes a reminder until now plus SnoozeDuration.
func SnoozePatch(now time.Time) ReminderPatch {
	s := ReminderSnoozed
	until := now.Add(SnoozeDuration)
	return ReminderPatch{Status: &s, SnoozedUntil: &until}
}

// ReactivatePatch returns a reminder to pending and drops the snooze.
func ReactivatePatch() ReminderPatch {
	s := ReminderPending
	return ReminderPatch{Status: &s, ClearSnoozedUntil: true}
}

type TopicPatch struct {
	ContactID          *string
	Name               *string
	Category           *TopicCategory
	LastDiscussed      *time.Time
	ClearLastDiscussed bool
	Notes              *string
}

func (p TopicPatch) Empty() bool {
	return p.ContactID == nil && p.Name == nil && p.Category == nil && p.LastDiscussed == nil &&
		!p.ClearLastDiscussed && p.Notes == nil
}

func (p TopicPatch) Validate() error {
	if p.ContactID != nil {
		if err := checkVar("topic", "contact_id", *p.ContactID, "nonblank"); err != nil {
			return err
		}
	}
	if p.Name != nil {
		if err := checkVar("topic", "name", *p.Name, "nonblank"); err != nil {
			return err
		}
	}
	if p.Category != nil && !p.Category.Valid() {
		return &ValidationError{Entity: "topic", Field: "category", Reason: "has an unknown value"}
	}
	return nil
}

type GiftPatch struct {
	Name           *string
	Description    *string
	Price          *float64
	ClearPrice     bool
	Status         *GiftStatus
	Reaction       *GiftReaction
	ContactID      *string
	Occasion       *string
	GivenDate      *time.Time
	ClearGivenDate bool
}

func (p GiftPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && !p.ClearPrice && p.Status == nil &&
		p.Reaction == nil && p.ContactID == nil && p.Occasion == nil && p.GivenDate == nil && !p.ClearGivenDate
}

func (p GiftPatch) Validate() error {
	if p.Name != nil {
		if err := checkVar("gift", "name", *p.Name, "nonblank"); err != nil {
			return err
		}
	}
	if p.Price != nil && *p.Price < 0 {
		return &ValidationError{Entity: "gift", Field: "price", Reason: "must be >= 0"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Entity: "gift", Field: "status", Reason: "has an unknown value"}
	}
	if p.Reaction != nil && *p.Reaction != "" {
		if !p.Reaction.Valid() {
			return &ValidationError{Entity: "gift", Field: "reaction", Reason: "has an unknown value"}
		}
		if p.Status != nil && *p.Status != GiftGiven {
			return &ValidationError{Entity: "gift", Field: "reaction", Reason: "requires status given"}
		}
	}
	if p.ContactID != nil {
		if err := checkVar("gift", "contact_id", *p.ContactID, "nonblank"); err != nil {
			return err
		}
	}
	return nil
}

// GivePatch moves a gift to given, recording the day and an optional reaction.
func GivePatch(on time.Time, reaction GiftReaction) GiftPatch {
	s := GiftGiven
	p := GiftPatch{Status: &s, GivenDate: &on}
	if reaction != "" {
		p.Reaction = &reaction
	}
	return p
}
