// ABOUTME: Tests for relationship data models
// ABOUTME: Validates enums, reminder snooze semantics, inputs, and patches
package models

import (
	"errors"
	"testing"
	"time"
)

func TestEnumValidity(t *testing.T) {
	if !InteractionLifeEvent.Valid() || InteractionType("meeting").Valid() {
		t.Error("unexpected InteractionType validity")
	}
	if !ReminderCheckIn.Valid() || ReminderType("nag").Valid() {
		t.Error("unexpected ReminderType validity")
	}
	if !RecurrenceYearly.Valid() || Recurrence("hourly").Valid() {
		t.Error("unexpected Recurrence validity")
	}
	if !TopicAvoid.Valid() || TopicCategory("family").Valid() {
		t.Error("topic categories should only accept the canonical vocabulary")
	}
	if !ReactionLoved.Valid() || GiftReaction("hated").Valid() {
		t.Error("unexpected GiftReaction validity")
	}
}

func TestGiftStatusNext(t *testing.T) {
	tests := []struct {
		in   GiftStatus
		want GiftStatus
	}{
		{GiftIdea, GiftPurchased},
		{GiftPurchased, GiftGiven},
		{GiftGiven, GiftGiven},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestReminderSnoozeSemantics(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	snoozed := Reminder{Status: ReminderSnoozed, SnoozedUntil: &later}
	if !snoozed.SnoozeActive(now) {
		t.Error("snooze ending in the future should be active")
	}
	if got := snoozed.EffectiveStatus(now); got != ReminderSnoozed {
		t.Errorf("EffectiveStatus = %s, want snoozed", got)
	}

	expired := Reminder{Status: ReminderSnoozed, SnoozedUntil: &earlier}
	if got := expired.EffectiveStatus(now); got != ReminderPending {
		t.Errorf("expired snooze EffectiveStatus = %s, want pending", got)
	}

	completed := Reminder{Status: ReminderCompleted, SnoozedUntil: &later}
	if completed.SnoozeActive(now) {
		t.Error("completed reminder must not treat a leftover snoozedUntil as active")
	}
	if got := completed.EffectiveStatus(now); got != ReminderCompleted {
		t.Errorf("EffectiveStatus = %s, want completed", got)
	}
}

func TestReminderDue(t *testing.T) {
	r := Reminder{Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), Time: "14:30"}
	want := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	if !r.Due().Equal(want) {
		t.Errorf("Due() = %v, want %v", r.Due(), want)
	}

	r.Time = ""
	if !r.Due().Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Due() without time = %v, want start of day", r.Due())
	}
}

func TestSnoozePatch(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	p := SnoozePatch(now)
	if p.Status == nil || *p.Status != ReminderSnoozed {
		t.Fatal("snooze patch should set status snoozed")
	}
	if p.SnoozedUntil == nil || !p.SnoozedUntil.Equal(now.Add(24*time.Hour)) {
		t.Errorf("snoozedUntil = %v, want now+24h", p.SnoozedUntil)
	}

	re := ReactivatePatch()
	if *re.Status != ReminderPending || !re.ClearSnoozedUntil {
		t.Error("reactivate should return to pending and clear the snooze")
	}
}

func TestContactInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ContactInput
		field string
	}{
		{"valid", ContactInput{Name: "Ada", Email: "ada@example.com"}, ""},
		{"missing name", ContactInput{}, "name"},
		{"blank name", ContactInput{Name: "   "}, "name"},
		{"bad email", ContactInput{Name: "Ada", Email: "nope"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestReminderInputValidation(t *testing.T) {
	base := ReminderInput{
		Title:     "Call",
		Type:      ReminderCheckIn,
		Date:      time.Now(),
		ContactID: "c1",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := base
	bad.Time = "25:99"
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid time to fail")
	}

	bad = base
	bad.Type = "nag"
	if err := bad.Validate(); err == nil {
		t.Error("expected unknown type to fail")
	}

	bad = base
	bad.Status = ReminderSnoozed
	if err := bad.Validate(); err == nil {
		t.Error("new reminders cannot start snoozed")
	}

	withDefaults := base.WithDefaults()
	if withDefaults.Status != ReminderPending || withDefaults.Recurrence != RecurrenceNone {
		t.Errorf("defaults = %s/%s, want pending/none", withDefaults.Status, withDefaults.Recurrence)
	}
}

func TestGiftInputValidation(t *testing.T) {
	price := -5.0
	in := GiftInput{Name: "Book", ContactID: "c1", Price: &price}
	if err := in.Validate(); err == nil {
		t.Error("negative price should fail")
	}

	in = GiftInput{Name: "Book", ContactID: "c1", Reaction: ReactionLoved}
	if err := in.Validate(); err == nil {
		t.Error("reaction without given status should fail")
	}

	in.Status = GiftGiven
	if err := in.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPatchEmptyAndValidate(t *testing.T) {
	if !(ContactPatch{}).Empty() {
		t.Error("zero ContactPatch should be empty")
	}
	blank := ""
	if err := (ContactPatch{Name: &blank}).Validate(); err == nil {
		t.Error("blank name patch should fail")
	}
	if err := (ContactPatch{Email: &blank}).Validate(); err != nil {
		t.Errorf("clearing email should be allowed: %v", err)
	}

	done := ReminderCompleted
	if err := (ReminderPatch{Status: &done}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	purchased := GiftPurchased
	loved := ReactionLoved
	if err := (GiftPatch{Status: &purchased, Reaction: &loved}).Validate(); err == nil {
		t.Error("reaction with non-given status should fail")
	}
}

func TestGroupHas(t *testing.T) {
	g := Group{Contacts: []string{"a", "b"}}
	if !g.Has("a") || g.Has("c") {
		t.Error("unexpected group membership")
	}
}
