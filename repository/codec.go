// ABOUTME: Translation between snake_case wire rows and domain models
// ABOUTME: Parses ISO-8601 strings into times and renders inputs and patches as rows
package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

func text(r db.Row, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// nullable stores empty optional strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func instant(r db.Row, key string) (time.Time, error) {
	s := text(r, key)
	if s == "" {
		return time.Time{}, fmt.Errorf("row is missing %s", key)
	}
	t, err := db.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %s %q: %w", key, s, err)
	}
	return t, nil
}

func optInstant(r db.Row, key string) (*time.Time, error) {
	if text(r, key) == "" {
		return nil, nil
	}
	t, err := instant(r, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func number(r db.Row, key string) (*float64, error) {
	var f float64
	switch v := r[key].(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad %s: %w", key, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s: %w", key, err)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("bad %s type %T", key, v)
	}
	return &f, nil
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return db.FormatDate(*t)
}

func instantValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return db.FormatTimestamp(*t)
}

// stamps reads the server-assigned id and timestamps shared by every entity.
func stamps(r db.Row) (id string, created, updated time.Time, err error) {
	id = text(r, "id")
	if id == "" {
		return "", created, updated, fmt.Errorf("row is missing id")
	}
	if created, err = instant(r, "created_at"); err != nil {
		return "", created, updated, err
	}
	if updated, err = instant(r, "updated_at"); err != nil {
		return "", created, updated, err
	}
	return id, created, updated, nil
}

func decodeContact(r db.Row) (models.Contact, error) {
	var c models.Contact
	var err error
	if c.ID, c.CreatedAt, c.UpdatedAt, err = stamps(r); err != nil {
		return c, err
	}
	c.Name = text(r, "name")
	c.Phone = text(r, "phone")
	c.Email = text(r, "email")
	c.RelationshipType = text(r, "relationship_type")
	c.ProfilePicture = text(r, "profile_picture")
	if c.Birthday, err = optInstant(r, "birthday"); err != nil {
		return c, err
	}
	return c, nil
}

func contactRow(in models.ContactInput) db.Row {
	return db.Row{
		"name":              in.Name,
		"phone":             nullable(in.Phone),
		"email":             nullable(in.Email),
		"relationship_type": nullable(in.RelationshipType),
		"birthday":          dateValue(in.Birthday),
		"profile_picture":   nullable(in.ProfilePicture),
	}
}

func contactPatchRow(p models.ContactPatch) db.Row {
	row := db.Row{}
	if p.Name != nil {
		row["name"] = *p.Name
	}
	if p.Phone != nil {
		row["phone"] = nullable(*p.Phone)
	}
	if p.Email != nil {
		row["email"] = nullable(*p.Email)
	}
	if p.RelationshipType != nil {
		row["relationship_type"] = nullable(*p.RelationshipType)
	}
	if p.Birthday != nil {
		row["birthday"] = dateValue(p.Birthday)
	} else if p.ClearBirthday {
		row["birthday"] = nil
	}
	if p.ProfilePicture != nil {
		row["profile_picture"] = nullable(*p.ProfilePicture)
	}
	return row
}

func decodeInteraction(r db.Row) (models.Interaction, error) {
	var i models.Interaction
	var err error
	if i.ID, i.CreatedAt, i.UpdatedAt, err = stamps(r); err != nil {
		return i, err
	}
	if i.Date, err = instant(r, "date"); err != nil {
		return i, err
	}
	i.Type = models.InteractionType(text(r, "type"))
	i.Notes = text(r, "notes")
	i.Location = text(r, "location")
	i.ContactIDs = []string{}
	return i, nil
}

func interactionRow(in models.InteractionInput) db.Row {
	return db.Row{
		"date":     db.FormatTimestamp(in.Date),
		"type":     string(in.Type),
		"notes":    nullable(in.Notes),
		"location": nullable(in.Location),
	}
}

func interactionPatchRow(p models.InteractionPatch) db.Row {
	row := db.Row{}
	if p.Date != nil {
		row["date"] = db.FormatTimestamp(*p.Date)
	}
	if p.Type != nil {
		row["type"] = string(*p.Type)
	}
	if p.Notes != nil {
		row["notes"] = nullable(*p.Notes)
	}
	if p.Location != nil {
		row["location"] = nullable(*p.Location)
	}
	return row
}

func decodeReminder(r db.Row) (models.Reminder, error) {
	var rem models.Reminder
	var err error
	if rem.ID, rem.CreatedAt, rem.UpdatedAt, err = stamps(r); err != nil {
		return rem, err
	}
	if rem.Date, err = instant(r, "date"); err != nil {
		return rem, err
	}
	if rem.SnoozedUntil, err = optInstant(r, "snoozed_until"); err != nil {
		return rem, err
	}
	rem.Title = text(r, "title")
	rem.Description = text(r, "description")
	rem.Type = models.ReminderType(text(r, "type"))
	rem.Time = text(r, "time")
	rem.ContactID = text(r, "contact_id")
	rem.Status = models.ReminderStatus(text(r, "status"))
	rem.Recurrence = models.Recurrence(text(r, "recurrence"))
	rem.InteractionID = text(r, "interaction_id")
	return rem, nil
}

func reminderRow(in models.ReminderInput) db.Row {
	return db.Row{
		"title":          in.Title,
		"description":    nullable(in.Description),
		"type":           string(in.Type),
		"date":           db.FormatDate(in.Date),
		"time":           nullable(in.Time),
		"contact_id":     in.ContactID,
		"status":         string(in.Status),
		"recurrence":     string(in.Recurrence),
		"interaction_id": nullable(in.InteractionID),
	}
}

func reminderPatchRow(p models.ReminderPatch) db.Row {
	row := db.Row{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Description != nil {
		row["description"] = nullable(*p.Description)
	}
	if p.Type != nil {
		row["type"] = string(*p.Type)
	}
	if p.Date != nil {
		row["date"] = db.FormatDate(*p.Date)
	}
	if p.Time != nil {
		row["time"] = nullable(*p.Time)
	}
	if p.ContactID != nil {
		row["contact_id"] = *p.ContactID
	}
	if p.Status != nil {
		row["status"] = string(*p.Status)
	}
	if p.Recurrence != nil {
		row["recurrence"] = string(*p.Recurrence)
	}
	if p.SnoozedUntil != nil {
		row["snoozed_until"] = instantValue(p.SnoozedUntil)
	} else if p.ClearSnoozedUntil {
		row["snoozed_until"] = nil
	}
	if p.InteractionID != nil {
		row["interaction_id"] = nullable(*p.InteractionID)
	}
	return row
}

func decodeTopic(r db.Row) (models.Topic, error) {
	var t models.Topic
	var err error
	if t.ID, t.CreatedAt, t.UpdatedAt, err = stamps(r); err != nil {
		return t, err
	}
	if t.LastDiscussed, err = optInstant(r, "last_discussed"); err != nil {
		return t, err
	}
	t.ContactID = text(r, "contact_id")
	t.Name = text(r, "name")
	t.Category = models.TopicCategory(text(r, "category"))
	t.Notes = text(r, "notes")
	t.ContactIDs = []string{}
	return t, nil
}

func topicRow(in models.TopicInput) db.Row {
	return db.Row{
		"contact_id":     in.ContactID,
		"name":           in.Name,
		"category":       string(in.Category),
		"last_discussed": dateValue(in.LastDiscussed),
		"notes":          nullable(in.Notes),
	}
}

func topicPatchRow(p models.TopicPatch) db.Row {
	row := db.Row{}
	if p.ContactID != nil {
		row["contact_id"] = *p.ContactID
	}
	if p.Name != nil {
		row["name"] = *p.Name
	}
	if p.Category != nil {
		row["category"] = string(*p.Category)
	}
	if p.LastDiscussed != nil {
		row["last_discussed"] = dateValue(p.LastDiscussed)
	} else if p.ClearLastDiscussed {
		row["last_discussed"] = nil
	}
	if p.Notes != nil {
		row["notes"] = nullable(*p.Notes)
	}
	return row
}

func decodeGift(r db.Row) (models.Gift, error) {
	var g models.Gift
	var err error
	if g.ID, g.CreatedAt, g.UpdatedAt, err = stamps(r); err != nil {
		return g, err
	}
	if g.Price, err = number(r, "price"); err != nil {
		return g, err
	}
	if g.GivenDate, err = optInstant(r, "given_date"); err != nil {
		return g, err
	}
	g.Name = text(r, "name")
	g.Description = text(r, "description")
	g.Status = models.GiftStatus(text(r, "status"))
	g.Reaction = models.GiftReaction(text(r, "reaction"))
	g.ContactID = text(r, "contact_id")
	g.Occasion = text(r, "occasion")
	return g, nil
}

func giftRow(in models.GiftInput) db.Row {
	row := db.Row{
		"name":        in.Name,
		"description": nullable(in.Description),
		"price":       nil,
		"status":      string(in.Status),
		"reaction":    nullable(string(in.Reaction)),
		"contact_id":  in.ContactID,
		"occasion":    nullable(in.Occasion),
		"given_date":  dateValue(in.GivenDate),
	}
	if in.Price != nil {
		row["price"] = *in.Price
	}
	return row
}

func giftPatchRow(p models.GiftPatch) db.Row {
	row := db.Row{}
	if p.Name != nil {
		row["name"] = *p.Name
	}
	if p.Description != nil {
		row["description"] = nullable(*p.Description)
	}
	if p.Price != nil {
		row["price"] = *p.Price
	} else if p.ClearPrice {
		row["price"] = nil
	}
	if p.Status != nil {
		row["status"] = string(*p.Status)
	}
	if p.Reaction != nil {
		row["reaction"] = nullable(string(*p.Reaction))
	}
	if p.ContactID != nil {
		row["contact_id"] = *p.ContactID
	}
	if p.Occasion != nil {
		row["occasion"] = nullable(*p.Occasion)
	}
	if p.GivenDate != nil {
		row["given_date"] = dateValue(p.GivenDate)
	} else if p.ClearGivenDate {
		row["given_date"] = nil
	}
	return row
}
