// ABOUTME: Tests for entity repositories against the in-memory gateway
// ABOUTME: Covers round trips, error typing, replace-all relations, and cascade deletes
package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

// faultyGateway fails selected calls and counts every call it forwards.
type faultyGateway struct {
	db.Gateway

	mu             sync.Mutex
	calls          int
	failInsertMany map[string]error
	failSelect     map[string]error
}

func (f *faultyGateway) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *faultyGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *faultyGateway) Select(ctx context.Context, table string, q db.Query) ([]db.Row, error) {
	f.count()
	if err := f.failSelect[table]; err != nil {
		return nil, err
	}
	return f.Gateway.Select(ctx, table, q)
}

func (f *faultyGateway) SelectOne(ctx context.Context, table, id string) (db.Row, error) {
	f.count()
	return f.Gateway.SelectOne(ctx, table, id)
}

func (f *faultyGateway) Insert(ctx context.Context, table string, row db.Row) (db.Row, error) {
	f.count()
	return f.Gateway.Insert(ctx, table, row)
}

func (f *faultyGateway) InsertMany(ctx context.Context, table string, rows []db.Row) ([]db.Row, error) {
	f.count()
	if err := f.failInsertMany[table]; err != nil {
		return nil, err
	}
	return f.Gateway.InsertMany(ctx, table, rows)
}

func (f *faultyGateway) Update(ctx context.Context, table, id string, patch db.Row) (db.Row, error) {
	f.count()
	return f.Gateway.Update(ctx, table, id, patch)
}

func (f *faultyGateway) Delete(ctx context.Context, table, id string) error {
	f.count()
	return f.Gateway.Delete(ctx, table, id)
}

func (f *faultyGateway) DeleteWhere(ctx context.Context, table string, filter db.Filter) (int, error) {
	f.count()
	return f.Gateway.DeleteWhere(ctx, table, filter)
}

func setupTestRepos(t *testing.T) (*Repositories, *faultyGateway) {
	t.Helper()
	mem, err := db.NewMemoryGateway()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	gw := &faultyGateway{
		Gateway:        mem,
		failInsertMany: map[string]error{},
		failSelect:     map[string]error{},
	}
	return New(gw), gw
}

func mustContact(t *testing.T, repos *Repositories, name string) models.Contact {
	t.Helper()
	c, err := repos.Contacts.Create(context.Background(), models.ContactInput{Name: name})
	require.NoError(t, err)
	return c
}

func TestContactCreateRoundTrip(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	birthday := time.Date(1990, 7, 14, 0, 0, 0, 0, time.UTC)

	a, err := repos.Contacts.Create(ctx, models.ContactInput{
		Name:             "Ada",
		Email:            "ada@example.com",
		RelationshipType: "friend",
		Birthday:         &birthday,
	})
	require.NoError(t, err)
	b := mustContact(t, repos, "Bob")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.CreatedAt.Equal(a.UpdatedAt))
	assert.Equal(t, "friend", a.RelationshipType)
	require.NotNil(t, a.Birthday)
	assert.Equal(t, birthday, *a.Birthday)

	got, err := repos.Contacts.FetchOne(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestValidationFailsBeforeAnyGatewayCall(t *testing.T) {
	repos, gw := setupTestRepos(t)
	ctx := context.Background()

	_, err := repos.Contacts.Create(ctx, models.ContactInput{Name: "  "})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = repos.Reminders.Create(ctx, models.ReminderInput{Title: "Call", Type: "nag", Date: time.Now(), ContactID: "c"})
	assert.True(t, IsValidation(err))

	blank := ""
	_, err = repos.Contacts.Update(ctx, "any", models.ContactPatch{Name: &blank})
	assert.True(t, IsValidation(err))

	assert.Equal(t, 0, gw.Calls())
}

func TestContactsFetchAllOrderedByName(t *testing.T) {
	repos, _ := setupTestRepos(t)
	for _, name := range []string{"Zoe", "Amy", "Bob"} {
		mustContact(t, repos, name)
	}

	all, err := repos.Contacts.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Amy", "Bob", "Zoe"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestContactUpdatePatchSemantics(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	birthday := time.Date(1990, 7, 14, 0, 0, 0, 0, time.UTC)
	c, err := repos.Contacts.Create(ctx, models.ContactInput{Name: "Ada", Phone: "555", Birthday: &birthday})
	require.NoError(t, err)

	email := "ada@example.com"
	updated, err := repos.Contacts.Update(ctx, c.ID, models.ContactPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, email, updated.Email)

	empty := ""
	cleared, err := repos.Contacts.Update(ctx, c.ID, models.ContactPatch{Phone: &empty, ClearBirthday: true})
	require.NoError(t, err)
	assert.Empty(t, cleared.Phone)
	assert.Nil(t, cleared.Birthday)
	assert.Equal(t, email, cleared.Email)

	same, err := repos.Contacts.Update(ctx, c.ID, models.ContactPatch{})
	require.NoError(t, err)
	assert.Equal(t, cleared, same)
}

func TestNotFoundErrors(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	name := "x"

	_, err := repos.Contacts.FetchOne(ctx, "missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "contact", nf.Entity)
	assert.Equal(t, "missing", nf.ID)

	_, err = repos.Contacts.Update(ctx, "missing", models.ContactPatch{Name: &name})
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(repos.Contacts.Delete(ctx, "missing")))
	assert.True(t, IsNotFound(repos.Gifts.Delete(ctx, "missing")))
	assert.True(t, IsNotFound(repos.Interactions.Delete(ctx, "missing")))

	_, err = repos.Interactions.UpdateRelations(ctx, "missing", []string{"a"})
	assert.True(t, IsNotFound(err))
}

func TestRemoteErrorsPropagateUnchanged(t *testing.T) {
	repos, gw := setupTestRepos(t)
	cause := errors.New("connection reset")
	gw.failSelect[db.TableContacts] = cause

	_, err := repos.Contacts.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.True(t, errors.Is(err, cause))

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, db.TableContacts, re.Table)
}

func newInteraction(t *testing.T, repos *Repositories, date time.Time, contactIDs ...string) models.Interaction {
	t.Helper()
	i, err := repos.Interactions.Create(context.Background(), models.InteractionInput{
		Date:       date,
		Type:       models.InteractionRelationshipEvent,
		ContactIDs: contactIDs,
	})
	require.NoError(t, err)
	return i
}

func TestInteractionCreateWithRelations(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")

	i := newInteraction(t, repos, time.Now(), a.ID, b.ID, a.ID)
	assert.Equal(t, []string{a.ID, b.ID}, i.ContactIDs)

	got, err := repos.Interactions.FetchOne(ctx, i.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, got.ContactIDs)

	_, contacts, err := repos.Interactions.GetWithContacts(ctx, i.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestInteractionUpdateRelationsReplacesAll(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")
	c := mustContact(t, repos, "Cal")
	i := newInteraction(t, repos, time.Now(), a.ID, b.ID)

	updated, err := repos.Interactions.UpdateRelations(ctx, i.ID, []string{c.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, updated.ContactIDs)

	ids, err := repos.Interactions.ContactIDs(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids)
}

func TestInteractionUpdateRelationsInterruptedLeavesEmptySet(t *testing.T) {
	repos, gw := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")
	c := mustContact(t, repos, "Cal")
	i := newInteraction(t, repos, time.Now(), a.ID, b.ID)

	cause := errors.New("network dropped")
	gw.failInsertMany[db.TableInteractionContacts] = cause

	_, err := repos.Interactions.UpdateRelations(ctx, i.ID, []string{c.ID})
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.True(t, errors.Is(err, cause))

	// The delete step already ran, so the interaction has no contacts left.
	delete(gw.failInsertMany, db.TableInteractionContacts)
	ids, err := repos.Interactions.ContactIDs(ctx, i.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInteractionsFetchAllNewestFirstWithContacts(t *testing.T) {
	repos, _ := setupTestRepos(t)
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := newInteraction(t, repos, base, a.ID)
	newer := newInteraction(t, repos, base.Add(48*time.Hour), a.ID, b.ID)

	all, err := repos.Interactions.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, all[0].ContactIDs)
	assert.Equal(t, []string{a.ID}, all[1].ContactIDs)
}

func TestInteractionDeleteClearsReminderBackReference(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	i := newInteraction(t, repos, time.Now(), a.ID)

	rem, err := repos.Reminders.Create(ctx, models.ReminderInput{
		Title: "Follow up", Type: models.ReminderFollowUp, Date: time.Now(),
		ContactID: a.ID, InteractionID: i.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, i.ID, rem.InteractionID)

	require.NoError(t, repos.Interactions.Delete(ctx, i.ID))

	rem, err = repos.Reminders.FetchOne(ctx, rem.ID)
	require.NoError(t, err)
	assert.Empty(t, rem.InteractionID)
}

func TestReminderStatusTransitionsArePermissive(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	now := time.Now()

	rem, err := repos.Reminders.Create(ctx, models.ReminderInput{
		Title: "Call", Type: models.ReminderCheckIn, Date: now, Time: "09:30", ContactID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderPending, rem.Status)
	assert.Equal(t, models.RecurrenceNone, rem.Recurrence)
	assert.Equal(t, "09:30", rem.Time)

	rem, err = repos.Reminders.Update(ctx, rem.ID, models.SnoozePatch(now))
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSnoozed, rem.Status)
	require.NotNil(t, rem.SnoozedUntil)
	assert.True(t, rem.SnoozeActive(now))

	rem, err = repos.Reminders.Update(ctx, rem.ID, models.CompletePatch())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderCompleted, rem.Status)
	assert.NotNil(t, rem.SnoozedUntil, "snoozedUntil may stay stored")
	assert.False(t, rem.SnoozeActive(now))
	assert.Equal(t, models.ReminderCompleted, rem.EffectiveStatus(now))

	// completed -> pending is not rejected by the data model
	pending := models.ReminderPending
	rem, err = repos.Reminders.Update(ctx, rem.ID, models.ReminderPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderPending, rem.Status)
}

func TestReminderSelections(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	late, err := repos.Reminders.Create(ctx, models.ReminderInput{Title: "Late", Type: models.ReminderCustom, Date: day.AddDate(0, 0, 5), ContactID: a.ID})
	require.NoError(t, err)
	early, err := repos.Reminders.Create(ctx, models.ReminderInput{Title: "Early", Type: models.ReminderCustom, Date: day, ContactID: a.ID})
	require.NoError(t, err)
	_, err = repos.Reminders.Create(ctx, models.ReminderInput{Title: "Other", Type: models.ReminderCustom, Date: day, ContactID: b.ID, Status: models.ReminderCompleted})
	require.NoError(t, err)

	mine, err := repos.Reminders.ByContact(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, early.ID, mine[0].ID)
	assert.Equal(t, late.ID, mine[1].ID)

	done, err := repos.Reminders.ByStatus(ctx, models.ReminderCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Other", done[0].Title)

	rem, contact, err := repos.Reminders.GetWithContact(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, early.ID, rem.ID)
	assert.Equal(t, "Amy", contact.Name)

	c, rems, err := repos.Contacts.GetWithReminders(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.ID)
	assert.Len(t, rems, 2)
}

func TestTopicOwnerAlwaysLinked(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")

	topic, err := repos.Topics.Create(ctx, models.TopicInput{
		ContactID:  a.ID,
		Name:       "Hiking trip",
		Category:   models.TopicNextTime,
		ContactIDs: []string{b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, topic.ContactIDs)

	topic, err = repos.Topics.UpdateRelations(ctx, topic.ID, []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, topic.ContactIDs)

	bobTopics, err := repos.Topics.ByContact(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, bobTopics)

	_, linked, err := repos.Contacts.GetWithTopics(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Hiking trip", linked[0].Name)

	_, contacts, err := repos.Topics.GetWithContacts(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Amy", contacts[0].Name)

	_, err = repos.Topics.Create(ctx, models.TopicInput{ContactID: a.ID, Name: "Work", Category: "work"})
	assert.True(t, IsValidation(err))
}

func TestGiftRoundTrip(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	price := 24.5

	g, err := repos.Gifts.Create(ctx, models.GiftInput{Name: "Book", ContactID: a.ID, Price: &price, Occasion: "birthday"})
	require.NoError(t, err)
	assert.Equal(t, models.GiftIdea, g.Status)
	require.NotNil(t, g.Price)
	assert.Equal(t, 24.5, *g.Price)

	given := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	g, err = repos.Gifts.Update(ctx, g.ID, models.GivePatch(given, models.ReactionLoved))
	require.NoError(t, err)
	assert.Equal(t, models.GiftGiven, g.Status)
	assert.Equal(t, models.ReactionLoved, g.Reaction)
	require.NotNil(t, g.GivenDate)
	assert.Equal(t, given, *g.GivenDate)

	gifts, err := repos.Gifts.ByContact(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, gifts, 1)
}

func TestGiftReactionRequiresGiven(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	loved := models.ReactionLoved

	g, err := repos.Gifts.Create(ctx, models.GiftInput{Name: "Scarf", ContactID: a.ID})
	require.NoError(t, err)

	_, err = repos.Gifts.Update(ctx, g.ID, models.GiftPatch{Reaction: &loved})
	assert.True(t, IsValidation(err), "got %v", err)

	stored, err := repos.Gifts.FetchOne(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reaction)

	given := models.GiftGiven
	_, err = repos.Gifts.Update(ctx, g.ID, models.GiftPatch{Status: &given})
	require.NoError(t, err)
	g, err = repos.Gifts.Update(ctx, g.ID, models.GiftPatch{Reaction: &loved})
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLoved, g.Reaction)

	_, err = repos.Gifts.Update(ctx, "missing", models.GiftPatch{Reaction: &loved})
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestContactDeleteCascade(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")

	shared := newInteraction(t, repos, time.Now(), a.ID, b.ID)
	_, err := repos.Reminders.Create(ctx, models.ReminderInput{Title: "Call", Type: models.ReminderCheckIn, Date: time.Now(), ContactID: a.ID})
	require.NoError(t, err)
	_, err = repos.Gifts.Create(ctx, models.GiftInput{Name: "Book", ContactID: a.ID})
	require.NoError(t, err)
	owned, err := repos.Topics.Create(ctx, models.TopicInput{ContactID: a.ID, Name: "Books", Category: models.TopicEvergreen, ContactIDs: []string{b.ID}})
	require.NoError(t, err)
	bobs, err := repos.Topics.Create(ctx, models.TopicInput{ContactID: b.ID, Name: "Chess", Category: models.TopicEvergreen, ContactIDs: []string{a.ID}})
	require.NoError(t, err)

	require.NoError(t, repos.Contacts.Delete(ctx, a.ID))

	_, err = repos.Contacts.FetchOne(ctx, a.ID)
	assert.True(t, IsNotFound(err))

	reminders, err := repos.Reminders.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	gifts, err := repos.Gifts.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, gifts)

	_, err = repos.Topics.FetchOne(ctx, owned.ID)
	assert.True(t, IsNotFound(err))

	chess, err := repos.Topics.FetchOne(ctx, bobs.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, chess.ContactIDs)

	kept, err := repos.Interactions.FetchOne(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, kept.ContactIDs)
}

func TestRepositoriesOverSQLite(t *testing.T) {
	gw, err := db.OpenSQLiteGateway(filepath.Join(t.TempDir(), "rapport.db"))
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	repos := New(gw)
	ctx := context.Background()
	a := mustContact(t, repos, "Amy")
	b := mustContact(t, repos, "Bob")
	c := mustContact(t, repos, "Cal")

	i := newInteraction(t, repos, time.Now(), a.ID, b.ID)
	_, err = repos.Interactions.UpdateRelations(ctx, i.ID, []string{c.ID})
	require.NoError(t, err)

	got, err := repos.Interactions.FetchOne(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.ContactIDs)

	require.NoError(t, repos.Contacts.Delete(ctx, c.ID))
	got, err = repos.Interactions.FetchOne(ctx, i.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ContactIDs)
}
