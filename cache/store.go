// ABOUTME: Store bundling one cache controller per entity type
// ABOUTME: Loads controllers concurrently and coordinates cross-entity operations
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/repository"
)

type (
	ContactController     = Controller[models.Contact, models.ContactInput, models.ContactPatch]
	InteractionController = RelatedController[models.Interaction, models.InteractionInput, models.InteractionPatch]
	ReminderController    = Controller[models.Reminder, models.ReminderInput, models.ReminderPatch]
	TopicController       = RelatedController[models.Topic, models.TopicInput, models.TopicPatch]
	GiftController        = Controller[models.Gift, models.GiftInput, models.GiftPatch]
)

type Store struct {
	Contacts     *ContactController
	Interactions *InteractionController
	Reminders    *ReminderController
	Topics       *TopicController
	Gifts        *GiftController

	logger *slog.Logger
	now    func() time.Time
}

func NewStore(repos *repository.Repositories, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Contacts:     NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repos.Contacts, opts),
		Interactions: NewRelatedController[models.Interaction, models.InteractionInput, models.InteractionPatch]("interaction", repos.Interactions, opts),
		Reminders:    NewController[models.Reminder, models.ReminderInput, models.ReminderPatch]("reminder", repos.Reminders, opts),
		Topics:       NewRelatedController[models.Topic, models.TopicInput, models.TopicPatch]("topic", repos.Topics, opts),
		Gifts:        NewController[models.Gift, models.GiftInput, models.GiftPatch]("gift", repos.Gifts, opts),
		logger:       logger,
		now:          time.Now,
	}
}

type loader interface {
	Load(ctx context.Context) error
	Status() Status
}

func (s *Store) controllers() []loader {
	return []loader{s.Contacts, s.Interactions, s.Reminders, s.Topics, s.Gifts}
}

// LoadAll loads every controller concurrently. A failure in one does not
// stop the others; all failures are returned joined.
func (s *Store) LoadAll(ctx context.Context) error {
	return loadEach(ctx, s.controllers())
}

func loadEach(ctx context.Context, ls []loader) error {
	errs := make([]error, len(ls))
	var g errgroup.Group
	for i, l := range ls {
		g.Go(func() error {
			errs[i] = l.Load(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// DeleteContact removes the contact with its cascade, then reloads every
// dependent controller that has been loaded before so it drops what the
// cascade removed.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	if err := s.Contacts.Remove(ctx, id); err != nil {
		return err
	}

	var stale []loader
	for _, l := range []loader{s.Interactions, s.Reminders, s.Topics, s.Gifts} {
		if l.Status() != Idle {
			stale = append(stale, l)
		}
	}
	if err := loadEach(ctx, stale); err != nil {
		s.logger.Warn("reload after contact delete failed", "id", id, "error", err)
		return err
	}
	return nil
}

func (s *Store) CompleteReminder(ctx context.Context, id string) (models.Reminder, error) {
	return s.Reminders.Update(ctx, id, models.CompletePatch())
}

// SnoozeReminder pushes the reminder out by models.SnoozeDuration from now.
func (s *Store) SnoozeReminder(ctx context.Context, id string) (models.Reminder, error) {
	return s.Reminders.Update(ctx, id, models.SnoozePatch(s.now()))
}

func (s *Store) ReactivateReminder(ctx context.Context, id string) (models.Reminder, error) {
	return s.Reminders.Update(ctx, id, models.ReactivatePatch())
}

// AdvanceGift moves a gift one step along idea, purchased, given.
func (s *Store) AdvanceGift(ctx context.Context, id string) (models.Gift, error) {
	g, err := s.Gifts.Get(ctx, id)
	if err != nil {
		return models.Gift{}, err
	}
	next := g.Status.Next()
	patch := models.GiftPatch{Status: &next}
	if next == models.GiftGiven && g.GivenDate == nil {
		today := models.DateOnly(s.now())
		patch.GivenDate = &today
	}
	return s.Gifts.Update(ctx, id, patch)
}
