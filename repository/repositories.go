// ABOUTME: Bundle of every entity repository sharing one injected gateway
// ABOUTME: Callers construct the gateway and pass it in; nothing here is global
package repository

import "github.com/harperreed/rapport/db"

type Repositories struct {
	Contacts     *ContactRepository
	Interactions *InteractionRepository
	Reminders    *ReminderRepository
	Topics       *TopicRepository
	Gifts        *GiftRepository
}

func New(gw db.Gateway) *Repositories {
	return &Repositories{
		Contacts:     NewContactRepository(gw),
		Interactions: NewInteractionRepository(gw),
		Reminders:    NewReminderRepository(gw),
		Topics:       NewTopicRepository(gw),
		Gifts:        NewGiftRepository(gw),
	}
}
