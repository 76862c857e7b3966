// ABOUTME: Database schema definitions for the SQLite gateway
// ABOUTME: Creates entity tables, link tables, and indexes with snake_case wire columns
package db

import (
	"database/sql"
)

// Timestamps are stored as ISO-8601 TEXT so rows leave the gateway in the
// same shape a hosted backend returns them.
const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	relationship_type TEXT,
	birthday TEXT,
	profile_picture TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('life_event', 'relationship_event')),
	date TEXT NOT NULL,
	notes TEXT,
	location TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_date ON interactions(date DESC);

CREATE TABLE IF NOT EXISTS interaction_contacts (
	interaction_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (interaction_id, contact_id),
	FOREIGN KEY (interaction_id) REFERENCES interactions(id) ON DELETE CASCADE,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interaction_contacts_contact ON interaction_contacts(contact_id);

CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL CHECK(category IN ('next_time', 'conversation_starter', 'evergreen', 'avoid')),
	last_discussed TEXT,
	notes TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_topics_name ON topics(name);

CREATE TABLE IF NOT EXISTS contact_topics (
	contact_id TEXT NOT NULL,
	topic_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (contact_id, topic_id),
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE,
	FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contact_topics_topic ON contact_topics(topic_id);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	type TEXT NOT NULL CHECK(type IN ('birthday', 'check_in', 'follow_up', 'custom')),
	date TEXT NOT NULL,
	time TEXT,
	contact_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'completed', 'snoozed')),
	recurrence TEXT NOT NULL DEFAULT 'none' CHECK(recurrence IN ('none', 'daily', 'weekly', 'monthly', 'yearly')),
	interaction_id TEXT,
	snoozed_until TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE,
	FOREIGN KEY (interaction_id) REFERENCES interactions(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_reminders_date ON reminders(date);
CREATE INDEX IF NOT EXISTS idx_reminders_contact ON reminders(contact_id);
CREATE INDEX IF NOT EXISTS idx_reminders_status ON reminders(status);

CREATE TABLE IF NOT EXISTS gifts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	price REAL CHECK(price IS NULL OR price >= 0),
	status TEXT NOT NULL DEFAULT 'idea' CHECK(status IN ('idea', 'purchased', 'given')),
	reaction TEXT CHECK(reaction IS NULL OR reaction IN ('loved', 'liked', 'neutral')),
	contact_id TEXT NOT NULL,
	occasion TEXT,
	given_date TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_gifts_contact ON gifts(contact_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
