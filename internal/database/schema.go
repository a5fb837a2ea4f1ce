package database

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	phone_number TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS memberships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_phone_number TEXT NOT NULL REFERENCES channels(phone_number) ON DELETE CASCADE,
	member_number TEXT NOT NULL,
	membership_type TEXT NOT NULL CHECK (membership_type IN ('ADMIN', 'PUBLISHER', 'SUBSCRIBER')),
	language TEXT NOT NULL DEFAULT 'EN',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (channel_phone_number, member_number)
);

CREATE INDEX IF NOT EXISTS idx_memberships_channel_type
	ON memberships(channel_phone_number, membership_type);
`
