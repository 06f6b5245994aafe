package db

// Schema is applied on startup. Channels exclusively own their episodes;
// deleting a channel cascades to its episode rows.
const Schema = `
CREATE TABLE IF NOT EXISTS channels (
	id SERIAL PRIMARY KEY,
	youtube_channel_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	auth_type TEXT NOT NULL DEFAULT 'none',
	auth_username TEXT,
	password_hash TEXT,
	secret_token TEXT UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS episodes (
	id SERIAL PRIMARY KEY,
	channel_id INTEGER NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
	youtube_video_id TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	duration_seconds INTEGER,
	published_at TIMESTAMPTZ,
	thumbnail_url TEXT,
	audio_uuid TEXT UNIQUE NOT NULL,
	audio_path TEXT,
	audio_size_bytes BIGINT,
	downloaded_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_episodes_channel ON episodes(channel_id);
`
