package models

import "time"

// Episode is the local record for one remote video. An episode with a nil
// AudioPath is still pending and never appears in feeds.
type Episode struct {
	ID              int        `db:"id"`
	ChannelID       int        `db:"channel_id"`
	YoutubeVideoID  string     `db:"youtube_video_id"`
	Title           string     `db:"title"`
	Description     *string    `db:"description"`
	DurationSeconds *int       `db:"duration_seconds"`
	PublishedAt     *time.Time `db:"published_at"`
	ThumbnailURL    *string    `db:"thumbnail_url"`
	AudioUUID       string     `db:"audio_uuid"`
	AudioPath       *string    `db:"audio_path"`
	AudioSizeBytes  *int64     `db:"audio_size_bytes"`
	DownloadedAt    *time.Time `db:"downloaded_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Downloaded reports whether the episode's audio artifact is present.
func (e *Episode) Downloaded() bool {
	return e.AudioPath != nil && *e.AudioPath != ""
}
