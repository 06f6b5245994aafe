package db

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"tubecast/internal/models"
)

// UpsertDiscovered records a video seen in a channel listing. If the video
// is already known, its metadata is refreshed but the audio columns are left
// alone, so re-listing never clobbers a completed download.
func UpsertDiscovered(channelID int, videoID, title string, description *string, durationSeconds *int, publishedAt *time.Time, thumbnailURL *string) (*models.Episode, error) {
	query := `
		INSERT INTO episodes (channel_id, youtube_video_id, title, description, duration_seconds, published_at, thumbnail_url, audio_uuid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (youtube_video_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			duration_seconds = EXCLUDED.duration_seconds,
			published_at = EXCLUDED.published_at,
			thumbnail_url = EXCLUDED.thumbnail_url
		RETURNING *
	`
	episode := &models.Episode{}
	err := DB.Get(episode, query, channelID, videoID, title, description, durationSeconds, publishedAt, thumbnailURL, uuid.NewString())
	if err != nil {
		log.Printf("Error upserting episode %s: %v", videoID, err)
		return nil, err
	}
	return episode, nil
}

// MarkDownloaded transitions an episode from pending to downloaded. Calling
// it again with the same artifact just rewrites the same values.
func MarkDownloaded(episodeID int, audioPath string, sizeBytes int64) error {
	_, err := DB.Exec(`
		UPDATE episodes
		SET audio_path = $1, audio_size_bytes = $2, downloaded_at = NOW()
		WHERE id = $3`,
		audioPath, sizeBytes, episodeID)
	if err != nil {
		log.Printf("Error marking episode %d downloaded: %v", episodeID, err)
	}
	return err
}

// ListReadyEpisodes returns a channel's downloaded episodes, newest first.
// Pending episodes (no audio artifact) are excluded by the predicate.
func ListReadyEpisodes(channelID int) ([]models.Episode, error) {
	query := `
		SELECT * FROM episodes
		WHERE channel_id = $1 AND audio_path IS NOT NULL
		ORDER BY published_at DESC
	`
	var episodes []models.Episode
	err := DB.Select(&episodes, query, channelID)
	if err != nil {
		log.Printf("Error listing ready episodes for channel %d: %v", channelID, err)
		return nil, err
	}
	return episodes, nil
}

func GetEpisodeByVideoID(videoID string) (*models.Episode, error) {
	episode := &models.Episode{}
	err := DB.Get(episode, "SELECT * FROM episodes WHERE youtube_video_id = $1", videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return episode, err
}

// GetEpisodeByAudioPath resolves an artifact filename back to its episode.
// The audio handlers use this to check the artifact belongs to the channel
// that authorized the request.
func GetEpisodeByAudioPath(audioPath string) (*models.Episode, error) {
	episode := &models.Episode{}
	err := DB.Get(episode, "SELECT * FROM episodes WHERE audio_path = $1", audioPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return episode, err
}

// ListAudioPaths returns the artifact filenames of a channel's downloaded
// episodes, for cleanup before the channel row is deleted.
func ListAudioPaths(channelID int) ([]string, error) {
	var paths []string
	err := DB.Select(&paths, "SELECT audio_path FROM episodes WHERE channel_id = $1 AND audio_path IS NOT NULL", channelID)
	if err != nil {
		log.Printf("Error listing audio paths for channel %d: %v", channelID, err)
		return nil, err
	}
	return paths, nil
}
