// Package refresh reconciles each channel's remote video list with the
// locally stored episodes, downloading audio for anything not yet satisfied.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/singleflight"
	"tubecast/internal/db"
	"tubecast/internal/models"
	"tubecast/internal/youtube"
)

// VideoService is the remote collaborator the engine pulls from. Implemented
// by youtube.Client and mocked in tests.
type VideoService interface {
	ListRecentVideos(ctx context.Context, channelID string, max int) ([]youtube.Video, error)
	FetchMetadata(ctx context.Context, videoID string) (*youtube.Metadata, error)
	ExtractAudio(ctx context.Context, videoID, destPath string) (int64, error)
}

// Engine drives both scheduled and on-demand refreshes through the same
// per-channel-guarded code path.
type Engine struct {
	videos    VideoService
	audioDir  string
	maxVideos int

	// At most one refresh per channel is in flight at a time; concurrent
	// callers for the same channel join the running one.
	group singleflight.Group
}

func NewEngine(videos VideoService, audioDir string, maxVideos int) *Engine {
	return &Engine{
		videos:    videos,
		audioDir:  audioDir,
		maxVideos: maxVideos,
	}
}

// RefreshChannel brings one channel up to date. Per-video failures are
// logged and skipped; only a failure to list the channel's videos is
// returned to the caller.
func (e *Engine) RefreshChannel(ctx context.Context, channel *models.Channel) error {
	_, err, _ := e.group.Do(strconv.Itoa(channel.ID), func() (interface{}, error) {
		return nil, e.refresh(ctx, channel)
	})
	return err
}

// RefreshAll refreshes every registered channel. One channel's failure does
// not block the rest.
func (e *Engine) RefreshAll(ctx context.Context) error {
	channels, err := db.ListChannels()
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	for i := range channels {
		if err := e.RefreshChannel(ctx, &channels[i]); err != nil {
			log.Printf("Failed to refresh channel %q: %v", channels[i].Name, err)
		}
	}
	return nil
}

func (e *Engine) refresh(ctx context.Context, channel *models.Channel) error {
	log.Printf("Refreshing channel: %s", channel.Name)

	videos, err := e.videos.ListRecentVideos(ctx, channel.YoutubeChannelID, e.maxVideos)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	// Process in listing order; no re-sorting here.
	for _, video := range videos {
		if err := e.processVideo(ctx, channel, video); err != nil {
			log.Printf("Failed to process video %s: %v", video.ID, err)
		}
	}

	log.Printf("Finished refreshing channel: %s", channel.Name)
	return nil
}

func (e *Engine) processVideo(ctx context.Context, channel *models.Channel, video youtube.Video) error {
	// Already satisfied episodes cost nothing beyond the listing call.
	existing, err := db.GetEpisodeByVideoID(video.ID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to look up episode: %w", err)
	}
	if existing != nil && existing.Downloaded() {
		return nil
	}

	log.Printf("Processing new video: %s", video.Title)

	meta, err := e.videos.FetchMetadata(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}

	var description, thumbnail *string
	if meta.Description != "" {
		description = &meta.Description
	}
	if meta.ThumbnailURL != "" {
		thumbnail = &meta.ThumbnailURL
	}
	duration := meta.DurationSeconds

	episode, err := db.UpsertDiscovered(channel.ID, video.ID, meta.Title, description, &duration, meta.PublishedAt, thumbnail)
	if err != nil {
		return fmt.Errorf("failed to upsert episode: %w", err)
	}

	audioFilename := fmt.Sprintf("%s.%s", episode.AudioUUID, youtube.AudioExtension)
	size, err := e.videos.ExtractAudio(ctx, video.ID, filepath.Join(e.audioDir, audioFilename))
	if err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}

	if err := db.MarkDownloaded(episode.ID, audioFilename, size); err != nil {
		return fmt.Errorf("failed to mark episode downloaded: %w", err)
	}

	log.Printf("Downloaded: %s", meta.Title)
	return nil
}
