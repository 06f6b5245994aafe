package feed

import (
	"fmt"
	"net/http"
	"os"

	"github.com/eduncan911/podcast"
	"tubecast/internal/models"
)

const maxDescriptionLen = 4000

func getBaseURL(r *http.Request) string {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		return baseURL
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// feedURL returns the feed's own address, on the token path when the
// channel uses token auth.
func feedURL(baseURL string, channel *models.Channel) string {
	if tok, ok := channel.Policy().(models.AuthToken); ok {
		return fmt.Sprintf("%s/feed/t/%s", baseURL, tok.SecretToken)
	}
	return fmt.Sprintf("%s/feed/%d", baseURL, channel.ID)
}

// audioURL returns the enclosure address for an artifact, token-prefixed
// when the channel uses token auth.
func audioURL(baseURL string, channel *models.Channel, audioPath string) string {
	if tok, ok := channel.Policy().(models.AuthToken); ok {
		return fmt.Sprintf("%s/audio/t/%s/%s", baseURL, tok.SecretToken, audioPath)
	}
	return fmt.Sprintf("%s/audio/%s", baseURL, audioPath)
}

// GenerateRSS renders the podcast feed for a channel. Only downloaded
// episodes belong in episodes; pending ones are filtered upstream.
func GenerateRSS(channel *models.Channel, episodes []models.Episode, r *http.Request) (string, error) {
	baseURL := getBaseURL(r)

	p := podcast.New(
		channel.Name,
		channel.URL,
		fmt.Sprintf("Podcast feed for YouTube channel: %s", channel.Name),
		&channel.CreatedAt, nil,
	)
	p.AddAuthor(channel.Name, "noreply@example.com")
	p.AddCategory("Technology", nil)
	p.AddSummary(fmt.Sprintf("Audio from YouTube channel: %s", channel.Name))
	p.AddAtomLink(feedURL(baseURL, channel))

	for i := range episodes {
		episode := &episodes[i]
		if !episode.Downloaded() {
			continue
		}

		description := episode.Title
		if episode.Description != nil && *episode.Description != "" {
			description = *episode.Description
			if len(description) > maxDescriptionLen {
				description = description[:maxDescriptionLen]
			}
		}

		item := podcast.Item{
			Title:       episode.Title,
			Description: description,
			Link:        fmt.Sprintf("https://www.youtube.com/watch?v=%s", episode.YoutubeVideoID),
			GUID:        episode.YoutubeVideoID,
		}
		if episode.PublishedAt != nil {
			item.PubDate = episode.PublishedAt
		} else {
			pub := episode.CreatedAt
			item.PubDate = &pub
		}

		var size int64
		if episode.AudioSizeBytes != nil {
			size = *episode.AudioSizeBytes
		}
		item.AddEnclosure(audioURL(baseURL, channel, *episode.AudioPath), podcast.MP3, size)

		if episode.DurationSeconds != nil {
			item.AddDuration(int64(*episode.DurationSeconds))
		}
		if episode.ThumbnailURL != nil {
			item.AddImage(*episode.ThumbnailURL)
		}

		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
