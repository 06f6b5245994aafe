package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tubecast/internal/models"
)

func readyEpisode(id int, videoID, uuid string) models.Episode {
	audioPath := uuid + ".mp3"
	size := int64(1024)
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Episode{
		ID:             id,
		ChannelID:      1,
		YoutubeVideoID: videoID,
		Title:          "Episode " + videoID,
		AudioUUID:      uuid,
		AudioPath:      &audioPath,
		AudioSizeBytes: &size,
		PublishedAt:    &published,
		CreatedAt:      published,
	}
}

func TestGenerateRSSPlainChannel(t *testing.T) {
	channel := &models.Channel{
		ID:        1,
		Name:      "Test Channel",
		URL:       "https://www.youtube.com/channel/UCtest",
		AuthType:  models.AuthTypeNone,
		CreatedAt: time.Now(),
	}
	episodes := []models.Episode{
		readyEpisode(1, "video1", "uuid-1"),
		readyEpisode(2, "video2", "uuid-2"),
	}

	req := httptest.NewRequest("GET", "http://example.com/feed/1", nil)
	rss, err := GenerateRSS(channel, episodes, req)
	assert.NoError(t, err)

	assert.Equal(t, 2, strings.Count(rss, "<enclosure"))
	assert.Contains(t, rss, "http://example.com/audio/uuid-1.mp3")
	assert.Contains(t, rss, "http://example.com/feed/1")
	assert.Contains(t, rss, "https://www.youtube.com/watch?v=video1")
}

func TestGenerateRSSTokenChannel(t *testing.T) {
	token := "sekrit"
	channel := &models.Channel{
		ID:          1,
		Name:        "Test Channel",
		URL:         "https://www.youtube.com/channel/UCtest",
		AuthType:    models.AuthTypeToken,
		SecretToken: &token,
		CreatedAt:   time.Now(),
	}
	episodes := []models.Episode{readyEpisode(1, "video1", "uuid-1")}

	req := httptest.NewRequest("GET", "http://example.com/feed/t/"+token, nil)
	rss, err := GenerateRSS(channel, episodes, req)
	assert.NoError(t, err)

	assert.Contains(t, rss, "http://example.com/feed/t/"+token)
	assert.Contains(t, rss, "http://example.com/audio/t/"+token+"/uuid-1.mp3")
	assert.NotContains(t, rss, "http://example.com/audio/uuid-1.mp3")
}

func TestGenerateRSSSkipsPendingEpisodes(t *testing.T) {
	channel := &models.Channel{
		ID:        1,
		Name:      "Test Channel",
		URL:       "https://www.youtube.com/channel/UCtest",
		AuthType:  models.AuthTypeNone,
		CreatedAt: time.Now(),
	}
	pending := models.Episode{
		ID:             3,
		ChannelID:      1,
		YoutubeVideoID: "video3",
		Title:          "Pending",
		AudioUUID:      "uuid-3",
		CreatedAt:      time.Now(),
	}
	episodes := []models.Episode{readyEpisode(1, "video1", "uuid-1"), pending}

	req := httptest.NewRequest("GET", "http://example.com/feed/1", nil)
	rss, err := GenerateRSS(channel, episodes, req)
	assert.NoError(t, err)

	assert.Equal(t, 1, strings.Count(rss, "<enclosure"))
	assert.NotContains(t, rss, "video3")
}

func TestGenerateRSSTruncatesDescription(t *testing.T) {
	channel := &models.Channel{
		ID:        1,
		Name:      "Test Channel",
		URL:       "https://www.youtube.com/channel/UCtest",
		AuthType:  models.AuthTypeNone,
		CreatedAt: time.Now(),
	}
	long := strings.Repeat("a", maxDescriptionLen+500)
	episode := readyEpisode(1, "video1", "uuid-1")
	episode.Description = &long

	req := httptest.NewRequest("GET", "http://example.com/feed/1", nil)
	rss, err := GenerateRSS(channel, []models.Episode{episode}, req)
	assert.NoError(t, err)

	assert.NotContains(t, rss, strings.Repeat("a", maxDescriptionLen+1))
	assert.Contains(t, rss, strings.Repeat("a", maxDescriptionLen))
}
