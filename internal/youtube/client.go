// Package youtube wraps yt-dlp as the remote video service: channel
// resolution, recent-video listing, metadata, and audio extraction.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	defaultYtdlpPath = "yt-dlp"
	defaultTimeout   = 10 * time.Minute

	audioFormat  = "mp3"
	audioBitrate = "192K"
)

// execCommandContext is swapped out in tests.
var execCommandContext = exec.CommandContext

var channelIDPattern = regexp.MustCompile(`^UC[\w-]{22}$`)

// Video is one entry from a channel's flat listing.
type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Metadata is the full per-video record used to build an episode.
type Metadata struct {
	Title           string
	Description     string
	DurationSeconds int
	PublishedAt     *time.Time
	ThumbnailURL    string
}

// Client shells out to yt-dlp.
type Client struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout bounds each invocation. Defaults to 10 minutes.
	Timeout time.Duration
}

func NewClient(path string) *Client {
	if path == "" {
		path = defaultYtdlpPath
	}
	return &Client{Path: path, Timeout: defaultTimeout}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := execCommandContext(cmdCtx, c.Path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("yt-dlp %s: %w", args[0], err)
	}
	return output, nil
}

// normalizeChannelInput accepts a full URL, a raw UC… channel id, an
// @handle, or a bare handle name, and returns something yt-dlp can open.
func normalizeChannelInput(input string) string {
	input = strings.TrimSpace(input)
	switch {
	case channelIDPattern.MatchString(input):
		return "https://www.youtube.com/channel/" + input
	case strings.HasPrefix(input, "@"):
		return "https://www.youtube.com/" + input
	case !strings.HasPrefix(input, "http"):
		return "https://www.youtube.com/@" + input
	default:
		return input
	}
}

// ResolveChannel turns a URL, handle, or raw id into the canonical channel
// id and display name.
func (c *Client) ResolveChannel(ctx context.Context, input string) (string, string, error) {
	url := normalizeChannelInput(input)

	output, err := c.run(ctx,
		"--print", "%(channel_id)s\n%(channel)s",
		"--playlist-items", "0",
		url,
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve channel %q: %w (output: %s)", input, err, output)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) < 2 {
		return "", "", fmt.Errorf("unexpected yt-dlp output for %q: %s", input, output)
	}
	channelID := strings.TrimSpace(lines[0])
	channelName := strings.TrimSpace(lines[1])
	if channelID == "" || channelID == "NA" || channelName == "" || channelName == "NA" {
		return "", "", fmt.Errorf("could not extract channel info from %q", input)
	}
	return channelID, channelName, nil
}

// ListRecentVideos fetches up to max entries from the channel's videos tab,
// in the order yt-dlp returns them (newest first).
func (c *Client) ListRecentVideos(ctx context.Context, channelID string, max int) ([]Video, error) {
	output, err := c.run(ctx,
		"--flat-playlist",
		"-j",
		"--playlist-end", fmt.Sprintf("%d", max),
		fmt.Sprintf("https://www.youtube.com/channel/%s/videos", channelID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for channel %s: %w (output: %s)", channelID, err, output)
	}

	// One JSON object per line.
	var videos []Video
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var v Video
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal video entry: %w", err)
		}
		if v.ID == "" {
			continue
		}
		if v.URL == "" {
			v.URL = "https://www.youtube.com/watch?v=" + v.ID
		}
		videos = append(videos, v)
		if len(videos) >= max {
			break
		}
	}
	return videos, nil
}

type videoJSON struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
	Thumbnail   string  `json:"thumbnail"`
}

func (v *videoJSON) metadata() *Metadata {
	m := &Metadata{
		Title:           v.Title,
		Description:     v.Description,
		DurationSeconds: int(v.Duration),
		ThumbnailURL:    v.Thumbnail,
	}
	if v.UploadDate != "" {
		if t, err := time.Parse("20060102", v.UploadDate); err == nil {
			m.PublishedAt = &t
		}
	}
	return m
}

// FetchMetadata retrieves the full metadata for one video.
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	output, err := c.run(ctx,
		"-J",
		"--skip-download",
		"https://www.youtube.com/watch?v="+videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w (output: %s)", videoID, err, output)
	}

	// yt-dlp occasionally prints warnings before the JSON document.
	jsonStart := strings.Index(string(output), "{")
	if jsonStart == -1 {
		return nil, fmt.Errorf("no JSON in yt-dlp output for %s", videoID)
	}
	var v videoJSON
	if err := json.Unmarshal(output[jsonStart:], &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", videoID, err)
	}
	if v.Title == "" {
		v.Title = "Untitled"
	}
	return v.metadata(), nil
}

// ExtractAudio downloads the video's audio track to destPath and returns
// the artifact size in bytes.
func (c *Client) ExtractAudio(ctx context.Context, videoID, destPath string) (int64, error) {
	output, err := c.run(ctx,
		"-x",
		"--audio-format", audioFormat,
		"--audio-quality", audioBitrate,
		"-o", destPath,
		"https://www.youtube.com/watch?v="+videoID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to extract audio for %s: %w (output: %s)", videoID, err, output)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, fmt.Errorf("extracted audio file missing for %s: %w", videoID, err)
	}
	return info.Size(), nil
}

// AudioExtension is the extension of extracted artifacts, without the dot.
const AudioExtension = audioFormat
