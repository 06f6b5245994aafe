package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"tubecast/internal/db"
	"tubecast/internal/models"
)

type channelResponse struct {
	ID               int       `json:"id"`
	YoutubeChannelID string    `json:"youtube_channel_id"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	AuthType         string    `json:"auth_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func toChannelResponse(c *models.Channel) channelResponse {
	return channelResponse{
		ID:               c.ID,
		YoutubeChannelID: c.YoutubeChannelID,
		Name:             c.Name,
		URL:              c.URL,
		AuthType:         c.AuthType,
		CreatedAt:        c.CreatedAt,
	}
}

func (h *Handlers) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := db.ListChannels()
	if err != nil {
		log.Printf("Error listing channels: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]channelResponse, 0, len(channels))
	for i := range channels {
		out = append(out, toChannelResponse(&channels[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) AddChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	channelID, channelName, err := h.resolver.ResolveChannel(ctx, req.URL)
	if err != nil {
		log.Printf("Error resolving channel %q: %v", req.URL, err)
		writeError(w, http.StatusBadRequest, "Invalid or unsupported YouTube URL")
		return
	}

	if _, err := db.GetChannelByYoutubeID(channelID); err == nil {
		writeError(w, http.StatusConflict, "Channel already added")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		log.Printf("Error checking for existing channel: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	channel, err := db.CreateChannel(channelID, channelName, "https://www.youtube.com/channel/"+channelID)
	if errors.Is(err, db.ErrConflict) {
		writeError(w, http.StatusConflict, "Channel already added")
		return
	}
	if err != nil {
		log.Printf("Error creating channel: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Pull the initial batch of episodes before responding.
	if err := h.engine.RefreshChannel(r.Context(), channel); err != nil {
		log.Printf("Initial refresh failed for channel %q: %v", channel.Name, err)
	}

	writeJSON(w, http.StatusCreated, toChannelResponse(channel))
}

func (h *Handlers) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	// Remove audio artifacts first; the row delete cascades to episodes.
	paths, err := db.ListAudioPaths(id)
	if err != nil {
		log.Printf("Error listing audio paths for channel %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	for _, p := range paths {
		full := filepath.Join(h.audioStoragePath, filepath.Base(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing audio file %s: %v", full, err)
		}
	}

	err = db.DeleteChannel(id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Channel not found")
		return
	}
	if err != nil {
		log.Printf("Error deleting channel %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateChannelAuth switches a channel's auth policy. The generated token is
// returned when switching to token mode; it is not retrievable later.
func (h *Handlers) UpdateChannelAuth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	var req struct {
		AuthType string `json:"auth_type"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	channel, err := db.SetChannelAuth(id, req.AuthType, req.Username, req.Password)
	switch {
	case errors.Is(err, db.ErrInvalidAuthConfig):
		writeError(w, http.StatusBadRequest, "Invalid auth configuration for mode "+req.AuthType)
		return
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Channel not found")
		return
	case err != nil:
		log.Printf("Error updating auth for channel %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := map[string]string{"auth_type": channel.AuthType}
	if channel.SecretToken != nil {
		resp["token"] = *channel.SecretToken
	}
	writeJSON(w, http.StatusOK, resp)
}
