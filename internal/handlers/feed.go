package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"tubecast/internal/db"
	"tubecast/internal/feed"
	"tubecast/internal/models"
	"tubecast/internal/vault"
)

// authorizeChannel applies the channel's auth policy to a local-id request.
// It returns false after writing the rejection. Token-policy channels have
// no local-id access at all; their feed lives on the token path.
func authorizeChannel(w http.ResponseWriter, r *http.Request, channel *models.Channel) bool {
	switch policy := channel.Policy().(type) {
	case models.AuthNone:
		return true
	case models.AuthBasic:
		username, password, ok := r.BasicAuth()
		if !ok || username != policy.Username || !vault.VerifyPassword(password, policy.PasswordHash) {
			w.Header().Set("WWW-Authenticate", `Basic realm="podcast"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return false
		}
		return true
	case models.AuthToken:
		http.Error(w, "This channel is accessible via its token URL only", http.StatusForbidden)
		return false
	default:
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
}

func (h *Handlers) serveFeed(w http.ResponseWriter, r *http.Request, channel *models.Channel) {
	episodes, err := db.ListReadyEpisodes(channel.ID)
	if err != nil {
		log.Printf("Error getting episodes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateRSS(channel, episodes, r)
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}

// GetFeed serves a channel's feed by local id, subject to its auth policy.
func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := db.GetChannelByID(id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error getting channel %d: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !authorizeChannel(w, r, channel) {
		return
	}

	h.serveFeed(w, r, channel)
}

// GetFeedByToken serves a channel's feed via its secret token, bypassing
// the local-id policy entirely.
func (h *Handlers) GetFeedByToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	token := vars["token"]

	channel, err := db.GetChannelByToken(token)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error getting channel by token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.serveFeed(w, r, channel)
}
