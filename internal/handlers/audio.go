package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"tubecast/internal/db"
)

// ServeAudio streams an artifact on the plain path. The owning channel is
// resolved from the filename and its policy applied; token-policy channels
// only serve audio on the token path.
func (h *Handlers) ServeAudio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := filepath.Base(vars["filename"])

	episode, err := db.GetEpisodeByAudioPath(filename)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error looking up audio %s: %v", filename, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	channel, err := db.GetChannelByID(episode.ChannelID)
	if err != nil {
		log.Printf("Error getting channel %d: %v", episode.ChannelID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !authorizeChannel(w, r, channel) {
		return
	}

	http.ServeFile(w, r, filepath.Join(h.audioStoragePath, filename))
}

// ServeAudioByToken streams an artifact on the token path. The artifact
// must belong to the channel the token authorizes, so a valid token for one
// channel cannot reach another channel's files by guessing names.
func (h *Handlers) ServeAudioByToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	token := vars["token"]
	filename := filepath.Base(vars["filename"])

	channel, err := db.GetChannelByToken(token)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error getting channel by token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	episode, err := db.GetEpisodeByAudioPath(filename)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error looking up audio %s: %v", filename, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if episode.ChannelID != channel.ID {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.audioStoragePath, filename))
}
