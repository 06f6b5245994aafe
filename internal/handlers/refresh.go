package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"tubecast/internal/db"
)

// RefreshAll triggers a refresh of every channel and waits for it.
func (h *Handlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RefreshAll(r.Context()); err != nil {
		log.Printf("Error refreshing all channels: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RefreshChannel triggers a refresh of one channel and waits for it.
func (h *Handlers) RefreshChannel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid channel ID")
		return
	}

	channel, err := db.GetChannelByID(id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Channel not found")
		return
	}
	if err != nil {
		log.Printf("Error getting channel %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.engine.RefreshChannel(r.Context(), channel); err != nil {
		log.Printf("Error refreshing channel %q: %v", channel.Name, err)
		writeError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
