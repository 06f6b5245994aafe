package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"tubecast/internal/refresh"
)

// ChannelResolver turns a user-supplied URL, handle, or raw id into a
// canonical channel id and display name. Implemented by youtube.Client, and
// can be mocked for testing.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, input string) (string, string, error)
}

type Handlers struct {
	engine           *refresh.Engine
	resolver         ChannelResolver
	audioStoragePath string
}

func New(engine *refresh.Engine, resolver ChannelResolver, audioStoragePath string) *Handlers {
	return &Handlers{
		engine:           engine,
		resolver:         resolver,
		audioStoragePath: audioStoragePath,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
