package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"tubecast/internal/config"
	"tubecast/internal/db"
	"tubecast/internal/handlers"
	"tubecast/internal/middleware"
	"tubecast/internal/refresh"
	"tubecast/internal/youtube"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()
	cfg := config.Load()

	if err := os.MkdirAll(cfg.AudioDir, 0755); err != nil {
		log.Fatalf("Failed to create audio directory: %v", err)
	}

	ytClient := youtube.NewClient(cfg.YtdlpPath)
	engine := refresh.NewEngine(ytClient, cfg.AudioDir, cfg.MaxVideos)
	h := handlers.New(engine, ytClient, cfg.AudioDir)

	// Background scheduler; errors inside the engine are logged, never fatal.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every "+cfg.CheckInterval.String(), func() {
		log.Println("Starting scheduled refresh of all channels")
		if err := engine.RefreshAll(context.Background()); err != nil {
			log.Printf("Scheduled refresh failed: %v", err)
		}
		log.Println("Finished scheduled refresh")
	})
	if err != nil {
		log.Fatalf("Could not schedule refresh: %v", err)
	}
	scheduler.Start()
	log.Printf("Scheduler started, refreshing every %s", cfg.CheckInterval)

	rateLimiter := middleware.NewRateLimiterMiddleware(rate.Limit(2), 5)
	admin := func(next http.HandlerFunc) http.Handler {
		return rateLimiter.Middleware(middleware.AdminAuth(next))
	}

	r := mux.NewRouter()

	// Feed and audio paths carry their own per-channel auth.
	r.HandleFunc("/feed/t/{token}", h.GetFeedByToken).Methods("GET")
	r.HandleFunc("/feed/{id}", h.GetFeed).Methods("GET")
	r.HandleFunc("/audio/t/{token}/{filename}", h.ServeAudioByToken).Methods("GET")
	r.HandleFunc("/audio/{filename}", h.ServeAudio).Methods("GET")

	// Administrative surface, shared credential.
	r.Handle("/channels", admin(h.ListChannels)).Methods("GET")
	r.Handle("/channels", admin(h.AddChannel)).Methods("POST")
	r.Handle("/channels/{id}", admin(h.DeleteChannel)).Methods("DELETE")
	r.Handle("/channels/{id}/auth", admin(h.UpdateChannelAuth)).Methods("PUT")
	r.Handle("/refresh", admin(h.RefreshAll)).Methods("POST")
	r.Handle("/refresh/{id}", admin(h.RefreshChannel)).Methods("POST")

	log.Printf("Starting server on :%s (commit: %s)", cfg.Port, CommitSHA)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
