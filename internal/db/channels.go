package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"tubecast/internal/models"
	"tubecast/internal/vault"
)

// CreateChannel registers a channel. Returns ErrConflict if the YouTube
// channel is already tracked.
func CreateChannel(youtubeChannelID, name, url string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (youtube_channel_id, name, url)
		VALUES ($1, $2, $3)
		RETURNING *
	`
	channel := &models.Channel{}
	err := DB.Get(channel, query, youtubeChannelID, name, url)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		log.Printf("Error creating channel %s: %v", youtubeChannelID, err)
		return nil, err
	}
	return channel, nil
}

func GetChannelByID(id int) (*models.Channel, error) {
	channel := &models.Channel{}
	err := DB.Get(channel, "SELECT * FROM channels WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return channel, err
}

func GetChannelByYoutubeID(youtubeChannelID string) (*models.Channel, error) {
	channel := &models.Channel{}
	err := DB.Get(channel, "SELECT * FROM channels WHERE youtube_channel_id = $1", youtubeChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return channel, err
}

// GetChannelByToken resolves a channel from its current secret token.
func GetChannelByToken(token string) (*models.Channel, error) {
	channel := &models.Channel{}
	err := DB.Get(channel, "SELECT * FROM channels WHERE secret_token = $1", token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return channel, err
}

// ListChannels returns all channels, most recently registered first.
func ListChannels() ([]models.Channel, error) {
	var channels []models.Channel
	err := DB.Select(&channels, "SELECT * FROM channels ORDER BY created_at DESC")
	if err != nil {
		log.Printf("Error listing channels: %v", err)
		return nil, err
	}
	return channels, nil
}

// DeleteChannel removes a channel; its episodes go with it via the foreign
// key cascade. Audio artifacts on disk are the caller's responsibility.
func DeleteChannel(id int) error {
	res, err := DB.Exec("DELETE FROM channels WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting channel %d: %v", id, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetChannelAuth switches a channel's auth policy. The previous mode's
// credential columns are nulled in the same UPDATE, so no stale credentials
// survive a policy change. When switching to token mode a fresh token is
// generated and returned; switching away and back invalidates old links.
func SetChannelAuth(id int, authType, username, password string) (*models.Channel, error) {
	var authUsername, passwordHash, secretToken *string

	switch authType {
	case models.AuthTypeNone:
	case models.AuthTypeBasic:
		if username == "" || password == "" {
			return nil, ErrInvalidAuthConfig
		}
		hash, err := vault.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		authUsername = &username
		passwordHash = &hash
	case models.AuthTypeToken:
		token, err := vault.NewToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		secretToken = &token
	default:
		return nil, ErrInvalidAuthConfig
	}

	query := `
		UPDATE channels
		SET auth_type = $1, auth_username = $2, password_hash = $3, secret_token = $4
		WHERE id = $5
		RETURNING *
	`
	channel := &models.Channel{}
	err := DB.Get(channel, query, authType, authUsername, passwordHash, secretToken, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("Error updating auth for channel %d: %v", id, err)
		return nil, err
	}
	return channel, nil
}
