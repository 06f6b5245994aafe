package models

import "time"

// Auth mode tags as stored in the channels.auth_type column.
const (
	AuthTypeNone  = "none"
	AuthTypeBasic = "basic"
	AuthTypeToken = "token"
)

// Channel represents a tracked YouTube channel.
type Channel struct {
	ID               int       `db:"id"`
	YoutubeChannelID string    `db:"youtube_channel_id"`
	Name             string    `db:"name"`
	URL              string    `db:"url"`
	AuthType         string    `db:"auth_type"`
	AuthUsername     *string   `db:"auth_username"`
	PasswordHash     *string   `db:"password_hash"`
	SecretToken      *string   `db:"secret_token"`
	CreatedAt        time.Time `db:"created_at"`
}

// AuthPolicy is the channel's access rule. Exactly one of the three
// implementations is ever active for a channel.
type AuthPolicy interface {
	isAuthPolicy()
}

// AuthNone allows unauthenticated access.
type AuthNone struct{}

// AuthBasic requires HTTP Basic credentials.
type AuthBasic struct {
	Username     string
	PasswordHash string
}

// AuthToken requires the channel's secret token in the request path.
type AuthToken struct {
	SecretToken string
}

func (AuthNone) isAuthPolicy()  {}
func (AuthBasic) isAuthPolicy() {}
func (AuthToken) isAuthPolicy() {}

// Policy returns the channel's auth policy as a tagged variant. Rows with
// missing credential fields for their tag degrade to AuthNone rather than
// producing a half-configured policy.
func (c *Channel) Policy() AuthPolicy {
	switch c.AuthType {
	case AuthTypeBasic:
		if c.AuthUsername == nil || c.PasswordHash == nil {
			return AuthNone{}
		}
		return AuthBasic{Username: *c.AuthUsername, PasswordHash: *c.PasswordHash}
	case AuthTypeToken:
		if c.SecretToken == nil {
			return AuthNone{}
		}
		return AuthToken{SecretToken: *c.SecretToken}
	default:
		return AuthNone{}
	}
}
