package jitsi

import (
	"context"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Config holds the settings for the Jitsi conference bridge.
type Config struct {
	// Domain of the conference deployment, used as the token audience.
	Domain string

	// JWTSecret verifies room credentials issued by the token service.
	JWTSecret string

	// PubNub keys for the command/event bridge channels.
	PublishKey   string
	SubscribeKey string
	SecretKey    string
}

// TokenUser mirrors the user block embedded in a room credential.
type TokenUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Moderator bool   `json:"moderator"`
}

type tokenContext struct {
	User TokenUser `json:"user"`
}

// RoomClaims is the credential payload for joining a specific room.
type RoomClaims struct {
	Room    string       `json:"room"`
	Context tokenContext `json:"context"`
	jwt.RegisteredClaims
}

// RoomMessage is the wire format on a room's bridge channel. Commands flow
// toward the conference engine, events flow back.
type RoomMessage struct {
	Type        string `json:"type"` // "event" or "command"
	Event       string `json:"event,omitempty"`
	Command     string `json:"command,omitempty"`
	Room        string `json:"room"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	On          bool   `json:"on,omitempty"`
	Args        []any  `json:"args,omitempty"`
}

const (
	MessageTypeEvent   = "event"
	MessageTypeCommand = "command"
)

// New validates the config and opens a bridge client.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("jitsi: nil config")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jitsi: JWT secret is required")
	}
	return newClient(ctx, cfg)
}

// VerifyToken checks a room credential's signature and expiry and returns
// its claims.
func (c *Client) VerifyToken(tokenStr string) (*RoomClaims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &RoomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("jitsi: parse token: %w", err)
	}
	claims, ok := t.Claims.(*RoomClaims)
	if !ok || !t.Valid {
		return nil, errors.New("jitsi: invalid token")
	}
	if claims.Room == "" {
		return nil, errors.New("jitsi: token carries no room")
	}
	return claims, nil
}
