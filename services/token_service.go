package services

import (
	"errors"
	"fmt"
	"time"

	"econnect/config"
	"econnect/internal/status"

	jwt "github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = time.Hour

// TokenUser is the identity block embedded in a room credential.
type TokenUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Moderator bool   `json:"moderator"`
}

type TokenContext struct {
	User TokenUser `json:"user"`
}

// RoomClaims authorize one user to join one room until expiry.
type RoomClaims struct {
	Room    string       `json:"room"`
	Context TokenContext `json:"context"`
	jwt.RegisteredClaims
}

type downloadClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// IssueTokenRequest carries the inputs for minting a room credential.
type IssueTokenRequest struct {
	RoomName    string        `json:"room_name"`
	UserID      string        `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Email       string        `json:"email,omitempty"`
	AvatarURL   string        `json:"avatar_url,omitempty"`
	IsModerator bool          `json:"is_moderator"`
	ExpiresIn   time.Duration `json:"expires_in,omitempty"`
}

// TokenService issues and verifies signed, time-bounded credentials for
// joining real-time sessions, plus short-lived recording download links.
type TokenService struct {
	secret     []byte
	issuer     string
	audience   string
	defaultTTL time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.ConferenceDomain,
		defaultTTL: ttl,
	}
}

// IssueToken mints a bearer credential for joining req.RoomName.
func (s *TokenService) IssueToken(req *IssueTokenRequest) (string, error) {
	if req.RoomName == "" {
		return "", fmt.Errorf("%w: room name is required", status.ErrValidation)
	}
	if req.UserID == "" {
		return "", fmt.Errorf("%w: user id is required", status.ErrValidation)
	}

	ttl := req.ExpiresIn
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	claims := RoomClaims{
		Room: req.RoomName,
		Context: TokenContext{
			User: TokenUser{
				ID:        req.UserID,
				Name:      req.DisplayName,
				Email:     req.Email,
				Avatar:    req.AvatarURL,
				Moderator: req.IsModerator,
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   req.UserID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}

// Verify parses a room credential and returns its claims.
func (s *TokenService) Verify(tokenStr string) (*RoomClaims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &RoomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse room token: %w", err)
	}
	claims, ok := t.Claims.(*RoomClaims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid room token")
	}
	return claims, nil
}

// SignDownloadURL mints a short-lived token granting read access to one
// blob key.
func (s *TokenService) SignDownloadURL(key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: blob key is required", status.ErrValidation)
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	claims := downloadClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return signed, nil
}

// VerifyDownload returns the blob key a download token grants access to.
func (s *TokenService) VerifyDownload(tokenStr string) (string, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &downloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse download token: %w", err)
	}
	claims, ok := t.Claims.(*downloadClaims)
	if !ok || !t.Valid {
		return "", errors.New("invalid download token")
	}
	return claims.Key, nil
}
