package services

import (
	"testing"
	"time"

	"econnect/config"
	"econnect/internal/status"

	"github.com/stretchr/testify/assert"
)

func testTokenService() *TokenService {
	return NewTokenService(&config.Config{
		JWTSecret:        "test-secret",
		JWTIssuer:        "econnect-test",
		ConferenceDomain: "meet.test.local",
		TokenTTL:         time.Hour,
	})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := testTokenService()

	token, err := svc.IssueToken(&IssueTokenRequest{
		RoomName:    "evt-abc123",
		UserID:      "user1",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		IsModerator: true,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "evt-abc123", claims.Room)
	assert.Equal(t, "user1", claims.Context.User.ID)
	assert.Equal(t, "Alice", claims.Context.User.Name)
	assert.True(t, claims.Context.User.Moderator)
	assert.Equal(t, "econnect-test", claims.Issuer)
	assert.Equal(t, "user1", claims.Subject)
}

func TestTokenService_IssueToken_Validation(t *testing.T) {
	svc := testTokenService()

	_, err := svc.IssueToken(&IssueTokenRequest{UserID: "user1"})
	assert.ErrorIs(t, err, status.ErrValidation)

	_, err = svc.IssueToken(&IssueTokenRequest{RoomName: "room"})
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	svc := testTokenService()
	other := NewTokenService(&config.Config{
		JWTSecret: "other-secret",
		JWTIssuer: "econnect-test",
		TokenTTL:  time.Hour,
	})

	token, err := svc.IssueToken(&IssueTokenRequest{RoomName: "room", UserID: "user1"})
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := testTokenService()

	token, err := svc.IssueToken(&IssueTokenRequest{
		RoomName:  "room",
		UserID:    "user1",
		ExpiresIn: -time.Minute,
	})
	assert.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_DownloadToken(t *testing.T) {
	svc := testTokenService()

	token, err := svc.SignDownloadURL("recordings/e1/m1/file.mp4", 0)
	assert.NoError(t, err)

	key, err := svc.VerifyDownload(token)
	assert.NoError(t, err)
	assert.Equal(t, "recordings/e1/m1/file.mp4", key)
}

func TestTokenService_DownloadToken_EmptyKey(t *testing.T) {
	svc := testTokenService()

	_, err := svc.SignDownloadURL("", time.Minute)
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestTokenService_DownloadToken_NotARoomToken(t *testing.T) {
	svc := testTokenService()

	roomToken, err := svc.IssueToken(&IssueTokenRequest{RoomName: "room", UserID: "user1"})
	assert.NoError(t, err)

	key, err := svc.VerifyDownload(roomToken)
	if err == nil {
		// A room token carries no key claim, so it must not grant access.
		assert.Empty(t, key)
	}
}
