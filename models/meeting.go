package models

import (
	"time"
)

const (
	RoleModerator = "moderator"
	RoleViewer    = "viewer"
)

type Participant struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"` // moderator, viewer
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
}

type Meeting struct {
	ID           string        `json:"id"`
	EventID      string        `json:"event_id"`
	HostID       string        `json:"host_id"`
	RoomName     string        `json:"room_name"`
	Participants []Participant `json:"participants"`
	RecordingURL string        `json:"recording_url,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      *time.Time    `json:"ended_at,omitempty"`
}

// Participant returns the entry for userID, or nil when the user never joined.
// At most one entry exists per user id.
func (m *Meeting) Participant(userID string) *Participant {
	for i := range m.Participants {
		if m.Participants[i].UserID == userID {
			return &m.Participants[i]
		}
	}
	return nil
}

// Ended reports whether the host has closed the meeting.
func (m *Meeting) Ended() bool {
	return m.EndedAt != nil
}
