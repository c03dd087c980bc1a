package models

import (
	"time"
)

type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	CreatorID       string    `json:"creator_id"`
	Public          bool      `json:"public"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants"`
	RoomName        string    `json:"room_name"`
	PasscodeHash    string    `json:"-"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
}

// HasParticipant reports whether userID is on the event roster.
func (e *Event) HasParticipant(userID string) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Joinable reports whether the event's time window is open at t.
func (e *Event) Joinable(t time.Time) bool {
	return !t.Before(e.StartTime) && (e.EndTime.IsZero() || t.Before(e.EndTime))
}
