package models

import (
	"time"
)

type VirtualTable struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	Participants []string  `json:"participants"`
	Created      time.Time `json:"created"`
}

// HasParticipant reports whether userID currently sits at the table.
func (t *VirtualTable) HasParticipant(userID string) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Full reports whether the table has reached capacity. The check is advisory:
// concurrent joiners can both pass it before either write lands.
func (t *VirtualTable) Full() bool {
	return len(t.Participants) >= t.Capacity
}

// RemoveParticipant drops userID from the participant set, if present.
func (t *VirtualTable) RemoveParticipant(userID string) {
	out := t.Participants[:0]
	for _, id := range t.Participants {
		if id != userID {
			out = append(out, id)
		}
	}
	t.Participants = out
}
