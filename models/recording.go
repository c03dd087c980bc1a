package models

import (
	"time"
)

type Recording struct {
	ID        string     `json:"id"`
	MeetingID string     `json:"meeting_id"`
	EventID   string     `json:"event_id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Duration  int        `json:"duration"`  // seconds
	FileSize  int64      `json:"file_size"` // bytes
	BlobKey   string     `json:"blob_key"`
	URL       string     `json:"url"`
	Created   time.Time  `json:"created"`
}
