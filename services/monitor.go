package services

import "time"

// Monitor is the metrics sink the services report into. A nil Monitor
// disables reporting.
type Monitor interface {
	TrackSessionOperation(operation, status string)
	TrackConferenceEvent(event, room string)
	TrackRecordingDuration(eventID string, duration time.Duration)
}

func trackOp(m Monitor, operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.TrackSessionOperation(operation, result)
}
