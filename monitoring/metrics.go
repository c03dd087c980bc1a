package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	roomPresence = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "room_presence_total",
			Help: "Current number of tracked users per meeting room",
		},
		[]string{"room"},
	)

	tableOccupancy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "table_occupancy_total",
			Help: "Current number of seated users per virtual table",
		},
		[]string{"table_id"},
	)

	conferenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_events_total",
			Help: "Conference engine events by type",
		},
		[]string{"event", "room"},
	)

	sessionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_operations_total",
			Help: "Session lifecycle operations",
		},
		[]string{"operation", "status"},
	)

	recordingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recording_duration_seconds",
			Help:    "Duration of finished recordings",
			Buckets: prometheus.ExponentialBuckets(60, 2, 10),
		},
		[]string{"event_id"},
	)
)

type Monitor struct {
	redis    *redis.Client
	interval time.Duration
}

// NewMonitor starts the presence collector ticking at interval. A
// non-positive interval falls back to 30s.
func NewMonitor(redisClient *redis.Client, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	monitor := &Monitor{redis: redisClient, interval: interval}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for range ticker.C {
		m.collectPresenceMetrics(context.Background())
	}
}

func (m *Monitor) collectPresenceMetrics(ctx context.Context) {
	roomKeys, _ := m.redis.Keys(ctx, "meeting:presence:*").Result()
	for _, key := range roomKeys {
		room := strings.TrimPrefix(key, "meeting:presence:")
		count, _ := m.redis.SCard(ctx, key).Result()
		roomPresence.WithLabelValues(room).Set(float64(count))
	}

	tableKeys, _ := m.redis.Keys(ctx, "table:presence:*").Result()
	for _, key := range tableKeys {
		tableID := strings.TrimPrefix(key, "table:presence:")
		count, _ := m.redis.SCard(ctx, key).Result()
		tableOccupancy.WithLabelValues(tableID).Set(float64(count))
	}
}

// TrackConferenceEvent counts one engine event.
func (m *Monitor) TrackConferenceEvent(event, room string) {
	conferenceEvents.WithLabelValues(event, room).Inc()
}

// TrackSessionOperation counts one lifecycle operation.
func (m *Monitor) TrackSessionOperation(operation, status string) {
	sessionOperations.WithLabelValues(operation, status).Inc()
}

// TrackRecordingDuration observes a finished recording's length.
func (m *Monitor) TrackRecordingDuration(eventID string, duration time.Duration) {
	recordingDuration.WithLabelValues(eventID).Observe(duration.Seconds())
}
