package conference

import (
	"context"
)

// EngineProvider represents different conference engine types
type EngineProvider string

const (
	EngineJitsi EngineProvider = "jitsi"
)

// Command is an imperative instruction executed against a live session.
type Command string

const (
	CommandToggleAudio    Command = "toggleAudio"
	CommandToggleVideo    Command = "toggleVideo"
	CommandMuteEveryone   Command = "muteEveryone"
	CommandHangUp         Command = "hangup"
	CommandStartRecording Command = "startRecording"
	CommandStopRecording  Command = "stopRecording"
)

// Event names match the conference engine's own taxonomy.
type Event string

const (
	EventParticipantJoined      Event = "participantJoined"
	EventParticipantLeft        Event = "participantLeft"
	EventConferenceJoined       Event = "videoConferenceJoined"
	EventConferenceLeft         Event = "videoConferenceLeft"
	EventRecordingStatusChanged Event = "recordingStatusChanged"
)

// EventPayload carries one conference event to subscribed handlers.
type EventPayload struct {
	Event       Event  `json:"event"`
	RoomName    string `json:"room_name"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	// On is meaningful for recordingStatusChanged only.
	On bool `json:"on,omitempty"`
}

// Handler consumes a single conference event.
type Handler func(EventPayload)

// ConfigOverrides are the engine config keys the embedding layer recognizes.
type ConfigOverrides struct {
	PrejoinPageEnabled  bool `json:"prejoinPageEnabled"`
	StartWithAudioMuted bool `json:"startWithAudioMuted"`
	StartWithVideoMuted bool `json:"startWithVideoMuted"`
	DisableDeepLinking  bool `json:"disableDeepLinking"`
}

// InterfaceOverrides are the engine interface keys the embedding layer
// recognizes.
type InterfaceOverrides struct {
	ToolbarButtons     []string `json:"TOOLBAR_BUTTONS"`
	ShowJitsiWatermark bool     `json:"SHOW_JITSI_WATERMARK"`
}

var baseToolbarButtons = []string{
	"microphone", "camera", "desktop", "fullscreen",
	"hangup", "chat", "raisehand", "tileview", "settings",
}

var hostToolbarButtons = []string{
	"recording", "livestreaming", "mute-everyone", "security",
}

// DefaultConfigOverrides returns the config for a session: attendees start
// muted, hosts do not.
func DefaultConfigOverrides(isHost bool) *ConfigOverrides {
	return &ConfigOverrides{
		PrejoinPageEnabled:  false,
		StartWithAudioMuted: !isHost,
		StartWithVideoMuted: !isHost,
		DisableDeepLinking:  true,
	}
}

// DefaultInterfaceOverrides returns the toolbar set for a session. Host
// sessions expose the moderation affordances, attendee sessions omit them.
func DefaultInterfaceOverrides(isHost bool) *InterfaceOverrides {
	buttons := make([]string, 0, len(baseToolbarButtons)+len(hostToolbarButtons))
	buttons = append(buttons, baseToolbarButtons...)
	if isHost {
		buttons = append(buttons, hostToolbarButtons...)
	}
	return &InterfaceOverrides{
		ToolbarButtons:     buttons,
		ShowJitsiWatermark: false,
	}
}

// OpenOptions configures a session join.
type OpenOptions struct {
	RoomName   string
	Credential string
	IsHost     bool

	// Config and Interface default per the host flag when nil.
	Config    *ConfigOverrides
	Interface *InterfaceOverrides
}

// Session is a live handle into a room. Every listener registered via On
// must be released (Subscription.Close or Dispose) before the handle is
// discarded; Dispose is idempotent.
type Session interface {
	RoomName() string
	IsHost() bool
	Overrides() (*ConfigOverrides, *InterfaceOverrides)

	Execute(ctx context.Context, cmd Command, args ...any) error
	On(event Event, fn Handler) *Subscription

	Dispose()
	Disposed() bool
}

// EngineInterface defines the common interface for all conference engine
// providers.
type EngineInterface interface {
	// GetProvider returns the engine provider type
	GetProvider() EngineProvider

	// Open joins a room and returns the live session handle
	Open(ctx context.Context, opts *OpenOptions) (Session, error)

	// Close gracefully closes any connections
	Close(ctx context.Context) error
}

// EngineFactory creates engine instances based on provider type
type EngineFactory interface {
	CreateEngine(ctx context.Context, provider EngineProvider, config interface{}) (EngineInterface, error)
	GetSupportedProviders() []EngineProvider
}
