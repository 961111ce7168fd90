package progress

import (
	"encoding/json"
	"time"
)

// EventKind names a server→client event. The values are part of the wire
// protocol and must not change.
type EventKind string

// Pipeline progress events.
const (
	EventVideoDownloadStart        EventKind = "video_download_start"
	EventVideoDownloadProgress     EventKind = "video_download_progress"
	EventVideoDownloadComplete     EventKind = "video_download_complete"
	EventAudioExtractionStart      EventKind = "audio_extraction_start"
	EventAudioExtractionComplete   EventKind = "audio_extraction_complete"
	EventTranscriptionStart        EventKind = "transcription_start"
	EventTranscriptionProgress     EventKind = "transcription_progress"
	EventTranscriptionComplete     EventKind = "transcription_complete"
	EventTextOptimizationStart     EventKind = "text_optimization_start"
	EventTextOptimizationComplete  EventKind = "text_optimization_complete"
	EventSummaryGenerationStart    EventKind = "summary_generation_start"
	EventSummaryGenerationComplete EventKind = "summary_generation_complete"
	EventTranslationStart          EventKind = "translation_start"
	EventTranslationComplete       EventKind = "translation_complete"
	EventTaskComplete              EventKind = "task_complete"
	EventTaskError                 EventKind = "task_error"
)

// Control events.
const (
	EventConnected       EventKind = "connected"
	EventSubscribed      EventKind = "subscribed"
	EventUnsubscribed    EventKind = "unsubscribed"
	EventPong            EventKind = "pong"
	EventHistory         EventKind = "history"
	EventProgressRestore EventKind = "progress_restore"
)

// ProgressEvents lists the pipeline event vocabulary in pipeline order.
var ProgressEvents = []EventKind{
	EventVideoDownloadStart,
	EventVideoDownloadProgress,
	EventVideoDownloadComplete,
	EventAudioExtractionStart,
	EventAudioExtractionComplete,
	EventTranscriptionStart,
	EventTranscriptionProgress,
	EventTranscriptionComplete,
	EventTextOptimizationStart,
	EventTextOptimizationComplete,
	EventSummaryGenerationStart,
	EventSummaryGenerationComplete,
	EventTranslationStart,
	EventTranslationComplete,
	EventTaskComplete,
	EventTaskError,
}

// Event is one server→client message. Progress events carry RunID; control
// and broadcast events leave it empty. Timestamp is unix milliseconds.
type Event struct {
	RunID     string    `json:"runId,omitempty"`
	Kind      EventKind `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// Client→server message kinds.
const (
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
	MessagePing        = "ping"
	MessageGetHistory  = "get_history"
)

// ClientMessage is the envelope every client→server frame is decoded into.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// runPayload accepts both runId and the older taskId spelling.
type runPayload struct {
	RunID  string `json:"runId"`
	TaskID string `json:"taskId"`
}

func (p runPayload) id() string {
	if p.RunID != "" {
		return p.RunID
	}
	return p.TaskID
}

// DeviceClass is the coarse client classification derived from the user agent.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceDesktop DeviceClass = "desktop"
)

// Meta describes the connecting peer.
type Meta struct {
	RemoteAddr string
	UserAgent  string
}

// ClientInfo is a read-only view of one connection.
type ClientInfo struct {
	ID              string      `json:"id"`
	RemoteAddr      string      `json:"remoteAddr"`
	UserAgent       string      `json:"userAgent"`
	Device          DeviceClass `json:"device"`
	ConnectedAt     time.Time   `json:"connectedAt"`
	LastHeartbeatAt time.Time   `json:"lastHeartbeatAt"`
	Subscriptions   []string    `json:"subscriptions"`
}

// Stats summarises the notifier's current state.
type Stats struct {
	TotalConnections   int `json:"totalConnections"`
	MobileConnections  int `json:"mobileConnections"`
	DesktopConnections int `json:"desktopConnections"`
	ActiveRuns         int `json:"activeRuns"`
	HistorySize        int `json:"historySize"`
}

// Config bounds the notifier's caches and connections.
type Config struct {
	HistorySize       int
	ReplayLimit       int
	SnapshotTTL       time.Duration
	MaxConnections    int
	HeartbeatInterval time.Duration
	SendBuffer        int
}

func (c Config) withDefaults() Config {
	if c.HistorySize <= 0 {
		c.HistorySize = 1000
	}
	if c.ReplayLimit <= 0 {
		c.ReplayLimit = 50
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = time.Hour
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 100
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	return c
}
