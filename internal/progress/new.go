package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
)

type client struct {
	id            string
	transport     Transport
	meta          Meta
	device        DeviceClass
	connectedAt   time.Time
	lastHeartbeat time.Time
	alive         bool
	subscriptions map[string]struct{}
}

type snapshot struct {
	event    Event
	storedAt time.Time
}

// implNotifier owns every piece of shared notifier state. mu is held for the
// whole of each operation, including an emit's fan-out, so events for a run
// reach its subscribers in emission order.
type implNotifier struct {
	ctx     context.Context
	cfg     Config
	logger  logger.Logger
	metrics Metrics

	mu          sync.Mutex
	clients     map[string]*client
	subscribers map[string]map[string]struct{}
	snapshots   map[string]snapshot
	history     *eventRing

	now   func() time.Time
	newID func() string
}

// New creates a Notifier. metrics may be nil.
func New(cfg Config, log logger.Logger, metrics Metrics) Notifier {
	cfg = cfg.withDefaults()
	return &implNotifier{
		ctx:         context.Background(),
		cfg:         cfg,
		logger:      log.Named("progress"),
		metrics:     metrics,
		clients:     make(map[string]*client),
		subscribers: make(map[string]map[string]struct{}),
		snapshots:   make(map[string]snapshot),
		history:     newEventRing(cfg.HistorySize),
		now:         time.Now,
		newID: func() string {
			return "client_" + uuid.NewString()
		},
	}
}
