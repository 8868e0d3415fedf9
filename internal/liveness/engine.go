package liveness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gridwatch/gridwatch-core/internal/auth"
	"github.com/gridwatch/gridwatch-core/internal/device"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/logging"
	"github.com/gridwatch/gridwatch-core/internal/reading"
)

// Event names published through the Notifier. Clients subscribe to
// these over the WebSocket hub and MQTT.
const (
	// EventDeviceUpdated is sent to a device's owner after each heartbeat.
	EventDeviceUpdated = "ext_device_updated"

	// EventDataUpdated is broadcast when a user's grid state changes.
	EventDataUpdated = "ext_data_updated"
)

// DefaultPingTimeout is the staleness threshold: a device heard from
// strictly less than this long ago counts as live.
const DefaultPingTimeout = 120 * time.Second

// Notifier delivers state change events to connected clients.
//
// Delivery is fire-and-forget: implementations must never block the
// caller and must swallow their own failures. Events are not
// transactional with store writes.
type Notifier interface {
	// NotifyUser sends an event to clients authenticated as the given user.
	NotifyUser(userID, event string)

	// Broadcast sends an event to all subscribed clients.
	Broadcast(event string)
}

// MetricsWriter records time-series points for observability. All
// methods are non-blocking.
type MetricsWriter interface {
	// WriteGridState records a grid power transition for a user.
	WriteGridState(userID string, gridState bool, at time.Time)

	// WriteDeviceUptime records a device's reported uptime counter.
	WriteDeviceUptime(mac, userID string, uptime int64, at time.Time)
}

// Ping is one heartbeat payload from an edge reporter device.
type Ping struct {
	MACAddress string
	FWVersion  string
	FSVersion  string
	Uptime     int64
}

// DeviceView is one row of the device list: the device record joined
// with its owner and the owner's current grid state.
type DeviceView struct {
	MACAddress string    `json:"macAddress"`
	FWVersion  string    `json:"fwVersion"`
	FSVersion  string    `json:"fsVersion"`
	Uptime     int64     `json:"uptime"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserID     string    `json:"userId,omitempty"`

	// GridState is the owner's most recent reading; nil when the
	// device is unowned or the owner has no readings yet.
	GridState *bool `json:"gridState"`
}

// EngineConfig carries the engine's collaborators. Devices, Readings,
// Users and Logger are required; the rest are optional.
type EngineConfig struct {
	Devices  device.Store
	Readings reading.Store
	Users    auth.UserRepository
	Notifier Notifier
	Metrics  MetricsWriter
	Logger   *logging.Logger

	// PingTimeout overrides DefaultPingTimeout when positive.
	PingTimeout time.Duration

	// Now overrides the wall clock, for tests.
	Now func() time.Time
}

// Engine decides grid state transitions from device heartbeats.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Evaluations are
//     serialised per user so heartbeats and sweeps never interleave
//     their read-then-append sequence for the same user.
type Engine struct {
	devices     device.Store
	readings    reading.Store
	users       auth.UserRepository
	notifier    Notifier
	metrics     MetricsWriter
	logger      *logging.Logger
	pingTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewEngine creates a liveness engine from its collaborators.
//
// Parameters:
//   - cfg: Collaborators and tuning; see EngineConfig
//
// Returns:
//   - *Engine: Engine ready for use
func NewEngine(cfg EngineConfig) *Engine {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Engine{
		devices:     cfg.Devices,
		readings:    cfg.Readings,
		users:       cfg.Users,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		logger:      logger.With("component", "liveness"),
		pingTimeout: timeout,
		now:         now,
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// ProcessPing ingests one heartbeat from an edge reporter device.
//
// The reporting user is resolved by username. Unknown or inactive
// users reject the heartbeat with no writes and no notifications. On
// success the device record is created or refreshed, the owner is told
// the device changed, and the user's grid state is re-evaluated with
// the device treated as live at this instant.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - ping: Heartbeat payload
//   - username: Username from the reporter's token subject
//
// Returns:
//   - error: auth.ErrUserNotFound for unknown or inactive reporters,
//     otherwise a storage error; nil on success
func (e *Engine) ProcessPing(ctx context.Context, ping Ping, username string) error {
	if ping.MACAddress == "" {
		return fmt.Errorf("mac address is required")
	}

	user, err := e.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			e.logger.Warn("heartbeat from unknown reporter, dropped",
				"username", username,
				"mac", ping.MACAddress,
			)
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("resolving reporter: %w", err)
	}
	if !user.IsActive {
		e.logger.Warn("heartbeat from inactive reporter, dropped",
			"username", username,
			"mac", ping.MACAddress,
		)
		return auth.ErrUserNotFound
	}

	now := e.now().UTC()

	record := &device.Device{
		MACAddress: ping.MACAddress,
		FWVersion:  ping.FWVersion,
		FSVersion:  ping.FSVersion,
		Uptime:     ping.Uptime,
		UpdatedAt:  now,
	}

	// Owner is assigned on first sight only; the store's upsert keeps
	// the existing owner when the incoming record carries none.
	_, err = e.devices.GetByMAC(ctx, ping.MACAddress)
	if errors.Is(err, device.ErrDeviceNotFound) {
		record.UserID = user.ID
	} else if err != nil {
		return fmt.Errorf("looking up device: %w", err)
	}

	if err := e.devices.Upsert(ctx, record); err != nil {
		return fmt.Errorf("storing heartbeat: %w", err)
	}

	e.logger.Debug("heartbeat stored",
		"mac", ping.MACAddress,
		"user_id", user.ID,
		"uptime", ping.Uptime,
	)

	if e.notifier != nil {
		e.notifier.NotifyUser(user.ID, EventDeviceUpdated)
	}
	if e.metrics != nil {
		e.metrics.WriteDeviceUptime(ping.MACAddress, user.ID, ping.Uptime, now)
	}

	// The device that just pinged is live at this instant, so the
	// evaluation uses active=true without re-checking the threshold.
	return e.Evaluate(ctx, user.ID, true, now)
}

// Evaluate decides whether a user's grid state has changed and, if so,
// persists and announces the transition.
//
// Only transitions are recorded: active=true with a latest reading of
// true is a no-op, as is active=false with a latest reading that is
// false or absent. The reading is persisted before anything is
// announced, and notification failures never reach the caller.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: User whose grid state is evaluated
//   - active: Whether any of the user's devices is currently live
//   - now: Evaluation instant, recorded on any appended reading
//
// Returns:
//   - error: nil on success or no-op, otherwise a storage error
func (e *Engine) Evaluate(ctx context.Context, userID string, active bool, now time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	last, err := e.readings.MostRecent(ctx, userID)
	if err != nil && !errors.Is(err, reading.ErrNoReadings) {
		return fmt.Errorf("querying latest reading: %w", err)
	}

	// Absent history counts as off, so a first heartbeat records the
	// initial "on" transition.
	lastState := last != nil && last.GridState
	if active == lastState {
		return nil
	}

	if _, err := e.readings.Append(ctx, userID, active, now); err != nil {
		return fmt.Errorf("recording grid state: %w", err)
	}

	e.logger.Info("grid state changed",
		"user_id", userID,
		"grid_state", active,
	)

	if e.notifier != nil {
		e.notifier.Broadcast(EventDataUpdated)
	}
	if e.metrics != nil {
		e.metrics.WriteGridState(userID, active, now)
	}

	return nil
}

// Sweep re-evaluates grid state for every user that owns devices.
//
// A user is live when any of their devices was heard from strictly
// less than the ping timeout ago. Devices without a resolvable owner
// are skipped with a warning. Each owning user is evaluated exactly
// once per sweep.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - now: Sweep instant used for staleness comparison
//
// Returns:
//   - error: nil on success, otherwise the device listing error; per
//     user evaluation errors are logged and do not stop the sweep
func (e *Engine) Sweep(ctx context.Context, now time.Time) error {
	devices, err := e.devices.ListAll(ctx, true)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	liveByUser := make(map[string]bool)
	for _, d := range devices {
		if d.UserID == "" || d.OwnerUsername == "" {
			e.logger.Warn("device has no resolvable owner, skipped",
				"mac", d.MACAddress,
			)
			continue
		}

		fresh := now.Sub(d.UpdatedAt.UTC()) < e.pingTimeout
		liveByUser[d.UserID] = liveByUser[d.UserID] || fresh
	}

	for userID, active := range liveByUser {
		if err := e.Evaluate(ctx, userID, active, now); err != nil {
			e.logger.Error("sweep evaluation failed",
				"user_id", userID,
				"error", err,
			)
		}
	}

	e.logger.Debug("sweep complete",
		"devices", len(devices),
		"users", len(liveByUser),
	)

	return nil
}

// ListDevices returns the device list view: every device joined with
// its owner's current grid state. The join is computed per call.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []DeviceView: One view per device, ordered by hardware address
//   - error: nil on success, otherwise a storage error
func (e *Engine) ListDevices(ctx context.Context) ([]DeviceView, error) {
	devices, err := e.devices.ListAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	// Cache per-owner lookups; several devices often share one owner.
	states := make(map[string]*bool)

	views := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		view := DeviceView{
			MACAddress: d.MACAddress,
			FWVersion:  d.FWVersion,
			FSVersion:  d.FSVersion,
			Uptime:     d.Uptime,
			UpdatedAt:  d.UpdatedAt,
			UserID:     d.UserID,
		}

		if d.UserID != "" {
			state, ok := states[d.UserID]
			if !ok {
				last, err := e.readings.MostRecent(ctx, d.UserID)
				switch {
				case errors.Is(err, reading.ErrNoReadings):
					state = nil
				case err != nil:
					return nil, fmt.Errorf("querying grid state: %w", err)
				default:
					state = &last.GridState
				}
				states[d.UserID] = state
			}
			view.GridState = state
		}

		views = append(views, view)
	}

	return views, nil
}

// userLock returns the evaluation mutex for a user, creating it on
// first use. Locks are never removed; the map grows with the user
// population, which is small.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}
