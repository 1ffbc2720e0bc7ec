package ds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"robot-controller/internal/logger"
	"robot-controller/internal/types"
)

// Source is the driver station side of the hardware boundary.
type Source interface {
	// WaitForPacket blocks until a new packet has arrived or ctx is done.
	WaitForPacket(ctx context.Context) error

	ReadControlWord() (types.ControlWord, error)
	ReadAllianceStation() (types.AllianceStation, error)
	ReadMatchInfo() (types.MatchInfo, error)
	// ReadJoystick returns the zero Joystick for unplugged or out of range
	// ports. Errors are hardware read failures only.
	ReadJoystick(port int) (types.Joystick, error)
}

const DefaultRetryDelay = 100 * time.Millisecond

// Updater copies every packet from a Source into a SharedState on its own
// goroutine.
type Updater struct {
	state      *SharedState
	source     Source
	logger     *logger.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	packets      *atomic.Uint64
	readFailures *atomic.Uint64
	waitFailures *atomic.Uint64
}

func NewUpdater(state *SharedState, source Source, l *logger.Logger, retryDelay time.Duration) *Updater {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Updater{
		state:        state,
		source:       source,
		logger:       l.WithTag("updater"),
		retryDelay:   retryDelay,
		packets:      atomic.NewUint64(0),
		readFailures: atomic.NewUint64(0),
		waitFailures: atomic.NewUint64(0),
	}
}

// Spawn starts the update loop. Only the first call starts anything; later
// calls return false.
func (u *Updater) Spawn(ctx context.Context) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.running || u.done != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})
	u.running = true

	go u.run(ctx, u.done)

	u.logger.Infof("Driver station updater started")
	return true
}

// Stop cancels the loop and waits for it to exit. Safe to call more than
// once, or before Spawn.
func (u *Updater) Stop() {
	u.mu.Lock()
	cancel, done := u.cancel, u.done
	u.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (u *Updater) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.running
}

// Packets returns how many snapshots have been published.
func (u *Updater) Packets() uint64 { return u.packets.Load() }

// ReadFailures returns how many packets were skipped because a read failed.
func (u *Updater) ReadFailures() uint64 { return u.readFailures.Load() }

// WaitFailures returns how many packet waits failed.
func (u *Updater) WaitFailures() uint64 { return u.waitFailures.Load() }

func (u *Updater) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		u.mu.Lock()
		u.running = false
		u.mu.Unlock()
		u.logger.Infof("Driver station updater stopped")
	}()

	for {
		if err := u.source.WaitForPacket(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			u.waitFailures.Inc()
			u.logger.Warnf("Waiting for driver station packet failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(u.retryDelay):
			}
			continue
		}

		snap, err := u.capture()
		if err != nil {
			// Keep the last good snapshot until the next packet.
			u.readFailures.Inc()
			u.logger.Debugf("Skipping packet: %v", err)
			continue
		}

		u.state.Publish(snap)
		u.packets.Inc()
	}
}

// capture reads one full snapshot. Any failed read discards the whole capture
// so a snapshot never mixes two packets.
func (u *Updater) capture() (types.OperatorSnapshot, error) {
	var snap types.OperatorSnapshot

	for port := 0; port < types.JoystickPorts; port++ {
		js, err := u.source.ReadJoystick(port)
		if err != nil {
			return snap, fmt.Errorf("failed to read joystick %d: %w", port, err)
		}
		snap.Joysticks[port] = js
	}

	cw, err := u.source.ReadControlWord()
	if err != nil {
		return snap, fmt.Errorf("failed to read control word: %w", err)
	}
	snap.ControlWord = cw

	station, err := u.source.ReadAllianceStation()
	if err != nil {
		return snap, fmt.Errorf("failed to read alliance station: %w", err)
	}
	snap.Station = station

	match, err := u.source.ReadMatchInfo()
	if err != nil {
		return snap, fmt.Errorf("failed to read match info: %w", err)
	}
	snap.Match = match

	return snap, nil
}
