package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"robot-controller/internal/logger"
	"robot-controller/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	// PacketsKey is the list the bench console LPUSHes packets onto.
	PacketsKey = "console:packets"

	RobotHash    = "robot"
	RobotChannel = "robot"
	FaultSet     = "robot:fault"
	FaultStream  = "events:faults"

	packetPollTimeout = 5 * time.Second
)

// RedisStation is a driver station backed by a Redis bench console. It
// receives packets from a list and reports program state, mode and faults
// back through the robot hash.
type RedisStation struct {
	client *redis.Client
	logger *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	current  types.OperatorSnapshot
	mode     types.Mode
	haveMode bool
}

func NewRedisStation(host string, port int, l *logger.Logger) *RedisStation {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisStation{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		logger: l.WithTag("bench"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RedisStation) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		r.logger.Errorf("Redis connection failed: %v", err)
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// WaitForPacket blocks until a valid packet is popped from PacketsKey or
// ctx is done. Malformed packets are logged and skipped.
func (r *RedisStation) WaitForPacket(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.ctx, cancel)
	defer stop()

	for {
		// Short BRPOP timeout so cancellation is noticed promptly.
		result, err := r.client.BRPop(ctx, packetPollTimeout, PacketsKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", PacketsKey, err)
		}
		if len(result) < 2 { // BRPOP returns [key, value]
			continue
		}

		snap, err := DecodePacket([]byte(result[1]))
		if err != nil {
			r.logger.Warnf("Dropping packet: %v", err)
			continue
		}

		r.mu.Lock()
		r.current = snap
		r.mu.Unlock()
		return nil
	}
}

func (r *RedisStation) ReadControlWord() (types.ControlWord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.ControlWord, nil
}

func (r *RedisStation) ReadAllianceStation() (types.AllianceStation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Station, nil
}

func (r *RedisStation) ReadMatchInfo() (types.MatchInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Match, nil
}

func (r *RedisStation) ReadJoystick(port int) (types.Joystick, error) {
	if port < 0 || port >= types.JoystickPorts {
		return types.Joystick{}, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Joysticks[port], nil
}

// publishHashSet is a helper that atomically sets a hash field with its
// timestamp and publishes a notification
func (r *RedisStation) publishHashSet(field string, value interface{}) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, RobotHash, field, value)
	pipe.HSet(r.ctx, RobotHash, field+":timestamp", time.Now().Format(time.RFC3339))
	pipe.Publish(r.ctx, RobotChannel, field)
	_, err := pipe.Exec(r.ctx)
	return err
}

func (r *RedisStation) ObserveProgramStarting() {
	r.logger.Infof("Publishing program starting")
	if err := r.publishHashSet("program", "starting"); err != nil {
		r.logger.Warnf("Failed to publish program state: %v", err)
	}
}

// ObserveMode publishes the mode when it changes.
func (r *RedisStation) ObserveMode(m types.Mode) {
	r.mu.Lock()
	changed := !r.haveMode || r.mode != m
	r.mode = m
	r.haveMode = true
	r.mu.Unlock()

	if !changed {
		return
	}
	r.logger.Debugf("Publishing mode: %s", m)
	if err := r.publishHashSet("mode", m.String()); err != nil {
		r.logger.Warnf("Failed to publish mode: %v", err)
	}
}

// ReportFault adds code to the active fault set and appends a fault event.
func (r *RedisStation) ReportFault(code string, cause error) error {
	r.logger.Infof("Reporting fault present: code=%s, description=%v", code, cause)

	pipe := r.client.Pipeline()
	pipe.SAdd(r.ctx, FaultSet, code)

	eventData := map[string]interface{}{
		"group": RobotHash,
		"code":  code,
		"state": "present",
		"ts":    time.Now().UnixMilli(),
	}
	if cause != nil {
		eventData["description"] = cause.Error()
	}
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: FaultStream,
		MaxLen: 1000,
		Values: eventData,
	})
	pipe.Publish(r.ctx, RobotChannel, "fault")

	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to report fault present: %v", err)
		return err
	}
	return nil
}

// ClearFault removes code from the active fault set.
func (r *RedisStation) ClearFault(code string) error {
	r.logger.Infof("Reporting fault absent: code=%s", code)

	pipe := r.client.Pipeline()
	pipe.SRem(r.ctx, FaultSet, code)
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: FaultStream,
		MaxLen: 1000,
		Values: map[string]interface{}{
			"group": RobotHash,
			"code":  code,
			"state": "absent",
			"ts":    time.Now().UnixMilli(),
		},
	})
	pipe.Publish(r.ctx, RobotChannel, "fault")

	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to report fault absent: %v", err)
		return err
	}
	return nil
}

// Close marks the program stopped and closes the client. Pending
// WaitForPacket calls return.
func (r *RedisStation) Close() error {
	r.logger.Infof("Closing Redis client")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, RobotHash, "program", "stopped")
	pipe.Publish(ctx, RobotChannel, "program")
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warnf("Failed to publish program stop: %v", err)
	}

	r.cancel()
	return r.client.Close()
}
