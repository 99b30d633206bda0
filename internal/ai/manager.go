package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
)

// TickConfig controls the simulation loop.
type TickConfig struct {
	// Rate is the number of ticks per simulated second.
	Rate int
	// Realtime paces ticks with a wall-clock ticker. Otherwise ticks run
	// back to back.
	Realtime bool
	// MaxTicks stops the loop after this many ticks; 0 runs until cancelled.
	MaxTicks uint64
}

type registered struct {
	id         uint32
	controller Controller
}

// TickManager runs the fixed-timestep loop that owns the simulation.
//
// Each tick it drains posted work, advances the shared clock by one step,
// ticks every controller in registration order, then runs the after-tick
// hooks. Everything except Post, Stop and the counters must be called from
// the tick goroutine or before Start.
type TickManager struct {
	clock *action.ManualClock
	cfg   TickConfig
	step  float64

	controllers []registered
	afterTick   []func(tick uint64, now float64)

	posted   chan func()
	stopCh   chan struct{}
	stopOnce sync.Once

	ticks           atomic.Uint64
	controllerCount atomic.Int32
}

// NewTickManager creates a tick manager advancing clock by 1/Rate per tick.
func NewTickManager(clock *action.ManualClock, cfg TickConfig) *TickManager {
	if cfg.Rate <= 0 {
		cfg.Rate = 30
	}
	return &TickManager{
		clock:  clock,
		cfg:    cfg,
		step:   1 / float64(cfg.Rate),
		posted: make(chan func(), 64),
		stopCh: make(chan struct{}),
	}
}

// Register adds a controller. It is ticked after every controller already
// registered.
func (m *TickManager) Register(id uint32, controller Controller) {
	if i := m.find(id); i >= 0 {
		m.controllers[i].controller.Stop()
		m.controllers[i].controller = controller
	} else {
		m.controllers = append(m.controllers, registered{id: id, controller: controller})
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"id", id,
		"intention", controller.Intention())
}

// Unregister removes a controller.
func (m *TickManager) Unregister(id uint32) {
	i := m.find(id)
	if i < 0 {
		return
	}
	c := m.controllers[i].controller
	m.controllers = slices.Delete(m.controllers, i, i+1)
	m.controllerCount.Add(-1)
	c.Stop()

	slog.Debug("AI controller unregistered", "id", id)
}

// GetController returns the controller registered under id.
func (m *TickManager) GetController(id uint32) (Controller, error) {
	if i := m.find(id); i >= 0 {
		return m.controllers[i].controller, nil
	}
	return nil, fmt.Errorf("controller not found for id %d", id)
}

// Count returns the number of registered controllers.
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Ticks returns the number of completed ticks.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// Step returns the simulated seconds per tick.
func (m *TickManager) Step() float64 {
	return m.step
}

// OnTick registers fn to run at the end of every tick.
func (m *TickManager) OnTick(fn func(tick uint64, now float64)) {
	m.afterTick = append(m.afterTick, fn)
}

// Post hands fn to the tick goroutine. It runs at the start of the next
// tick. Safe to call from any goroutine; returns false once stopped.
func (m *TickManager) Post(ctx context.Context, fn func()) bool {
	select {
	case m.posted <- fn:
		return true
	case <-m.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// Start runs the loop until ctx is cancelled, Stop is called, or MaxTicks
// is reached. Returns ctx.Err() on cancellation and nil otherwise.
func (m *TickManager) Start(ctx context.Context) error {
	var pace <-chan time.Time
	if m.cfg.Realtime {
		ticker := time.NewTicker(max(time.Second/time.Duration(m.cfg.Rate), time.Nanosecond))
		defer ticker.Stop()
		pace = ticker.C
	}

	slog.Info("AI tick manager started",
		"rate", m.cfg.Rate,
		"realtime", m.cfg.Realtime,
		"maxTicks", m.cfg.MaxTicks)

	for {
		if m.cfg.MaxTicks > 0 && m.ticks.Load() >= m.cfg.MaxTicks {
			slog.Info("AI tick manager finished", "ticks", m.ticks.Load(), "t", m.clock.Now())
			return nil
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				slog.Info("AI tick manager stopping")
				return ctx.Err()
			case <-m.stopCh:
				slog.Info("AI tick manager stopped")
				return nil
			case <-pace:
			}
		} else {
			select {
			case <-ctx.Done():
				slog.Info("AI tick manager stopping")
				return ctx.Err()
			case <-m.stopCh:
				slog.Info("AI tick manager stopped")
				return nil
			default:
			}
		}

		m.TickOnce()
	}
}

// Stop ends the loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickOnce runs a single tick on the calling goroutine.
func (m *TickManager) TickOnce() {
	m.drain()
	m.clock.Advance(m.step)
	now := m.clock.Now()

	for _, r := range m.controllers {
		r.controller.Tick(m.step)
	}

	tick := m.ticks.Add(1)
	for _, fn := range m.afterTick {
		fn(tick, now)
	}

	debugTick("AI tick completed", "tick", tick, "t", now, "controllers", len(m.controllers))
}

func (m *TickManager) drain() {
	for {
		select {
		case fn := <-m.posted:
			fn()
		default:
			return
		}
	}
}

func (m *TickManager) find(id uint32) int {
	return slices.IndexFunc(m.controllers, func(r registered) bool { return r.id == id })
}
