// Package pool recycles transient game instances (projectiles, effects,
// marks) per tag without allocating on every use.
//
// Each tag owns an arena: a dense slice of slots plus a FIFO queue of free
// slot indices. Instances are created lazily, never destroyed while their tag
// is registered, and always handed out in a deactivated state. Activation is
// the caller's job.
//
// A Pool is not safe for concurrent use. It is meant to be driven from the
// single tick goroutine.
package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	// ErrPoolExists is returned when a tag is registered twice.
	ErrPoolExists = errors.New("pool already registered")
	// ErrNilFactory is returned when Register gets no factory.
	ErrNilFactory = errors.New("nil factory")
)

// Instance is anything the pool can recycle.
type Instance interface {
	// Deactivate puts the instance into its inert state.
	Deactivate()
}

// Detacher is implemented by instances that can be attached to something
// transient (a parent actor, a bone). Detach returns them to a neutral owner.
type Detacher interface {
	Detach()
}

// Destroyer is implemented by instances that hold resources which must be
// freed when the pool discards them instead of recycling.
type Destroyer interface {
	Destroy()
}

// Factory creates one new instance for a tag.
type Factory func() Instance

type slotState uint8

const (
	slotFree slotState = iota
	slotAcquired
	slotReleasing
	slotRetired
)

type slot struct {
	inst  Instance
	gen   uint32
	state slotState
}

type arena struct {
	tag     string
	factory Factory
	slots   []slot
	free    []uint32 // FIFO, head at index 0

	created uint64
	retired int
}

// Stats is a point-in-time view of one tag.
type Stats struct {
	Tag     string
	Total   int    // slots ever created, including retired ones
	Free    int    // waiting in the queue
	InUse   int    // acquired and not yet released
	Retired int    // discarded by a foreign release
	Created uint64 // factory calls
}

// Pool owns one arena per tag.
type Pool struct {
	arenas map[string]*arena
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{arenas: make(map[string]*arena, 8)}
}

// Register creates the arena for tag and pre-populates it with initialSize
// deactivated instances. Registering an existing tag is rejected.
func (p *Pool) Register(tag string, factory Factory, initialSize int) error {
	if tag == "" {
		return fmt.Errorf("registering pool: empty tag")
	}
	if factory == nil {
		return fmt.Errorf("registering pool %q: %w", tag, ErrNilFactory)
	}
	if _, ok := p.arenas[tag]; ok {
		slog.Warn("pool tag registered twice, keeping the first", "tag", tag)
		return fmt.Errorf("registering pool %q: %w", tag, ErrPoolExists)
	}

	a := &arena{
		tag:     tag,
		factory: factory,
		slots:   make([]slot, 0, max(initialSize, 4)),
		free:    make([]uint32, 0, max(initialSize, 4)),
	}
	p.arenas[tag] = a

	for range initialSize {
		idx, ok := a.create()
		if !ok {
			break
		}
		a.slots[idx].state = slotFree
		a.free = append(a.free, idx)
	}

	slog.Debug("pool registered", "tag", tag, "initial", initialSize)
	return nil
}

// Registered reports whether tag has an arena.
func (p *Pool) Registered(tag string) bool {
	_, ok := p.arenas[tag]
	return ok
}

// Acquire hands out an inert instance for tag, creating one if the free queue
// is empty. An unknown tag is logged and yields the zero handle and a nil
// instance.
func (p *Pool) Acquire(tag string) (Handle, Instance) {
	a, ok := p.arenas[tag]
	if !ok {
		slog.Warn("acquire from unknown pool tag", "tag", tag)
		return Handle{}, nil
	}

	var idx uint32
	if len(a.free) > 0 {
		idx = a.free[0]
		a.free = a.free[1:]
	} else {
		var created bool
		if idx, created = a.create(); !created {
			return Handle{}, nil
		}
	}

	s := &a.slots[idx]
	s.state = slotAcquired
	return Handle{tag: tag, index: idx, gen: s.gen}, s.inst
}

// Release deactivates and detaches the instance behind h and queues it for
// reuse under tag.
//
// If tag is not registered, or does not own h, the instance is destroyed and
// its slot retired so it can never be handed out again. Stale handles and
// double releases are detected by generation and ignored.
func (p *Pool) Release(tag string, h Handle) {
	if h.IsZero() {
		slog.Warn("release of empty handle", "tag", tag)
		return
	}

	owner, ok := p.arenas[h.tag]
	if !ok {
		slog.Warn("release of handle from unknown pool", "tag", tag, "handle", h.String())
		return
	}
	s, ok := owner.live(h)
	if !ok {
		slog.Warn("release of stale pool handle", "tag", tag, "handle", h.String())
		return
	}

	// Invalidate h before calling out so reentrant calls see a consistent slot.
	s.gen++
	s.state = slotReleasing
	inst := s.inst

	if _, known := p.arenas[tag]; !known || tag != h.tag {
		slog.Warn("release under foreign pool tag, destroying instance",
			"tag", tag,
			"owner", h.tag,
			"handle", h.String())
		inst.Deactivate()
		if d, ok := inst.(Destroyer); ok {
			d.Destroy()
		}
		s = &owner.slots[h.index]
		s.inst = nil
		s.state = slotRetired
		owner.retired++
		return
	}

	inst.Deactivate()
	if d, ok := inst.(Detacher); ok {
		d.Detach()
	}

	s = &owner.slots[h.index]
	s.state = slotFree
	owner.free = append(owner.free, h.index)
}

// Get resolves an acquired handle. Stale or empty handles return false.
func (p *Pool) Get(h Handle) (Instance, bool) {
	a, ok := p.arenas[h.tag]
	if !ok {
		return nil, false
	}
	s, ok := a.live(h)
	if !ok {
		return nil, false
	}
	return s.inst, true
}

// Resolve is Get with a type assertion to the concrete instance type.
func Resolve[T Instance](p *Pool, h Handle) (T, bool) {
	var zero T
	inst, ok := p.Get(h)
	if !ok {
		return zero, false
	}
	v, ok := inst.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Stats returns counters for tag; unknown tags report zero values.
func (p *Pool) Stats(tag string) Stats {
	a, ok := p.arenas[tag]
	if !ok {
		return Stats{Tag: tag}
	}
	st := Stats{
		Tag:     tag,
		Total:   len(a.slots),
		Free:    len(a.free),
		Retired: a.retired,
		Created: a.created,
	}
	for i := range a.slots {
		if a.slots[i].state == slotAcquired {
			st.InUse++
		}
	}
	return st
}

// Tags returns registered tags in sorted order.
func (p *Pool) Tags() []string {
	tags := make([]string, 0, len(p.arenas))
	for tag := range p.arenas {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// create runs the factory and appends an inert instance. The new slot is
// returned in the acquired state; callers adjust it.
func (a *arena) create() (uint32, bool) {
	inst := a.factory()
	if inst == nil {
		slog.Error("pool factory returned nil instance", "tag", a.tag)
		return 0, false
	}
	inst.Deactivate()

	a.slots = append(a.slots, slot{inst: inst, state: slotAcquired})
	a.created++
	return uint32(len(a.slots) - 1), true
}

func (a *arena) live(h Handle) (*slot, bool) {
	if int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if s.gen != h.gen || s.state != slotAcquired {
		return nil, false
	}
	return s, true
}
