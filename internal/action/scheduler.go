// Package action selects and drives timed actions for autonomous actors.
//
// Each actor owns a list of action definitions with a cooldown, a priority,
// a distance window and a health window. On every Tick the scheduler either
// advances the actor's in-flight action by one step of its phase machine, or,
// when the actor is idle, picks the highest priority eligible action and
// starts it. Ties in priority go to the action registered first.
//
// Cooldowns are measured from the start of an action, not from its end.
// At most one action per actor executes at a time.
//
// The scheduler is single-threaded: it never blocks, holds no locks, and must
// be driven from the tick goroutine.
package action

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

var (
	// ErrDuplicateAction is returned when an actor already has an action with
	// the same name.
	ErrDuplicateAction = errors.New("duplicate action")
	// ErrUnknownAction is returned by Replace for names never registered.
	ErrUnknownAction = errors.New("unknown action")
	// ErrEmptyBody is returned for bodies without phases.
	ErrEmptyBody = errors.New("action body has no phases")
)

// Completion is reported to completion hooks whenever a run ends.
type Completion struct {
	Actor     ActorID
	Action    string
	Outcome   Outcome
	StartedAt float64
	EndedAt   float64
	Err       error
}

// Status is a snapshot of an actor's in-flight action.
type Status struct {
	Action       string
	Phase        string
	PhaseIndex   int
	PhaseElapsed float64
	StartedAt    float64
	Interrupted  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPool gives action bodies access to a pool through Run.Spawn.
func WithPool(p *pool.Pool) Option {
	return func(s *Scheduler) { s.pool = p }
}

// WithCompletionHook registers fn to be called after every run ends.
func WithCompletionHook(fn func(Completion)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

type slotEntry struct {
	def       Definition
	body      Body
	lastStart float64
}

func (e *slotEntry) onCooldown(now float64) bool {
	return now-e.lastStart < e.def.Cooldown
}

type actorEntry struct {
	id      ActorID
	sheet   *stat.Sheet
	actions []*slotEntry
	run     *Run
}

func (a *actorEntry) find(name string) (int, *slotEntry) {
	for i, e := range a.actions {
		if e.def.Name == name {
			return i, e
		}
	}
	return -1, nil
}

// Scheduler owns the action lists and execution slots of all actors.
type Scheduler struct {
	clock  Clock
	pool   *pool.Pool
	hooks  []func(Completion)
	actors map[ActorID]*actorEntry
}

// New creates a scheduler reading time from clock.
func New(clock Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = NewManualClock(0)
	}
	s := &Scheduler{
		clock:  clock,
		actors: make(map[ActorID]*actorEntry, 8),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() float64 { return s.clock.Now() }

// RegisterActor creates the actor if needed and attaches its stat sheet.
// A nil sheet is allowed; bodies then read every stat as 0.
func (s *Scheduler) RegisterActor(id ActorID, sheet *stat.Sheet) {
	a := s.actor(id)
	a.sheet = sheet
}

// UnregisterActor removes the actor. An in-flight action ends as
// OutcomeCancelled.
func (s *Scheduler) UnregisterActor(id ActorID) {
	a, ok := s.actors[id]
	if !ok {
		return
	}
	if a.run != nil {
		s.finish(a, OutcomeCancelled, nil)
	}
	delete(s.actors, id)
	slog.Debug("actor unregistered", "actor", id)
}

// RegisterAction adds def with its body to the actor's action list.
// The actor is created on first use. Declaration order is the priority
// tie-break.
func (s *Scheduler) RegisterAction(id ActorID, def Definition, body Body) error {
	if def.Name == "" {
		return fmt.Errorf("registering action for actor %d: empty name", id)
	}
	if len(body.Phases) == 0 {
		return fmt.Errorf("registering action %q: %w", def.Name, ErrEmptyBody)
	}
	a := s.actor(id)
	if _, existing := a.find(def.Name); existing != nil {
		return fmt.Errorf("registering action %q for actor %d: %w", def.Name, id, ErrDuplicateAction)
	}
	a.actions = append(a.actions, &slotEntry{
		def:       def,
		body:      body,
		lastStart: math.Inf(-1),
	})
	return nil
}

// Replace swaps the definition and body of an existing action while keeping
// its cooldown history and declaration order. A run already in flight keeps
// the body it started with.
func (s *Scheduler) Replace(id ActorID, def Definition, body Body) error {
	if len(body.Phases) == 0 {
		return fmt.Errorf("replacing action %q: %w", def.Name, ErrEmptyBody)
	}
	a, ok := s.actors[id]
	if !ok {
		return fmt.Errorf("replacing action %q for actor %d: %w", def.Name, id, ErrUnknownAction)
	}
	_, e := a.find(def.Name)
	if e == nil {
		return fmt.Errorf("replacing action %q for actor %d: %w", def.Name, id, ErrUnknownAction)
	}
	e.def = def
	e.body = body
	return nil
}

// RemoveAction drops an action from the actor's list. A run of that action
// already in flight is allowed to finish.
func (s *Scheduler) RemoveAction(id ActorID, name string) bool {
	a, ok := s.actors[id]
	if !ok {
		return false
	}
	i, _ := a.find(name)
	if i < 0 {
		return false
	}
	a.actions = slices.Delete(a.actions, i, i+1)
	return true
}

// Actions returns the actor's definitions in declaration order.
func (s *Scheduler) Actions(id ActorID) []Definition {
	a, ok := s.actors[id]
	if !ok {
		return nil
	}
	defs := make([]Definition, 0, len(a.actions))
	for _, e := range a.actions {
		defs = append(defs, e.def)
	}
	return defs
}

// Actors returns all registered actor ids in ascending order.
func (s *Scheduler) Actors() []ActorID {
	ids := make([]ActorID, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tick advances the actor by one tick.
//
// If an action is in flight it is stepped and nothing new is selected, even
// if that action ends during this tick; the actor is reconsidered on the
// next tick. Otherwise the best eligible action is started and returned.
func (s *Scheduler) Tick(id ActorID, state ActorState) (Definition, bool) {
	now := s.clock.Now()
	a, ok := s.actors[id]
	if !ok {
		slog.Debug("tick for unknown actor", "actor", id)
		return Definition{}, false
	}

	if a.run != nil {
		s.advance(a, now, state)
		return Definition{}, false
	}

	e := selectNext(a.actions, now, false, state)
	if e == nil {
		return Definition{}, false
	}
	s.start(a, e, now, state)
	return e.def, true
}

// SelectNext returns the action Tick would start for state right now,
// without starting it.
func (s *Scheduler) SelectNext(id ActorID, state ActorState) (Definition, bool) {
	a, ok := s.actors[id]
	if !ok {
		return Definition{}, false
	}
	e := selectNext(a.actions, s.clock.Now(), a.run != nil, state)
	if e == nil {
		return Definition{}, false
	}
	return e.def, true
}

// Execute starts the named action if it is eligible. Refusals (unknown,
// cooling down, actor busy, out of range or health window) return false.
func (s *Scheduler) Execute(id ActorID, name string, state ActorState) bool {
	a, ok := s.actors[id]
	if !ok {
		return false
	}
	_, e := a.find(name)
	if e == nil {
		return false
	}
	now := s.clock.Now()
	if !eligible(e, now, a.run != nil, state) {
		return false
	}
	s.start(a, e, now, state)
	return true
}

// IsEligible reports whether the named action could start now.
func (s *Scheduler) IsEligible(id ActorID, name string, state ActorState) bool {
	a, ok := s.actors[id]
	if !ok {
		return false
	}
	_, e := a.find(name)
	if e == nil {
		return false
	}
	return eligible(e, s.clock.Now(), a.run != nil, state)
}

// IsOnCooldown reports whether now - lastStart < cooldown for the named
// action. Unknown actions are never on cooldown.
func (s *Scheduler) IsOnCooldown(id ActorID, name string) bool {
	a, ok := s.actors[id]
	if !ok {
		return false
	}
	_, e := a.find(name)
	if e == nil {
		return false
	}
	return e.onCooldown(s.clock.Now())
}

// CooldownRemaining returns the seconds left before the named action is off
// cooldown, or 0.
func (s *Scheduler) CooldownRemaining(id ActorID, name string) float64 {
	a, ok := s.actors[id]
	if !ok {
		return 0
	}
	_, e := a.find(name)
	if e == nil {
		return 0
	}
	return max(0, e.def.Cooldown-(s.clock.Now()-e.lastStart))
}

// Interrupt asks the actor's in-flight action to stop. Only interruptible
// actions honor it; the run ends as OutcomeInterrupted at its next tick.
// Returns whether this call interrupted the run: false when idle, when the
// action is not interruptible, or when an interrupt is already pending.
func (s *Scheduler) Interrupt(id ActorID) bool {
	a, ok := s.actors[id]
	if !ok || a.run == nil {
		return false
	}
	if !a.run.def.Interruptible {
		slog.Debug("interrupt ignored, action not interruptible",
			"actor", id,
			"action", a.run.def.Name)
		return false
	}
	if a.run.interrupted {
		return false
	}
	a.run.interrupted = true
	return true
}

// Cancel ends the actor's in-flight action immediately as OutcomeCancelled,
// interruptible or not. The actor keeps its actions and cooldowns.
// Returns whether a run was cancelled.
func (s *Scheduler) Cancel(id ActorID) bool {
	a, ok := s.actors[id]
	if !ok || a.run == nil {
		return false
	}
	s.finish(a, OutcomeCancelled, nil)
	return true
}

// Executing reports whether the actor's execution slot is occupied.
func (s *Scheduler) Executing(id ActorID) bool {
	a, ok := s.actors[id]
	return ok && a.run != nil
}

// Current returns a snapshot of the actor's in-flight action.
func (s *Scheduler) Current(id ActorID) (Status, bool) {
	a, ok := s.actors[id]
	if !ok || a.run == nil {
		return Status{}, false
	}
	r := a.run
	return Status{
		Action:       r.def.Name,
		Phase:        r.PhaseName(),
		PhaseIndex:   r.phase,
		PhaseElapsed: r.phaseElapsed,
		StartedAt:    r.startedAt,
		Interrupted:  r.interrupted,
	}, true
}

func (s *Scheduler) actor(id ActorID) *actorEntry {
	a, ok := s.actors[id]
	if !ok {
		a = &actorEntry{id: id}
		s.actors[id] = a
	}
	return a
}

func eligible(e *slotEntry, now float64, busy bool, state ActorState) bool {
	return !busy &&
		!e.onCooldown(now) &&
		e.def.InRange(state.DistanceToTarget) &&
		e.def.InHealthWindow(state.HealthFraction)
}

// selectNext scans in declaration order and keeps the first candidate of
// strictly higher priority.
func selectNext(candidates []*slotEntry, now float64, busy bool, state ActorState) *slotEntry {
	var best *slotEntry
	for _, e := range candidates {
		if !eligible(e, now, busy, state) {
			continue
		}
		if best == nil || e.def.Priority > best.def.Priority {
			best = e
		}
	}
	return best
}

func (s *Scheduler) start(a *actorEntry, e *slotEntry, now float64, state ActorState) {
	e.lastStart = now
	r := &Run{
		actor:     a.id,
		def:       e.def,
		body:      e.body,
		sheet:     a.sheet,
		pool:      s.pool,
		state:     state,
		startedAt: now,
		now:       now,
	}
	a.run = r

	slog.Debug("action started",
		"actor", a.id,
		"action", e.def.Name,
		"priority", e.def.Priority,
		"t", now)

	if err := enter(r); err != nil {
		s.finish(a, OutcomeFailed, err)
		return
	}
	s.settle(a, r)
}

func (s *Scheduler) advance(a *actorEntry, now float64, state ActorState) {
	r := a.run
	dt := max(0, now-r.now)
	r.now = now
	r.state = state

	if r.interrupted {
		s.finish(a, OutcomeInterrupted, nil)
		return
	}

	if update := r.body.Phases[r.phase].Update; update != nil {
		if err := update(r, dt); err != nil {
			s.finish(a, OutcomeFailed, err)
			return
		}
	}
	r.phaseElapsed += dt
	s.settle(a, r)
}

// settle moves through every phase whose duration has fully elapsed,
// carrying leftover time into the next phase.
func (s *Scheduler) settle(a *actorEntry, r *Run) {
	for a.run == r {
		ph := r.body.Phases[r.phase]
		if r.phaseElapsed < ph.Duration {
			return
		}
		if r.phase == len(r.body.Phases)-1 {
			s.finish(a, OutcomeCompleted, nil)
			return
		}
		if r.interrupted {
			s.finish(a, OutcomeInterrupted, nil)
			return
		}
		r.phaseElapsed -= ph.Duration
		r.phase++
		if err := enter(r); err != nil {
			s.finish(a, OutcomeFailed, err)
			return
		}
	}
}

func enter(r *Run) error {
	if fn := r.body.Phases[r.phase].Enter; fn != nil {
		return fn(r)
	}
	return nil
}

// finish is the single exit path for every run.
func (s *Scheduler) finish(a *actorEntry, o Outcome, err error) {
	r := a.run
	if r == nil {
		return
	}
	a.run = nil

	r.releaseSpawned()
	if r.body.OnExit != nil {
		r.body.OnExit(r, o)
	}

	switch {
	case err != nil && !errors.Is(err, ErrAbort):
		slog.Warn("action failed",
			"actor", a.id,
			"action", r.def.Name,
			"phase", r.PhaseName(),
			"error", err)
	default:
		slog.Debug("action ended",
			"actor", a.id,
			"action", r.def.Name,
			"outcome", o.String(),
			"elapsed", r.Elapsed())
	}

	c := Completion{
		Actor:     a.id,
		Action:    r.def.Name,
		Outcome:   o,
		StartedAt: r.startedAt,
		EndedAt:   r.now,
		Err:       err,
	}
	for _, fn := range s.hooks {
		fn(c)
	}
}
