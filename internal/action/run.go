package action

import (
	"log/slog"
	"slices"

	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// Run is the in-flight state of one executing action. Phase hooks receive it
// and use it to read the actor's stats, spawn pooled instances, and keep
// per-run scratch data. A Run is only valid until its action ends.
type Run struct {
	actor ActorID
	def   Definition
	body  Body
	sheet *stat.Sheet
	pool  *pool.Pool

	state     ActorState
	startedAt float64
	now       float64

	phase        int
	phaseElapsed float64
	interrupted  bool

	spawned []pool.Handle
	scratch map[string]any
}

// Actor returns the actor executing this run.
func (r *Run) Actor() ActorID { return r.actor }

// Definition returns the definition the run was started with.
func (r *Run) Definition() Definition { return r.def }

// State returns the actor state observed on the current tick.
func (r *Run) State() ActorState { return r.state }

// Now returns the scheduler time of the current tick.
func (r *Run) Now() float64 { return r.now }

// StartedAt returns the time the action started.
func (r *Run) StartedAt() float64 { return r.startedAt }

// Elapsed returns the time since the action started.
func (r *Run) Elapsed() float64 { return r.now - r.startedAt }

// PhaseIndex returns the index of the current phase.
func (r *Run) PhaseIndex() int { return r.phase }

// PhaseName returns the name of the current phase.
func (r *Run) PhaseName() string {
	if r.phase < 0 || r.phase >= len(r.body.Phases) {
		return ""
	}
	return r.body.Phases[r.phase].Name
}

// PhaseElapsed returns the time spent in the current phase.
func (r *Run) PhaseElapsed() float64 { return r.phaseElapsed }

// Interrupted reports whether an interrupt is pending. Bodies that loop
// internally may check it at their own boundaries.
func (r *Run) Interrupted() bool { return r.interrupted }

// Sheet returns the actor's stat sheet, or nil when none was registered.
func (r *Run) Sheet() *stat.Sheet { return r.sheet }

// Stat returns the current value of attr, or 0 without a sheet.
func (r *Run) Stat(attr stat.Attribute) float64 {
	if r.sheet == nil {
		return 0
	}
	return r.sheet.Value(attr)
}

// Pool returns the scheduler's pool, possibly nil.
func (r *Run) Pool() *pool.Pool { return r.pool }

// Spawn acquires an instance under tag and tracks it. Tracked instances are
// released automatically when the run ends, whatever the outcome.
func (r *Run) Spawn(tag string) (pool.Handle, pool.Instance, bool) {
	if r.pool == nil {
		slog.Warn("action spawn without pool", "actor", r.actor, "action", r.def.Name, "tag", tag)
		return pool.Handle{}, nil, false
	}
	h, inst := r.pool.Acquire(tag)
	if h.IsZero() {
		return h, nil, false
	}
	r.spawned = append(r.spawned, h)
	return h, inst, true
}

// Despawn releases a tracked instance early.
func (r *Run) Despawn(h pool.Handle) bool {
	if !r.untrack(h) {
		return false
	}
	r.pool.Release(h.Tag(), h)
	return true
}

// Handoff stops tracking h. Ownership passes to the caller, who becomes
// responsible for releasing it.
func (r *Run) Handoff(h pool.Handle) bool {
	return r.untrack(h)
}

// Spawned returns the handles still tracked by the run.
func (r *Run) Spawned() []pool.Handle {
	return slices.Clone(r.spawned)
}

// Scratch returns per-run storage for body state.
func (r *Run) Scratch() map[string]any {
	if r.scratch == nil {
		r.scratch = make(map[string]any, 4)
	}
	return r.scratch
}

func (r *Run) untrack(h pool.Handle) bool {
	i := slices.Index(r.spawned, h)
	if i < 0 {
		return false
	}
	r.spawned = slices.Delete(r.spawned, i, i+1)
	return true
}

func (r *Run) releaseSpawned() {
	if r.pool == nil {
		return
	}
	for _, h := range r.spawned {
		r.pool.Release(h.Tag(), h)
	}
	r.spawned = r.spawned[:0]
}
