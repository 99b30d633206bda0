// Package spawn owns pooled instances that outlive the action that created
// them: projectiles in flight and lingering area effects.
package spawn

import (
	"log/slog"

	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/world"
)

// Stats counts spawner activity since creation.
type Stats struct {
	Adopted  int
	Expired  int
	Hits     int
	Damage   float64
	Rejected int
}

// Spawner advances adopted instances every tick and releases them to the
// pool when they expire.
type Spawner struct {
	pool  *pool.Pool
	world *world.World

	live  []pool.Handle
	stats Stats
}

// New creates a spawner releasing into p and colliding against w's targets.
func New(p *pool.Pool, w *world.World) *Spawner {
	return &Spawner{
		pool:  p,
		world: w,
		live:  make([]pool.Handle, 0, 64),
	}
}

// Adopt takes ownership of h. The handle must be live in the pool.
func (s *Spawner) Adopt(h pool.Handle) bool {
	if _, ok := s.pool.Get(h); !ok {
		s.stats.Rejected++
		slog.Warn("spawner adopt of dead handle", "handle", h.String())
		return false
	}
	s.live = append(s.live, h)
	s.stats.Adopted++
	return true
}

// Tick steps every owned instance by dt. Projectiles collide with living
// targets; expired or spent instances go back to the pool.
func (s *Spawner) Tick(dt float64) {
	kept := s.live[:0]
	for _, h := range s.live {
		if s.step(h, dt) {
			kept = append(kept, h)
			continue
		}
		s.pool.Release(h.Tag(), h)
		s.stats.Expired++
	}
	clear(s.live[len(kept):])
	s.live = kept
}

func (s *Spawner) step(h pool.Handle, dt float64) bool {
	inst, ok := s.pool.Get(h)
	if !ok {
		return false
	}
	switch v := inst.(type) {
	case *model.Projectile:
		if !v.Step(dt) {
			return false
		}
		s.world.ForEach(model.KindTarget, func(target *model.Actor) bool {
			dealt := v.Collide(target)
			if dealt > 0 {
				s.stats.Hits++
				s.stats.Damage += dealt
			}
			return v.Active()
		})
		return v.Active()
	case *model.Effect:
		return v.Step(dt)
	default:
		slog.Warn("spawner cannot step instance", "handle", h.String())
		return false
	}
}

// Live returns the number of owned instances.
func (s *Spawner) Live() int { return len(s.live) }

// Stats returns counters since creation.
func (s *Spawner) Stats() Stats { return s.stats }

// ReleaseAll returns every owned instance to the pool.
func (s *Spawner) ReleaseAll() {
	for _, h := range s.live {
		s.pool.Release(h.Tag(), h)
	}
	clear(s.live)
	s.live = s.live[:0]
}
