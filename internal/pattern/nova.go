package pattern

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// nova charges in place and then bursts a ring of effects around the boss.
// The charge fails if the target gets out of reach before it completes.
//
// Params: charge, recovery (seconds), reach (max target distance while
// charging), count (ring segments), ring (ring radius), radius (segment
// radius fallback), scale, linger.
func (d Deps) nova(p action.Params) (action.Body, error) {
	charge := p.Float("charge", 1.2)
	recovery := p.Float("recovery", 1.0)
	reach := p.Float("reach", 6)
	count := p.Int("count", 8)
	ring := p.Float("ring", 3)
	radius := p.Float("radius", 1.2)
	scale := p.Float("scale", 1.5)
	linger := p.Float("linger", 0.4)

	if count < 1 {
		return action.Body{}, fmt.Errorf("nova: count must be positive, got %d", count)
	}

	return action.Body{Phases: []action.Phase{
		{
			Name:     "charge",
			Duration: charge,
			Enter: func(r *action.Run) error {
				_, _, err := d.engage(r)
				return err
			},
			Update: func(r *action.Run, _ float64) error {
				boss, target, err := d.engage(r)
				if err != nil {
					return err
				}
				if boss.DistanceTo(target) > reach {
					return fmt.Errorf("%w: target out of reach", action.ErrAbort)
				}
				return nil
			},
		},
		{
			Name: "burst",
			Enter: func(r *action.Run) error {
				boss, ok := d.World.Actor(uint32(r.Actor()))
				if !ok {
					return action.ErrAbort
				}
				area := statOr(r, stat.Radius, radius)
				amount := r.Stat(stat.Damage) * scale
				center := boss.Position()

				segments := make([]*model.Effect, 0, count)
				for i := range count {
					angle := 2 * math.Pi * float64(i) / float64(count)
					pos := center.Add(cp.ForAngle(angle).Mult(ring))
					if h, e, ok := placeEffect(r, TagNova, pos, area, amount, linger); ok {
						segments = append(segments, e)
						d.leave(r, h)
					}
				}

				// A target standing where segments overlap is hit once.
				hits := 0
				dealt := 0.0
				d.World.ForEach(model.KindTarget, func(t *model.Actor) bool {
					if t.IsDead() {
						return true
					}
					for _, e := range segments {
						if e.Hits(t.Position()) {
							hits++
							dealt += t.TakeDamage(amount)
							break
						}
					}
					return true
				})
				slog.Debug("nova burst",
					"actor", r.Actor(),
					"segments", len(segments),
					"hits", hits,
					"damage", dealt)
				return nil
			},
		},
		{Name: "recovery", Duration: recovery},
	}}, nil
}
