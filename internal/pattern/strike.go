package pattern

import (
	"log/slog"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

const scratchMark = "mark"

// strike marks the target's position, waits, then bursts on the marked spot.
// Moving off the mark during the telegraph dodges the hit. The mark is
// cleared when the impact lands.
//
// Params: telegraph, recovery (seconds), scale (damage multiplier),
// radius (fallback when the Radius stat is 0), linger (impact effect ttl).
func (d Deps) strike(p action.Params) (action.Body, error) {
	telegraph := p.Float("telegraph", 1.0)
	recovery := p.Float("recovery", 0.8)
	scale := p.Float("scale", 1.0)
	radius := p.Float("radius", 1.5)
	linger := p.Float("linger", 0.3)

	return action.Body{Phases: []action.Phase{
		{
			Name:     "telegraph",
			Duration: telegraph,
			Enter: func(r *action.Run) error {
				_, target, err := d.engage(r)
				if err != nil {
					return err
				}
				pos := target.Position()
				rememberTarget(r, pos)
				if h, _, ok := placeEffect(r, TagMark, pos, statOr(r, stat.Radius, radius), 0, telegraph); ok {
					r.Scratch()[scratchMark] = h
				}
				return nil
			},
		},
		{
			Name: "impact",
			Enter: func(r *action.Run) error {
				pos, ok := recallTarget(r)
				if !ok {
					return action.ErrAbort
				}
				if h, ok := r.Scratch()[scratchMark].(pool.Handle); ok {
					r.Despawn(h)
				}
				area := statOr(r, stat.Radius, radius)
				amount := r.Stat(stat.Damage) * scale
				if h, _, ok := placeEffect(r, TagImpact, pos, area, amount, linger); ok {
					d.leave(r, h)
				}
				hits, dealt := d.damageArea(pos, area, amount)
				slog.Debug("strike impact",
					"actor", r.Actor(),
					"hits", hits,
					"damage", dealt)
				return nil
			},
		},
		{Name: "recovery", Duration: recovery},
	}}, nil
}
