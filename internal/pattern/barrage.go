package pattern

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// barrage fires volleys of projectiles fanned around the target direction.
// The number of projectiles per volley follows the ProjectileCount stat.
// Launched projectiles belong to the spawner, so they keep flying after the
// action ends.
//
// Params: windup, interval, recovery (seconds), volleys, spread (degrees),
// speed, ttl, radius, scale.
func (d Deps) barrage(p action.Params) (action.Body, error) {
	windup := p.Float("windup", 0.6)
	interval := p.Float("interval", 0.4)
	recovery := p.Float("recovery", 0.5)
	volleys := p.Int("volleys", 3)
	spread := p.Float("spread", 20) * math.Pi / 180
	speed := p.Float("speed", 8)
	ttl := p.Float("ttl", 3)
	radius := p.Float("radius", 0.4)
	scale := p.Float("scale", 0.5)

	if volleys < 1 {
		return action.Body{}, fmt.Errorf("barrage: volleys must be positive, got %d", volleys)
	}

	fire := func(r *action.Run) error {
		boss, target, err := d.engage(r)
		if err != nil {
			return err
		}
		count := max(1, int(r.Stat(stat.ProjectileCount)))
		damage := r.Stat(stat.Damage) * scale
		aim := target.Position().Sub(boss.Position()).ToAngle()

		for i := range count {
			offset := 0.0
			if count > 1 {
				offset = -spread/2 + spread*float64(i)/float64(count-1)
			}
			h, inst, ok := r.Spawn(TagBolt)
			if !ok {
				return nil
			}
			proj, ok := inst.(*model.Projectile)
			if !ok {
				return fmt.Errorf("barrage: %s is not a projectile", h)
			}
			proj.Launch(boss.ID(), boss.Position(), cp.ForAngle(aim+offset), speed, damage, radius, ttl)
			d.leave(r, h)
		}
		return nil
	}

	phases := make([]action.Phase, 0, volleys+2)
	phases = append(phases, action.Phase{Name: "windup", Duration: windup})
	for i := range volleys {
		phases = append(phases, action.Phase{
			Name:     fmt.Sprintf("volley-%d", i+1),
			Duration: interval,
			Enter:    fire,
		})
	}
	phases = append(phases, action.Phase{Name: "recovery", Duration: recovery})
	return action.Body{Phases: phases}, nil
}
