package ai

import (
	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/model"
)

// TargetConfig describes how a target dummy moves and fights.
type TargetConfig struct {
	// Orbit is the radius of the circle walked around the start point.
	// 0 keeps the target still.
	Orbit float64
	// Speed is the walking speed along the orbit in units per second.
	Speed float64
	// DPS is the damage dealt to the boss every second while both live.
	DPS float64
}

// TargetController moves a target dummy around its start point and chips
// at the boss so the boss's health window and stagger rules get exercised.
type TargetController struct {
	target *model.Actor
	boss   *BossController
	cfg    TargetConfig
	center cp.Vector
	angle  float64

	intention model.Intention
	started   bool
	dealt     float64
}

// NewTargetController creates a controller for target. boss may be nil for
// a passive dummy.
func NewTargetController(target *model.Actor, boss *BossController, cfg TargetConfig) *TargetController {
	center := target.Position()
	if cfg.Orbit > 0 {
		center = center.Sub(cp.Vector{X: cfg.Orbit})
	}
	return &TargetController{
		target:    target,
		boss:      boss,
		cfg:       cfg,
		center:    center,
		intention: model.IntentionIdle,
	}
}

// Start implements Controller.
func (c *TargetController) Start() { c.started = true }

// Stop implements Controller.
func (c *TargetController) Stop() { c.started = false }

// Intention implements Controller.
func (c *TargetController) Intention() model.Intention { return c.intention }

// Target returns the controlled actor.
func (c *TargetController) Target() *model.Actor { return c.target }

// Dealt returns the total damage dealt to the boss.
func (c *TargetController) Dealt() float64 { return c.dealt }

// Tick implements Controller.
func (c *TargetController) Tick(dt float64) {
	if !c.started {
		return
	}
	if c.target.IsDead() {
		c.intention = model.IntentionDead
		return
	}

	if c.cfg.Orbit > 0 && c.cfg.Speed > 0 {
		c.angle += c.cfg.Speed / c.cfg.Orbit * dt
		c.target.SetPosition(c.center.Add(cp.ForAngle(c.angle).Mult(c.cfg.Orbit)))
		c.intention = model.IntentionChase
	}

	if c.boss == nil || c.cfg.DPS <= 0 || c.boss.Boss().IsDead() {
		if c.cfg.Orbit <= 0 {
			c.intention = model.IntentionIdle
		}
		return
	}
	c.dealt += c.boss.Hit(c.cfg.DPS * dt)
	c.intention = model.IntentionAct
}
