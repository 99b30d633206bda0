package ai

import (
	"log/slog"
	"math"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
	"github.com/Rim-SeungJae/eternal-survival/internal/world"
)

// BossConfig tunes a boss controller.
type BossConfig struct {
	// HoldDistance is how close the boss walks to its target when no
	// action is eligible.
	HoldDistance float64
	// StaggerFraction interrupts the current action when a single hit
	// takes at least this fraction of max health. 0 disables staggering.
	StaggerFraction float64
}

// DefaultBossConfig returns the controller defaults.
func DefaultBossConfig() BossConfig {
	return BossConfig{
		HoldDistance:    1.5,
		StaggerFraction: 0.1,
	}
}

// BossController feeds a boss's view of the world to the action scheduler
// every tick and walks it toward its target while nothing is eligible.
type BossController struct {
	boss  *model.Actor
	world *world.World
	sched *action.Scheduler
	cfg   BossConfig

	intention model.Intention
	started   bool
	staggers  int
}

// NewBossController creates a controller for boss. The boss must already be
// registered with sched under its own id.
func NewBossController(boss *model.Actor, w *world.World, sched *action.Scheduler, cfg BossConfig) *BossController {
	return &BossController{
		boss:      boss,
		world:     w,
		sched:     sched,
		cfg:       cfg,
		intention: model.IntentionIdle,
	}
}

// Start implements Controller.
func (c *BossController) Start() { c.started = true }

// Stop implements Controller. An in-flight action is cancelled so its slot
// and spawned instances are freed; the actor's actions stay registered.
func (c *BossController) Stop() {
	c.started = false
	c.sched.Cancel(c.actorID())
}

// Intention implements Controller.
func (c *BossController) Intention() model.Intention { return c.intention }

// Boss returns the controlled actor.
func (c *BossController) Boss() *model.Actor { return c.boss }

// Staggers returns how many hits interrupted an action.
func (c *BossController) Staggers() int { return c.staggers }

// Observe builds the actor state the scheduler sees this tick.
// Without a target the distance is +Inf so every ranged window rejects it.
func (c *BossController) Observe() (action.ActorState, *model.Actor) {
	maxHP := c.boss.Sheet().Stat(stat.MaxHealth)
	target := c.world.NearestTarget(c.boss)
	if target == nil {
		st := action.NewActorState(math.Inf(1), c.boss.HP(), maxHP)
		st.TargetAlive = false
		return st, nil
	}
	return action.NewActorState(c.boss.DistanceTo(target), c.boss.HP(), maxHP), target
}

// Tick implements Controller.
func (c *BossController) Tick(dt float64) {
	if !c.started {
		return
	}
	id := c.actorID()

	if c.boss.IsDead() {
		if c.intention != model.IntentionDead {
			c.setIntention(model.IntentionDead)
			c.sched.UnregisterActor(id)
		}
		return
	}

	state, target := c.Observe()

	if c.sched.Executing(id) {
		c.sched.Tick(id, state)
		if !c.sched.Executing(id) {
			c.setIntention(model.IntentionIdle)
		}
		return
	}

	if def, ok := c.sched.Tick(id, state); ok {
		debugTick("boss action selected",
			"boss", c.boss.Name(),
			"action", def.Name,
			"distance", state.DistanceToTarget,
			"health", state.HealthFraction)
		if c.sched.Executing(id) {
			c.setIntention(model.IntentionAct)
		}
		return
	}

	if target == nil {
		c.setIntention(model.IntentionIdle)
		return
	}
	c.boss.MoveToward(target.Position(), c.cfg.HoldDistance, dt)
	c.setIntention(model.IntentionChase)
}

// Hit applies damage to the boss and staggers it when the hit is heavy
// enough. Returns the damage dealt.
func (c *BossController) Hit(raw float64) float64 {
	dealt := c.boss.TakeDamage(raw)
	if c.cfg.StaggerFraction <= 0 || dealt <= 0 {
		return dealt
	}
	if dealt >= c.cfg.StaggerFraction*c.boss.MaxHP() && c.sched.Interrupt(c.actorID()) {
		c.staggers++
		slog.Debug("boss staggered", "boss", c.boss.Name(), "damage", dealt)
	}
	return dealt
}

func (c *BossController) actorID() action.ActorID {
	return action.ActorID(c.boss.ID())
}

func (c *BossController) setIntention(i model.Intention) {
	if c.intention == i {
		return
	}
	debugTick("boss intention changed",
		"boss", c.boss.Name(),
		"from", c.intention.String(),
		"to", i.String())
	c.intention = i
}
