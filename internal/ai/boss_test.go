package ai

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
	"github.com/Rim-SeungJae/eternal-survival/internal/world"
)

const testBossID = 0x10000001

type bossFixture struct {
	clock *action.ManualClock
	sched *action.Scheduler
	world *world.World
	boss  *model.Actor
	hero  *model.Actor
	ctrl  *BossController
	done  []action.Completion
}

func newBossFixture(t *testing.T, heroAt cp.Vector) *bossFixture {
	t.Helper()
	f := &bossFixture{
		clock: action.NewManualClock(0),
		world: world.New(),
	}
	f.sched = action.New(f.clock, action.WithCompletionHook(func(c action.Completion) {
		f.done = append(f.done, c)
	}))
	f.boss = model.NewActor(testBossID, "Warden", model.KindBoss, cp.Vector{}, stat.NewSheet(map[stat.Attribute]float64{
		stat.MaxHealth: 1000,
		stat.Speed:     4,
	}))
	f.hero = model.NewActor(0x20000001, "hero", model.KindTarget, heroAt, stat.NewSheet(map[stat.Attribute]float64{
		stat.MaxHealth: 100,
	}))
	require.NoError(t, f.world.Add(f.boss))
	require.NoError(t, f.world.Add(f.hero))
	f.sched.RegisterActor(testBossID, f.boss.Sheet())

	f.ctrl = NewBossController(f.boss, f.world, f.sched, DefaultBossConfig())
	f.ctrl.Start()
	return f
}

func (f *bossFixture) addMelee(t *testing.T, interruptible bool) {
	t.Helper()
	def := action.Definition{
		Name:          "slam",
		Cooldown:      5,
		Priority:      1,
		MinRange:      0,
		MaxRange:      2,
		MinHealthFrac: 0,
		MaxHealthFrac: 1,
		Interruptible: interruptible,
	}
	body := action.Body{Phases: []action.Phase{{Name: "swing", Duration: 1}}}
	require.NoError(t, f.sched.RegisterAction(testBossID, def, body))
}

func (f *bossFixture) tick(dt float64) {
	f.clock.Advance(dt)
	f.ctrl.Tick(dt)
}

func TestBossController_ChasesUntilInRange(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 5})
	f.addMelee(t, false)

	f.tick(0.25)
	assert.Equal(t, model.IntentionChase, f.ctrl.Intention())
	assert.InDelta(t, 1.0, f.boss.Position().X, 1e-9)

	for range 4 {
		f.tick(0.25)
	}
	assert.Equal(t, model.IntentionAct, f.ctrl.Intention())
	assert.True(t, f.sched.Executing(testBossID))
	assert.LessOrEqual(t, f.boss.DistanceTo(f.hero), 2.0)
}

func TestBossController_ReturnsToIdleAfterAction(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)

	f.tick(0.1)
	require.Equal(t, model.IntentionAct, f.ctrl.Intention())

	f.tick(1)
	assert.False(t, f.sched.Executing(testBossID))
	assert.Equal(t, model.IntentionIdle, f.ctrl.Intention())
	require.Len(t, f.done, 1)
	assert.Equal(t, action.OutcomeCompleted, f.done[0].Outcome)
}

func TestBossController_IdleWithoutTarget(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)
	f.hero.TakeDamage(1000)

	f.tick(0.1)

	assert.Equal(t, model.IntentionIdle, f.ctrl.Intention())
	assert.False(t, f.sched.Executing(testBossID))
	st, target := f.ctrl.Observe()
	assert.Nil(t, target)
	assert.False(t, st.TargetAlive)
}

func TestBossController_StaggerInterrupts(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, true)
	f.tick(0.1)
	require.True(t, f.sched.Executing(testBossID))

	f.ctrl.Hit(50)
	assert.Equal(t, 0, f.ctrl.Staggers(), "light hits do not stagger")

	f.ctrl.Hit(150)
	assert.Equal(t, 1, f.ctrl.Staggers())

	f.tick(0.1)
	require.Len(t, f.done, 1)
	assert.Equal(t, action.OutcomeInterrupted, f.done[0].Outcome)
	assert.Equal(t, 800.0, f.boss.HP())
}

func TestBossController_HeavyHitCannotStaggerUninterruptible(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)
	f.tick(0.1)

	f.ctrl.Hit(500)

	assert.Equal(t, 0, f.ctrl.Staggers())
	assert.True(t, f.sched.Executing(testBossID))
}

func TestBossController_DeathCancelsAction(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)
	f.tick(0.1)
	require.True(t, f.sched.Executing(testBossID))

	f.boss.TakeDamage(5000)
	f.tick(0.1)

	assert.Equal(t, model.IntentionDead, f.ctrl.Intention())
	require.Len(t, f.done, 1)
	assert.Equal(t, action.OutcomeCancelled, f.done[0].Outcome)
	assert.Empty(t, f.sched.Actors())
}

func TestBossController_StoppedDoesNotTick(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)
	f.ctrl.Stop()

	f.tick(0.1)
	assert.False(t, f.sched.Executing(testBossID))
}

func TestBossController_HeavyHitsInOneTickStaggerOnce(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, true)
	f.tick(0.1)
	require.True(t, f.sched.Executing(testBossID))

	for range 3 {
		f.ctrl.Hit(150)
	}
	f.tick(0.1)

	assert.Equal(t, 1, f.ctrl.Staggers(), "one stagger per interrupted action")
	require.Len(t, f.done, 1)
	assert.Equal(t, action.OutcomeInterrupted, f.done[0].Outcome)
	assert.Equal(t, 550.0, f.boss.HP())
}

func TestBossController_StopCancelsAction(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 1})
	f.addMelee(t, false)
	tm := NewTickManager(f.clock, TickConfig{Rate: 10})
	tm.Register(testBossID, f.ctrl)
	tm.TickOnce()
	require.True(t, f.sched.Executing(testBossID))

	tm.Unregister(testBossID)

	assert.False(t, f.sched.Executing(testBossID))
	require.Len(t, f.done, 1)
	assert.Equal(t, action.OutcomeCancelled, f.done[0].Outcome)
	assert.Len(t, f.sched.Actions(testBossID), 1)
}
