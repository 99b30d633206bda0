package ai

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

func TestTargetController_Orbits(t *testing.T) {
	hero := model.NewActor(0x20000001, "hero", model.KindTarget, cp.Vector{X: 4}, stat.NewSheet(map[stat.Attribute]float64{
		stat.MaxHealth: 100,
	}))
	c := NewTargetController(hero, nil, TargetConfig{Orbit: 2, Speed: 1})
	c.Start()

	for range 8 {
		c.Tick(0.25)
	}

	// center is (2,0); every point of the orbit stays 2 away from it
	assert.InDelta(t, 2.0, hero.Position().Distance(cp.Vector{X: 2}), 1e-9)
	assert.InDelta(t, 1.0, hero.Position().Sub(cp.Vector{X: 2}).ToAngle(), 1e-9, "2s at 1 unit/s on radius 2 is 1 radian")
	assert.Equal(t, model.IntentionChase, c.Intention())
}

func TestTargetController_DamagesBoss(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 50})
	c := NewTargetController(f.hero, f.ctrl, TargetConfig{DPS: 20})
	c.Start()

	for range 10 {
		c.Tick(0.5)
	}

	assert.InDelta(t, 100.0, c.Dealt(), 1e-9)
	assert.InDelta(t, 900.0, f.boss.HP(), 1e-9)
	assert.Equal(t, model.IntentionAct, c.Intention())
	assert.Equal(t, 0, f.ctrl.Staggers(), "chip damage never staggers")
}

func TestTargetController_DeadTargetStops(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 50})
	c := NewTargetController(f.hero, f.ctrl, TargetConfig{DPS: 20, Orbit: 1, Speed: 1})
	c.Start()
	f.hero.TakeDamage(1000)
	before := f.hero.Position()

	c.Tick(1)

	assert.Equal(t, model.IntentionDead, c.Intention())
	assert.Equal(t, before, f.hero.Position())
	assert.Zero(t, c.Dealt())
}

func TestTargetController_StoppedDoesNothing(t *testing.T) {
	f := newBossFixture(t, cp.Vector{X: 50})
	c := NewTargetController(f.hero, f.ctrl, TargetConfig{DPS: 20})
	c.Start()
	c.Stop()

	c.Tick(1)
	require.Zero(t, c.Dealt())
	assert.Equal(t, model.IntentionIdle, c.Intention())
}
