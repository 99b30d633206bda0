package model

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

func newTestBoss(t *testing.T) *Actor {
	t.Helper()
	sheet := stat.NewSheet(map[stat.Attribute]float64{
		stat.MaxHealth: 1000,
		stat.Speed:     2,
	})
	return NewActor(7, "Warden", KindBoss, cp.Vector{}, sheet)
}

func TestNewActor_StartsAtFullHealth(t *testing.T) {
	a := newTestBoss(t)
	assert.Equal(t, 1000.0, a.HP())
	assert.Equal(t, 1.0, a.HealthFraction())
	assert.Equal(t, "boss", a.Kind().String())
	assert.False(t, a.IsDead())
}

func TestActor_MaxHPFollowsSheet(t *testing.T) {
	a := newTestBoss(t)
	a.SetHP(500)
	assert.Equal(t, 0.5, a.HealthFraction())

	relic := stat.NewSource(stat.SourceEquipment, "relic")
	a.Sheet().Apply(relic, []stat.Bonus{{Attribute: stat.MaxHealth, Value: 1, Kind: stat.Multiplicative}})
	assert.Equal(t, 2000.0, a.MaxHP())
	assert.Equal(t, 0.25, a.HealthFraction())
}

func TestActor_TakeDamage(t *testing.T) {
	tests := []struct {
		name  string
		armor float64
		raw   float64
		want  float64
	}{
		{"no armor", 0, 100, 100},
		{"armor halves at 100", 100, 100, 50},
		{"negative raw ignored", 0, -5, 0},
		{"capped at hp", 0, 5000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestBoss(t)
			a.Sheet().Stat(stat.Armor).SetBase(tt.armor)
			assert.Equal(t, tt.want, a.TakeDamage(tt.raw))
		})
	}
}

func TestActor_HealAndDeath(t *testing.T) {
	a := newTestBoss(t)
	a.TakeDamage(300)
	assert.Equal(t, 300.0, a.Heal(500))
	assert.Equal(t, 1000.0, a.HP())

	a.TakeDamage(1000)
	assert.True(t, a.IsDead())
	assert.Zero(t, a.Heal(10))
	assert.Zero(t, a.TakeDamage(10))
}

func TestActor_MoveToward(t *testing.T) {
	a := newTestBoss(t)
	dest := cp.Vector{X: 10}

	arrived := a.MoveToward(dest, 1, 1)
	assert.False(t, arrived)
	assert.InDelta(t, 2.0, a.Position().X, 1e-9)

	arrived = a.MoveToward(dest, 1, 10)
	assert.True(t, arrived)
	assert.InDelta(t, 9.0, a.Position().X, 1e-9)
}

func TestActor_NilSheet(t *testing.T) {
	a := NewActor(1, "dummy", KindTarget, cp.Vector{}, nil)
	require.NotNil(t, a.Sheet())
	assert.Zero(t, a.HealthFraction())
	assert.True(t, a.IsDead())
}

func TestEffect_Lifecycle(t *testing.T) {
	e := NewEffect("impact")
	assert.False(t, e.Active())

	e.Activate(7, cp.Vector{X: 1, Y: 1}, 2, 50, 0.5)
	assert.True(t, e.Hits(cp.Vector{X: 2, Y: 1}))
	assert.False(t, e.Hits(cp.Vector{X: 5, Y: 5}))
	assert.True(t, e.Step(0.25))
	assert.False(t, e.Step(0.25))

	e.Deactivate()
	e.Detach()
	assert.False(t, e.Active())
	assert.Zero(t, e.Owner())
	assert.False(t, e.Hits(cp.Vector{X: 1, Y: 1}))

	e.Destroy()
	assert.True(t, e.Destroyed())
}

func TestProjectile_LaunchStepCollide(t *testing.T) {
	target := NewActor(2, "hero", KindTarget, cp.Vector{X: 3},
		stat.NewSheet(map[stat.Attribute]float64{stat.MaxHealth: 100}))

	p := NewProjectile()
	p.Launch(7, cp.Vector{}, cp.Vector{X: 5}, 2, 25, 0.5, 4)
	assert.Equal(t, cp.Vector{X: 2}, p.Velocity())

	assert.True(t, p.Step(1))
	assert.Zero(t, p.Collide(target))
	assert.True(t, p.Step(0.5))
	assert.Equal(t, 25.0, p.Collide(target))
	assert.False(t, p.Active(), "projectile goes inert after a hit")
	assert.Zero(t, p.Collide(target))
	assert.Equal(t, 75.0, target.HP())
}

func TestProjectile_Expires(t *testing.T) {
	p := NewProjectile()
	p.Launch(1, cp.Vector{}, cp.Vector{Y: 1}, 1, 1, 1, 1)
	assert.False(t, p.Step(1))
	p.Deactivate()
	assert.False(t, p.Step(1))
}
