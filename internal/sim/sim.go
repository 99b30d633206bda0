// Package sim assembles a headless boss encounter from configuration: the
// shared clock, pools, scheduler, world, spawner and controllers, with the
// boss's actions bound from an action catalog.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/ai"
	"github.com/Rim-SeungJae/eternal-survival/internal/config"
	"github.com/Rim-SeungJae/eternal-survival/internal/data"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/pattern"
	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/spawn"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
	"github.com/Rim-SeungJae/eternal-survival/internal/world"
)

// Options are the collaborators of a Simulation.
type Options struct {
	Config  config.Simulation
	Catalog data.Source
	Scripts pattern.ScriptLoader
}

// Simulation is one boss encounter driven by a tick manager.
type Simulation struct {
	cfg     config.Simulation
	source  data.Source
	clock   *action.ManualClock
	pool    *pool.Pool
	sched   *action.Scheduler
	reg     *action.Registry
	world   *world.World
	ids     *world.IDGenerator
	spawner *spawn.Spawner
	ticks   *ai.TickManager

	boss     *model.Actor
	bossCtrl *ai.BossController
	targets  []*ai.TargetController

	outcomes map[string]map[action.Outcome]int
	reloads  int
}

// New builds a simulation and binds the boss's catalog actions.
func New(ctx context.Context, opts Options) (*Simulation, error) {
	if opts.Catalog == nil {
		return nil, errors.New("building simulation: nil catalog source")
	}
	cfg := opts.Config

	s := &Simulation{
		cfg:      cfg,
		source:   opts.Catalog,
		clock:    action.NewManualClock(0),
		pool:     pool.New(),
		reg:      action.NewRegistry(),
		world:    world.New(),
		ids:      world.NewIDGenerator(),
		outcomes: make(map[string]map[action.Outcome]int),
	}
	s.sched = action.New(s.clock,
		action.WithPool(s.pool),
		action.WithCompletionHook(s.recordCompletion))
	s.spawner = spawn.New(s.pool, s.world)
	s.ticks = ai.NewTickManager(s.clock, ai.TickConfig{
		Rate:     cfg.TickRate,
		Realtime: cfg.Realtime,
		MaxTicks: cfg.Ticks,
	})

	if err := pattern.RegisterPools(s.pool, cfg.Pools); err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}
	if err := pattern.Register(s.reg, pattern.Deps{
		World:   s.world,
		Spawner: s.spawner,
		Scripts: opts.Scripts,
	}); err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	if err := s.spawnBoss(cfg.Boss); err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}
	for _, t := range cfg.Targets {
		if err := s.spawnTarget(t); err != nil {
			return nil, fmt.Errorf("building simulation: %w", err)
		}
	}

	catalog, err := s.source.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}
	actions, ok := catalog.Actor(cfg.Boss.Actor)
	if !ok {
		return nil, fmt.Errorf("building simulation: catalog has no actor %q", cfg.Boss.Actor)
	}
	if err := data.Bind(s.sched, s.reg, s.bossID(), actions); err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	s.ticks.OnTick(s.afterTick)

	slog.Info("simulation ready",
		"boss", s.boss.Name(),
		"actions", len(actions.Actions),
		"targets", len(s.targets),
		"kinds", s.reg.Kinds())
	return s, nil
}

func (s *Simulation) spawnBoss(cfg config.BossConfig) error {
	bases := make(map[stat.Attribute]float64, len(cfg.Stats))
	for name, v := range cfg.Stats {
		attr, err := stat.ParseAttribute(name)
		if err != nil {
			return fmt.Errorf("boss stats: %w", err)
		}
		bases[attr] = v
	}
	sheet := stat.NewSheet(bases)

	for _, item := range cfg.Equipment {
		bonuses := make([]stat.Bonus, 0, len(item.Bonuses))
		for _, b := range item.Bonuses {
			attr, err := stat.ParseAttribute(b.Attribute)
			if err != nil {
				return fmt.Errorf("equipment %s: %w", item.Name, err)
			}
			kind, err := stat.ParseModKind(b.Kind)
			if err != nil {
				return fmt.Errorf("equipment %s: %w", item.Name, err)
			}
			bonuses = append(bonuses, stat.Bonus{Attribute: attr, Value: b.Value, Kind: kind})
		}
		sheet.Apply(s.ids.NewSource(stat.SourceEquipment, item.Name), bonuses)
	}

	s.boss = model.NewActor(s.ids.NextBossID(), cfg.Name, model.KindBoss, cp.Vector{X: cfg.X, Y: cfg.Y}, sheet)
	if err := s.world.Add(s.boss); err != nil {
		return err
	}
	s.sched.RegisterActor(s.bossID(), sheet)

	s.bossCtrl = ai.NewBossController(s.boss, s.world, s.sched, ai.BossConfig{
		HoldDistance:    cfg.HoldDistance,
		StaggerFraction: cfg.StaggerFraction,
	})
	s.ticks.Register(s.boss.ID(), s.bossCtrl)
	return nil
}

func (s *Simulation) spawnTarget(cfg config.TargetConfig) error {
	sheet := stat.NewSheet(map[stat.Attribute]float64{
		stat.MaxHealth: cfg.MaxHealth,
		stat.Armor:     cfg.Armor,
		stat.Speed:     cfg.Speed,
	})
	target := model.NewActor(s.ids.NextTargetID(), cfg.Name, model.KindTarget, cp.Vector{X: cfg.X, Y: cfg.Y}, sheet)
	if err := s.world.Add(target); err != nil {
		return err
	}
	ctrl := ai.NewTargetController(target, s.bossCtrl, ai.TargetConfig{
		Orbit: cfg.Orbit,
		Speed: cfg.Speed,
		DPS:   cfg.DPS,
	})
	s.ticks.Register(target.ID(), ctrl)
	s.targets = append(s.targets, ctrl)
	return nil
}

// Run drives the tick loop until the encounter ends, the tick limit is
// reached or ctx is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	defer s.spawner.ReleaseAll()
	return s.ticks.Start(ctx)
}

// Stop ends Run.
func (s *Simulation) Stop() { s.ticks.Stop() }

// Step runs n ticks on the calling goroutine.
func (s *Simulation) Step(n int) {
	for range n {
		s.ticks.TickOnce()
	}
}

// Reload re-reads the catalog and rebinds the boss's actions. It must run on
// the tick goroutine; use ScheduleReload from anywhere else.
func (s *Simulation) Reload(ctx context.Context) (data.RebindResult, error) {
	catalog, err := s.source.LoadCatalog(ctx)
	if err != nil {
		return data.RebindResult{}, fmt.Errorf("reloading catalog: %w", err)
	}
	actions, ok := catalog.Actor(s.cfg.Boss.Actor)
	if !ok {
		return data.RebindResult{}, fmt.Errorf("reloading catalog: no actor %q", s.cfg.Boss.Actor)
	}
	res, err := data.Rebind(s.sched, s.reg, s.bossID(), actions)
	if err != nil {
		return res, fmt.Errorf("reloading catalog: %w", err)
	}
	s.reloads++
	return res, nil
}

// ScheduleReload queues a Reload for the start of the next tick. A failed
// reload is logged and the previous actions stay bound.
func (s *Simulation) ScheduleReload(ctx context.Context) bool {
	return s.ticks.Post(ctx, func() {
		res, err := s.Reload(ctx)
		if err != nil {
			slog.Warn("catalog reload rejected", "error", err)
			return
		}
		slog.Info("catalog reloaded",
			"replaced", res.Replaced,
			"added", res.Added,
			"removed", res.Removed)
	})
}

// Scheduler returns the action scheduler.
func (s *Simulation) Scheduler() *action.Scheduler { return s.sched }

// Boss returns the boss actor.
func (s *Simulation) Boss() *model.Actor { return s.boss }

// BossController returns the boss's controller.
func (s *Simulation) BossController() *ai.BossController { return s.bossCtrl }

// World returns the actor registry.
func (s *Simulation) World() *world.World { return s.world }

// Pool returns the instance pool.
func (s *Simulation) Pool() *pool.Pool { return s.pool }

// Ticks returns the tick manager.
func (s *Simulation) Ticks() *ai.TickManager { return s.ticks }

func (s *Simulation) bossID() action.ActorID { return action.ActorID(s.boss.ID()) }

func (s *Simulation) recordCompletion(c action.Completion) {
	byOutcome, ok := s.outcomes[c.Action]
	if !ok {
		byOutcome = make(map[action.Outcome]int, 4)
		s.outcomes[c.Action] = byOutcome
	}
	byOutcome[c.Outcome]++
}

// afterTick advances spawned instances, takes fallen targets out of the
// encounter and ends it once the boss or every target is dead.
func (s *Simulation) afterTick(tick uint64, now float64) {
	s.spawner.Tick(s.ticks.Step())
	s.removeFallen(tick)

	if s.boss.IsDead() {
		slog.Info("boss defeated", "tick", tick, "t", now)
		s.ticks.Stop()
		return
	}
	if len(s.targets) > 0 && s.livingTargets() == 0 {
		slog.Info("all targets defeated", "tick", tick, "t", now, "boss_hp", s.boss.HP())
		s.ticks.Stop()
	}
}

// removeFallen drops dead targets from the world and the tick loop. Their
// controllers stay listed for the report.
func (s *Simulation) removeFallen(tick uint64) {
	for _, t := range s.targets {
		a := t.Target()
		if !a.IsDead() {
			continue
		}
		if _, ok := s.world.Actor(a.ID()); !ok {
			continue
		}
		s.world.Remove(a.ID())
		s.ticks.Unregister(a.ID())
		slog.Info("target defeated", "target", a.Name(), "tick", tick, "dealt", t.Dealt())
	}
}

func (s *Simulation) livingTargets() int {
	n := 0
	for _, t := range s.targets {
		if !t.Target().IsDead() {
			n++
		}
	}
	return n
}

// Report summarises the encounter so far. Outcomes counts finished runs
// per action name and outcome.
type Report struct {
	Ticks        uint64
	Time         float64
	BossHP       float64
	BossMaxHP    float64
	BossStats    map[stat.Attribute]float64
	Staggers     int
	TargetsAlive int
	Reloads      int
	Outcomes     map[string]map[action.Outcome]int
	Spawner      spawn.Stats
	Pools        []pool.Stats
}

// Report returns a snapshot of the encounter.
func (s *Simulation) Report() Report {
	r := Report{
		Ticks:        s.ticks.Ticks(),
		Time:         s.clock.Now(),
		BossHP:       s.boss.HP(),
		BossMaxHP:    s.boss.MaxHP(),
		Staggers:     s.bossCtrl.Staggers(),
		TargetsAlive: s.livingTargets(),
		Reloads:      s.reloads,
		Outcomes:     make(map[string]map[action.Outcome]int, len(s.outcomes)),
		Spawner:      s.spawner.Stats(),
		BossStats:    s.boss.Sheet().Snapshot(),
	}
	for name, byOutcome := range s.outcomes {
		r.Outcomes[name] = maps.Clone(byOutcome)
	}
	for _, tag := range s.pool.Tags() {
		r.Pools = append(r.Pools, s.pool.Stats(tag))
	}
	return r
}

// Log writes the report through slog.
func (r Report) Log() {
	slog.Info("encounter summary",
		"ticks", r.Ticks,
		"t", r.Time,
		"boss_hp", r.BossHP,
		"boss_max_hp", r.BossMaxHP,
		"staggers", r.Staggers,
		"targets_alive", r.TargetsAlive,
		"reloads", r.Reloads,
		"projectile_hits", r.Spawner.Hits,
		"projectile_damage", r.Spawner.Damage)
	for name, byOutcome := range r.Outcomes {
		args := []any{"action", name}
		for o, n := range byOutcome {
			args = append(args, o.String(), n)
		}
		slog.Info("action outcomes", args...)
	}
	for _, p := range r.Pools {
		slog.Info("pool usage",
			"tag", p.Tag,
			"total", p.Total,
			"free", p.Free,
			"in_use", p.InUse,
			"created", p.Created)
	}
}
