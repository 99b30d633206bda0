package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSimulation(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
tick_rate: 60
ticks: 120
catalog:
  source: yaml
  path: catalogs/boss.yaml
  watch: true
  debounce: 100ms
boss:
  name: Colossus
  actor: colossus
  equipment:
    - name: cleaver
      bonuses:
        - {attribute: damage, kind: flat, value: 5}
targets:
  - {name: a, x: 3, max_health: 50}
  - {name: b, y: -3, max_health: 80, dps: 4}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, uint64(120), cfg.Ticks)
	assert.Equal(t, "catalogs/boss.yaml", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 100*time.Millisecond, cfg.Catalog.Debounce)
	assert.Equal(t, "Colossus", cfg.Boss.Name)
	require.Len(t, cfg.Boss.Equipment, 1)
	assert.Equal(t, BonusConfig{Attribute: "damage", Kind: "flat", Value: 5}, cfg.Boss.Equipment[0].Bonuses[0])
	require.Len(t, cfg.Targets, 2)
	assert.Equal(t, 4.0, cfg.Targets[1].DPS)

	// untouched sections keep their defaults
	assert.Equal(t, DefaultSimulation().Database, cfg.Database)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "tick_rate: 60\n")
	t.Setenv("ETERNAL_TICK_RATE", "20")
	t.Setenv("ETERNAL_LOG_LEVEL", "warn")
	t.Setenv("ETERNAL_CATALOG_SOURCE", "postgres")
	t.Setenv("ETERNAL_DB_HOST", "db.internal")
	t.Setenv("ETERNAL_DB_PORT", "6543")
	t.Setenv("ETERNAL_CATALOG_DEBOUNCE", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.TickRate)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, time.Second, cfg.Catalog.Debounce)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("ETERNAL_TICK_RATE", "fast")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "tick_rate: [1, 2\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Simulation)
		wantErr string
	}{
		{"defaults", func(*Simulation) {}, ""},
		{"zero tick rate", func(s *Simulation) { s.TickRate = 0 }, "tick_rate"},
		{"max tick rate", func(s *Simulation) { s.TickRate = MaxTickRate }, ""},
		{"tick rate too high", func(s *Simulation) { s.TickRate = 2_000_000_000 }, "tick_rate"},
		{"unknown source", func(s *Simulation) { s.Catalog.Source = "s3" }, "unknown catalog source"},
		{"yaml without path", func(s *Simulation) { s.Catalog.Path = "" }, "catalog.path"},
		{"postgres without path", func(s *Simulation) {
			s.Catalog.Source = SourcePostgres
			s.Catalog.Path = ""
		}, ""},
		{"no boss actor", func(s *Simulation) { s.Boss.Actor = "" }, "boss.actor"},
		{"stagger above one", func(s *Simulation) { s.Boss.StaggerFraction = 1.5 }, "stagger_fraction"},
		{"negative prewarm", func(s *Simulation) { s.Pools["bolt"] = -1 }, "pools.bolt"},
		{"dead target", func(s *Simulation) { s.Targets[0].MaxHealth = 0 }, "max_health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSimulation()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", d.DSN())
}

func TestPath(t *testing.T) {
	t.Setenv("ETERNAL_CONFIG", "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv("ETERNAL_CONFIG", "/etc/eternal.yaml")
	assert.Equal(t, "/etc/eternal.yaml", Path())
}
