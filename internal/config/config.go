package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when ETERNAL_CONFIG is not set.
const DefaultPath = "config/simulate.yaml"

// MaxTickRate bounds tick_rate so a realtime tick interval is at least a
// millisecond.
const MaxTickRate = 1000

// Catalog sources.
const (
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Simulation holds all configuration for the headless simulation host.
type Simulation struct {
	LogLevel string `yaml:"log_level" env:"ETERNAL_LOG_LEVEL"`
	Debug    bool   `yaml:"debug"     env:"ETERNAL_DEBUG"`

	// Tick loop
	TickRate int    `yaml:"tick_rate" env:"ETERNAL_TICK_RATE"`
	Ticks    uint64 `yaml:"ticks"     env:"ETERNAL_TICKS"` // 0 runs until interrupted
	Realtime bool   `yaml:"realtime"  env:"ETERNAL_REALTIME"`

	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`

	// Pools maps a pool tag to the number of instances created up front.
	Pools map[string]int `yaml:"pools"`

	Boss    BossConfig     `yaml:"boss"`
	Targets []TargetConfig `yaml:"targets"`
}

// CatalogConfig selects where action catalogs come from.
type CatalogConfig struct {
	Source    string        `yaml:"source"     env:"ETERNAL_CATALOG_SOURCE"`
	Path      string        `yaml:"path"       env:"ETERNAL_CATALOG_PATH"`
	ScriptDir string        `yaml:"script_dir" env:"ETERNAL_SCRIPT_DIR"`
	Watch     bool          `yaml:"watch"      env:"ETERNAL_CATALOG_WATCH"`
	Debounce  time.Duration `yaml:"debounce"   env:"ETERNAL_CATALOG_DEBOUNCE"`
	// Seed writes the YAML catalog into the database before loading it.
	Seed bool `yaml:"seed" env:"ETERNAL_CATALOG_SEED"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"      env:"ETERNAL_DB_HOST"`
	Port     int    `yaml:"port"      env:"ETERNAL_DB_PORT"`
	User     string `yaml:"user"      env:"ETERNAL_DB_USER"`
	Password string `yaml:"password"  env:"ETERNAL_DB_PASSWORD"`
	DBName   string `yaml:"dbname"    env:"ETERNAL_DB_NAME"`
	SSLMode  string `yaml:"sslmode"   env:"ETERNAL_DB_SSLMODE"`
	MaxConns int32  `yaml:"max_conns" env:"ETERNAL_DB_MAX_CONNS"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// BossConfig describes the boss spawned by the host.
type BossConfig struct {
	Name string `yaml:"name"`
	// Actor is the catalog entry whose actions the boss gets.
	Actor           string             `yaml:"actor"`
	X               float64            `yaml:"x"`
	Y               float64            `yaml:"y"`
	Stats           map[string]float64 `yaml:"stats"`
	HoldDistance    float64            `yaml:"hold_distance"`
	StaggerFraction float64            `yaml:"stagger_fraction"`
	Equipment       []EquipmentConfig  `yaml:"equipment"`
}

// EquipmentConfig is one item applied to the boss sheet as a single source.
type EquipmentConfig struct {
	Name    string        `yaml:"name"`
	Bonuses []BonusConfig `yaml:"bonuses"`
}

// BonusConfig is one modifier granted by an item.
type BonusConfig struct {
	Attribute string  `yaml:"attribute"`
	Kind      string  `yaml:"kind"`
	Value     float64 `yaml:"value"`
}

// TargetConfig describes a target dummy. A target with Orbit > 0 circles
// its start point at Speed units per second.
type TargetConfig struct {
	Name      string  `yaml:"name"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	MaxHealth float64 `yaml:"max_health"`
	Armor     float64 `yaml:"armor"`
	Speed     float64 `yaml:"speed"`
	Orbit     float64 `yaml:"orbit"`
	// DPS is the damage the target deals to the boss each second.
	DPS float64 `yaml:"dps"`
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel: "info",
		TickRate: 30,
		Ticks:    1800,
		Catalog: CatalogConfig{
			Source:    SourceYAML,
			Path:      "config/catalog.yaml",
			ScriptDir: "config/scripts",
			Debounce:  250 * time.Millisecond,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "eternal",
			Password: "eternal",
			DBName:   "eternal",
			SSLMode:  "disable",
			MaxConns: 4,
		},
		Pools: map[string]int{
			"mark":   4,
			"impact": 4,
			"bolt":   16,
			"nova":   8,
		},
		Boss: BossConfig{
			Name:  "Warden",
			Actor: "warden",
			Stats: map[string]float64{
				"max_health":       2000,
				"damage":           25,
				"speed":            3,
				"radius":           2,
				"projectile_count": 3,
			},
			HoldDistance:    1.5,
			StaggerFraction: 0.1,
		},
		Targets: []TargetConfig{
			{Name: "dummy", X: 6, MaxHealth: 500, Speed: 2, Orbit: 4, DPS: 10},
		},
	}
}

// Path returns the config file path from ETERNAL_CONFIG, or DefaultPath.
func Path() string {
	if p := os.Getenv("ETERNAL_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads simulation config from a YAML file and applies ETERNAL_*
// environment overrides. If the file doesn't exist, defaults are used.
func Load(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the host cannot run with.
func (s Simulation) Validate() error {
	var errs []error
	if s.TickRate <= 0 || s.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("tick_rate must be in [1,%d], got %d", MaxTickRate, s.TickRate))
	}
	switch s.Catalog.Source {
	case SourceYAML, SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog source %q", s.Catalog.Source))
	}
	if s.Catalog.Source == SourceYAML && s.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path is required for the yaml source"))
	}
	if s.Catalog.Debounce < 0 {
		errs = append(errs, fmt.Errorf("catalog.debounce must not be negative, got %s", s.Catalog.Debounce))
	}
	if s.Boss.Actor == "" {
		errs = append(errs, errors.New("boss.actor is required"))
	}
	if s.Boss.StaggerFraction < 0 || s.Boss.StaggerFraction > 1 {
		errs = append(errs, fmt.Errorf("boss.stagger_fraction must be in [0,1], got %g", s.Boss.StaggerFraction))
	}
	for tag, n := range s.Pools {
		if n < 0 {
			errs = append(errs, fmt.Errorf("pools.%s must not be negative, got %d", tag, n))
		}
	}
	for i, t := range s.Targets {
		if t.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("targets[%d] (%s): max_health must be positive", i, t.Name))
		}
	}
	return errors.Join(errs...)
}
