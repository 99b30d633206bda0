package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
)

// Catalog maps an actor template name to the actions it can perform.
type Catalog struct {
	Actors map[string]ActorCatalog `yaml:"actors" json:"actors" jsonschema:"required"`
}

// ActorCatalog lists one actor's actions in declaration order.
// Declaration order breaks priority ties.
type ActorCatalog struct {
	Actions []ActionEntry `yaml:"actions" json:"actions" jsonschema:"required,minItems=1"`
}

// ActionEntry is one catalog action: its scheduling tunables plus the kind
// and params its body is built from.
//
// Omitted windows are open: max_range defaults to unbounded, min_health to 0
// and max_health to 1.
type ActionEntry struct {
	Name          string         `yaml:"name"                 json:"name"                 jsonschema:"required,minLength=1"`
	Kind          string         `yaml:"kind"                 json:"kind"                 jsonschema:"required,enum=strike,enum=barrage,enum=nova,enum=script"`
	Cooldown      float64        `yaml:"cooldown"             json:"cooldown"             jsonschema:"minimum=0"`
	Priority      int            `yaml:"priority"             json:"priority"`
	MinRange      float64        `yaml:"min_range"            json:"min_range"            jsonschema:"minimum=0"`
	MaxRange      *float64       `yaml:"max_range,omitempty"  json:"max_range,omitempty"  jsonschema:"minimum=0"`
	MinHealth     float64        `yaml:"min_health"           json:"min_health"           jsonschema:"minimum=0,maximum=1"`
	MaxHealth     *float64       `yaml:"max_health,omitempty" json:"max_health,omitempty" jsonschema:"minimum=0,maximum=1"`
	Interruptible bool           `yaml:"interruptible"        json:"interruptible"`
	Params        map[string]any `yaml:"params,omitempty"     json:"params,omitempty"`
}

// Definition converts the entry into scheduler tunables.
func (e ActionEntry) Definition() action.Definition {
	maxRange := math.Inf(1)
	if e.MaxRange != nil {
		maxRange = *e.MaxRange
	}
	maxHealth := 1.0
	if e.MaxHealth != nil {
		maxHealth = *e.MaxHealth
	}
	return action.Definition{
		Name:          e.Name,
		Cooldown:      e.Cooldown,
		Priority:      e.Priority,
		MinRange:      e.MinRange,
		MaxRange:      maxRange,
		MinHealthFrac: e.MinHealth,
		MaxHealthFrac: maxHealth,
		Interruptible: e.Interruptible,
	}
}

// Source supplies catalogs to the host.
type Source interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

// FileSource is a Source backed by a YAML file.
type FileSource string

// LoadCatalog implements Source.
func (f FileSource) LoadCatalog(context.Context) (*Catalog, error) {
	return LoadCatalog(string(f))
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every structural problem in the catalog at once.
// Kind-specific params are checked later, when bodies are built.
func (c *Catalog) Validate() error {
	if len(c.Actors) == 0 {
		return errors.New("catalog has no actors")
	}
	var errs []error
	for _, name := range c.ActorNames() {
		errs = append(errs, validateActor(name, c.Actors[name]))
	}
	return errors.Join(errs...)
}

func validateActor(name string, a ActorCatalog) error {
	if name == "" {
		return errors.New("actor with empty name")
	}
	if len(a.Actions) == 0 {
		return fmt.Errorf("actor %s: no actions", name)
	}
	var errs []error
	seen := make(map[string]bool, len(a.Actions))
	for i, e := range a.Actions {
		where := fmt.Sprintf("actor %s action[%d] %q", name, i, e.Name)
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("%s: empty name", where))
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name", where))
		}
		seen[e.Name] = true
		if e.Kind == "" {
			errs = append(errs, fmt.Errorf("%s: empty kind", where))
		}
		if e.Cooldown < 0 {
			errs = append(errs, fmt.Errorf("%s: negative cooldown", where))
		}

		def := e.Definition()
		if def.MinRange < 0 || def.MinRange > def.MaxRange {
			errs = append(errs, fmt.Errorf("%s: range window [%g, %g] is empty", where, def.MinRange, def.MaxRange))
		}
		if def.MinHealthFrac < 0 || def.MaxHealthFrac > 1 || def.MinHealthFrac > def.MaxHealthFrac {
			errs = append(errs, fmt.Errorf("%s: health window [%g, %g] is outside [0, 1] or empty",
				where, def.MinHealthFrac, def.MaxHealthFrac))
		}
	}
	return errors.Join(errs...)
}

// ActorNames returns the actor template names in sorted order.
func (c *Catalog) ActorNames() []string {
	names := make([]string, 0, len(c.Actors))
	for name := range c.Actors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Actor returns the actions of one actor template.
func (c *Catalog) Actor(name string) (ActorCatalog, bool) {
	a, ok := c.Actors[name]
	return a, ok
}
