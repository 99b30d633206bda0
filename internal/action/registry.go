package action

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	// ErrUnknownKind is returned by Registry.Build for unregistered kinds.
	ErrUnknownKind = errors.New("unknown action kind")
	// ErrKindExists is returned when a kind is registered twice.
	ErrKindExists = errors.New("action kind already registered")
)

// Params carries the data-driven arguments of one action body.
// Values come from YAML or JSON, so numbers may arrive as int, float64
// or string.
type Params map[string]any

// Float returns key as float64, or def when missing or not numeric.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns key as int, or def when missing or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// String returns key as string, or def when missing.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Bool returns key as bool, or def when missing.
func (p Params) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// BodyFactory builds a body from catalog params.
type BodyFactory func(params Params) (Body, error)

// Registry maps an action kind to the factory that builds its body.
// It is populated once at startup and then only read.
type Registry struct {
	factories map[string]BodyFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]BodyFactory, 8)}
}

// Register adds a factory under kind.
func (r *Registry) Register(kind string, factory BodyFactory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("registering action kind %q: empty kind or nil factory", kind)
	}
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("registering action kind %q: %w", kind, ErrKindExists)
	}
	r.factories[kind] = factory
	return nil
}

// Build creates a body of the given kind.
func (r *Registry) Build(kind string, params Params) (Body, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return Body{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	body, err := factory(params)
	if err != nil {
		return Body{}, fmt.Errorf("building %s body: %w", kind, err)
	}
	return body, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
