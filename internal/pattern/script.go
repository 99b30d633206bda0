package pattern

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// Scripts define `enter := func(engine, phase) { ... }`. The dispatcher
// below is appended to every script and calls it when a phase begins.
const scriptDispatch = `
if __hook == "enter" {
	enter(__engine, __phase)
}
`

const (
	scratchVM  = "script.vm"
	scratchKey = "script.var."
)

// script runs a tengo script at the start of every declared phase.
// Values kept with set(key, value) survive until the run ends.
//
// Params: script (name resolved through Deps.Scripts) or source (inline),
// phases (list of {name, duration}).
func (d Deps) script(p action.Params) (action.Body, error) {
	name := p.String("script", "")
	src := []byte(p.String("source", ""))
	if name != "" {
		if d.Scripts == nil {
			return action.Body{}, fmt.Errorf("script %q: no script loader", name)
		}
		b, err := d.Scripts(name)
		if err != nil {
			return action.Body{}, fmt.Errorf("loading script %q: %w", name, err)
		}
		src = b
	} else {
		name = "inline"
	}
	if len(strings.TrimSpace(string(src))) == 0 {
		return action.Body{}, fmt.Errorf("script %q: empty source", name)
	}

	specs, err := scriptPhases(p["phases"])
	if err != nil {
		return action.Body{}, fmt.Errorf("script %q: %w", name, err)
	}

	compiled, err := compileScript(src)
	if err != nil {
		return action.Body{}, fmt.Errorf("compiling script %q: %w", name, err)
	}

	enter := func(r *action.Run) error {
		vm, ok := r.Scratch()[scratchVM].(*tengo.Compiled)
		if !ok {
			vm = compiled.Clone()
			r.Scratch()[scratchVM] = vm
		}

		var abort string
		engine := d.scriptEngine(r, &abort)
		if err := vm.Set("__hook", "enter"); err != nil {
			return err
		}
		if err := vm.Set("__engine", engine); err != nil {
			return err
		}
		if err := vm.Set("__phase", r.PhaseName()); err != nil {
			return err
		}
		if err := vm.Run(); err != nil {
			return fmt.Errorf("script %q phase %s: %w", name, r.PhaseName(), err)
		}
		if abort != "" {
			return fmt.Errorf("%w: %s", action.ErrAbort, abort)
		}
		return nil
	}

	phases := make([]action.Phase, 0, len(specs))
	for _, s := range specs {
		phases = append(phases, action.Phase{
			Name:     s.name,
			Duration: s.duration,
			Enter:    enter,
		})
	}
	return action.Body{Phases: phases}, nil
}

// CompileScript checks that src is a valid action script.
func CompileScript(src []byte) error {
	_, err := compileScript(src)
	return err
}

func compileScript(src []byte) (*tengo.Compiled, error) {
	s := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = s.Add("__hook", "")
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__phase", "")
	s.SetImports(stdlib.GetModuleMap("math", "text", "fmt"))
	return s.Compile()
}

type phaseSpec struct {
	name     string
	duration float64
}

func scriptPhases(v any) ([]phaseSpec, error) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, errors.New("phases: expected a non-empty list")
	}
	out := make([]phaseSpec, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("phases[%d]: expected a mapping", i)
		}
		p := action.Params(m)
		spec := phaseSpec{
			name:     p.String("name", fmt.Sprintf("phase-%d", i+1)),
			duration: p.Float("duration", 0),
		}
		if spec.duration < 0 {
			return nil, fmt.Errorf("phases[%d]: negative duration", i)
		}
		out = append(out, spec)
	}
	return out, nil
}

// scriptEngine exposes the run to the script. abort receives the reason
// passed to abort().
func (d Deps) scriptEngine(r *action.Run, abort *string) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["spawn"] = &tengo.UserFunction{Name: "spawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		tag := objectAsString(args[0])
		scale := 0.0
		if len(args) > 1 {
			scale, _ = tengo.ToFloat64(args[1])
		}
		if d.spawnFromScript(r, tag, scale) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["stat"] = &tengo.UserFunction{Name: "stat", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		attr, err := stat.ParseAttribute(objectAsString(args[0]))
		if err != nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: r.Stat(attr)}, nil
	}}

	values["distance"] = &tengo.UserFunction{Name: "distance", Value: func(...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: r.State().DistanceToTarget}, nil
	}}

	values["health"] = &tengo.UserFunction{Name: "health", Value: func(...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: r.State().HealthFraction}, nil
	}}

	values["heal"] = &tengo.UserFunction{Name: "heal", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		amount, _ := tengo.ToFloat64(args[0])
		boss, ok := d.World.Actor(uint32(r.Actor()))
		if !ok {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: boss.Heal(amount)}, nil
	}}

	values["now"] = &tengo.UserFunction{Name: "now", Value: func(...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: r.Now()}, nil
	}}

	values["phase"] = &tengo.UserFunction{Name: "phase", Value: func(...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: r.PhaseName()}, nil
	}}

	values["abort"] = &tengo.UserFunction{Name: "abort", Value: func(args ...tengo.Object) (tengo.Object, error) {
		reason := "aborted by script"
		if len(args) > 0 {
			if s := strings.TrimSpace(objectAsString(args[0])); s != "" {
				reason = s
			}
		}
		*abort = reason
		return tengo.TrueValue, nil
	}}

	values["set"] = &tengo.UserFunction{Name: "set", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		r.Scratch()[scratchKey+objectAsString(args[0])] = args[1]
		return args[1], nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if v, ok := r.Scratch()[scratchKey+objectAsString(args[0])].(tengo.Object); ok {
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return tengo.UndefinedValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		slog.Info("action script",
			"actor", r.Actor(),
			"action", r.Definition().Name,
			"phase", r.PhaseName(),
			"msg", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// spawnFromScript places an effect on the target, or launches a projectile
// at it. A positive scale makes effects deal Damage*scale on placement.
func (d Deps) spawnFromScript(r *action.Run, tag string, scale float64) bool {
	boss, target, err := d.engage(r)
	if err != nil {
		return false
	}
	h, inst, ok := r.Spawn(tag)
	if !ok {
		return false
	}
	amount := r.Stat(stat.Damage) * scale

	switch v := inst.(type) {
	case *model.Effect:
		area := statOr(r, stat.Radius, 1)
		v.Activate(boss.ID(), target.Position(), area, amount, 0.5)
		d.damageArea(target.Position(), area, amount)
	case *model.Projectile:
		dir := target.Position().Sub(boss.Position())
		v.Launch(boss.ID(), boss.Position(), dir, 8, amount, 0.4, 3)
	}
	d.leave(r, h)
	return true
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
