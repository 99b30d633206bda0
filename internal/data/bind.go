package data

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
)

// RebindResult summarises what Rebind changed.
type RebindResult struct {
	Replaced []string
	Added    []string
	Removed  []string
}

type built struct {
	def  action.Definition
	body action.Body
}

// buildAll builds every body before anything touches the scheduler, so a
// bad entry leaves the actor exactly as it was.
func buildAll(reg *action.Registry, entries []ActionEntry) ([]built, error) {
	out := make([]built, 0, len(entries))
	var errs []error
	for _, e := range entries {
		body, err := reg.Build(e.Kind, action.Params(e.Params))
		if err != nil {
			errs = append(errs, fmt.Errorf("action %q: %w", e.Name, err))
			continue
		}
		out = append(out, built{def: e.Definition(), body: body})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Bind registers the actor's catalog actions with the scheduler in
// declaration order. Nothing is registered if any body fails to build.
func Bind(s *action.Scheduler, reg *action.Registry, id action.ActorID, a ActorCatalog) error {
	actions, err := buildAll(reg, a.Actions)
	if err != nil {
		return fmt.Errorf("binding actor %d: %w", id, err)
	}
	for _, b := range actions {
		if err := s.RegisterAction(id, b.def, b.body); err != nil {
			return fmt.Errorf("binding actor %d: %w", id, err)
		}
	}
	slog.Info("actions bound", "actor", id, "count", len(actions))
	return nil
}

// Rebind applies a reloaded catalog to an actor that is already bound.
//
// Actions present in both keep their cooldown history and declaration slot
// and get the new tunables and body; new actions are appended; actions
// missing from the new catalog are removed. A run already in flight
// finishes with the body it started with. Nothing changes if any body fails
// to build.
func Rebind(s *action.Scheduler, reg *action.Registry, id action.ActorID, a ActorCatalog) (RebindResult, error) {
	var res RebindResult
	actions, err := buildAll(reg, a.Actions)
	if err != nil {
		return res, fmt.Errorf("rebinding actor %d: %w", id, err)
	}

	current := make(map[string]bool)
	for _, def := range s.Actions(id) {
		current[def.Name] = true
	}

	for _, b := range actions {
		if current[b.def.Name] {
			if err := s.Replace(id, b.def, b.body); err != nil {
				return res, fmt.Errorf("rebinding actor %d: %w", id, err)
			}
			delete(current, b.def.Name)
			res.Replaced = append(res.Replaced, b.def.Name)
			continue
		}
		if err := s.RegisterAction(id, b.def, b.body); err != nil {
			return res, fmt.Errorf("rebinding actor %d: %w", id, err)
		}
		res.Added = append(res.Added, b.def.Name)
	}

	// iterate the scheduler's order so Removed is deterministic
	for _, def := range s.Actions(id) {
		if current[def.Name] {
			s.RemoveAction(id, def.Name)
			res.Removed = append(res.Removed, def.Name)
		}
	}

	slog.Info("actions rebound",
		"actor", id,
		"replaced", len(res.Replaced),
		"added", len(res.Added),
		"removed", len(res.Removed))
	return res, nil
}
