package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rim-SeungJae/eternal-survival/internal/data"
)

// ErrScriptNotFound is returned by Script for unknown names.
var ErrScriptNotFound = errors.New("script not found")

// ActionRepository stores actor action catalogs and action scripts.
type ActionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository creates a new action catalog repository.
func NewActionRepository(pool *pgxpool.Pool) *ActionRepository {
	return &ActionRepository{pool: pool}
}

const selectActions = `
	SELECT actor, name, kind, cooldown, priority,
	       min_range, max_range, min_health, max_health,
	       interruptible, params
	FROM actor_actions`

// LoadCatalog loads every actor's actions in declaration order and
// validates the result. Implements data.Source.
func (r *ActionRepository) LoadCatalog(ctx context.Context) (*data.Catalog, error) {
	rows, err := r.pool.Query(ctx, selectActions+` ORDER BY actor, position`)
	if err != nil {
		return nil, fmt.Errorf("loading action catalog: %w", err)
	}
	defer rows.Close()

	c := &data.Catalog{Actors: make(map[string]data.ActorCatalog)}
	for rows.Next() {
		actor, e, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		a := c.Actors[actor]
		a.Actions = append(a.Actions, e)
		c.Actors[actor] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("stored action catalog: %w", err)
	}
	slog.Debug("loaded action catalog", "actors", len(c.Actors))
	return c, nil
}

// LoadActor loads one actor's actions in declaration order.
// Returns an empty catalog if the actor has none.
func (r *ActionRepository) LoadActor(ctx context.Context, actor string) (data.ActorCatalog, error) {
	var a data.ActorCatalog
	rows, err := r.pool.Query(ctx, selectActions+` WHERE actor = $1 ORDER BY position`, actor)
	if err != nil {
		return a, fmt.Errorf("loading actions of %s: %w", actor, err)
	}
	defer rows.Close()

	for rows.Next() {
		_, e, err := scanAction(rows)
		if err != nil {
			return a, fmt.Errorf("scanning action of %s: %w", actor, err)
		}
		a.Actions = append(a.Actions, e)
	}
	if err := rows.Err(); err != nil {
		return a, fmt.Errorf("iterating actions of %s: %w", actor, err)
	}
	return a, nil
}

// Actors returns the names of actors with stored actions.
func (r *ActionRepository) Actors(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT actor FROM actor_actions ORDER BY actor`)
	if err != nil {
		return nil, fmt.Errorf("listing actors: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing actors: %w", err)
	}
	return names, nil
}

// SaveActor replaces one actor's actions in a single transaction.
func (r *ActionRepository) SaveActor(ctx context.Context, actor string, a data.ActorCatalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := saveActorTx(ctx, tx, actor, a); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing actions of %s: %w", actor, err)
	}
	return nil
}

// SaveCatalog replaces the whole stored catalog in a single transaction.
// Actors missing from c are deleted.
func (r *ActionRepository) SaveCatalog(ctx context.Context, c *data.Catalog) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("saving action catalog: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM actor_actions`); err != nil {
		return fmt.Errorf("clearing action catalog: %w", err)
	}
	for _, name := range c.ActorNames() {
		if err := saveActorTx(ctx, tx, name, c.Actors[name]); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing action catalog: %w", err)
	}

	slog.Info("saved action catalog", "actors", len(c.Actors))
	return nil
}

// Script returns the source of a stored action script.
func (r *ActionRepository) Script(ctx context.Context, name string) ([]byte, error) {
	var src string
	err := r.pool.QueryRow(ctx, `SELECT source FROM action_scripts WHERE name = $1`, name).Scan(&src)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, name)
		}
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}
	return []byte(src), nil
}

// Scripts returns a script loader bound to ctx.
func (r *ActionRepository) Scripts(ctx context.Context) func(name string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return r.Script(ctx, name)
	}
}

// SaveScript inserts or replaces an action script.
func (r *ActionRepository) SaveScript(ctx context.Context, name string, src []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO action_scripts (name, source) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET source = $2, updated_at = now()`,
		name, string(src),
	)
	if err != nil {
		return fmt.Errorf("saving script %s: %w", name, err)
	}
	return nil
}

func saveActorTx(ctx context.Context, tx pgx.Tx, actor string, a data.ActorCatalog) error {
	if _, err := tx.Exec(ctx, `DELETE FROM actor_actions WHERE actor = $1`, actor); err != nil {
		return fmt.Errorf("deleting old actions of %s: %w", actor, err)
	}
	if len(a.Actions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, e := range a.Actions {
		params := e.Params
		if params == nil {
			params = map[string]any{}
		}
		batch.Queue(
			`INSERT INTO actor_actions
			 (actor, position, name, kind, cooldown, priority,
			  min_range, max_range, min_health, max_health, interruptible, params)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			actor, i, e.Name, e.Kind, e.Cooldown, e.Priority,
			e.MinRange, e.MaxRange, e.MinHealth, e.MaxHealth, e.Interruptible, params,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range a.Actions {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("inserting actions of %s: %w", actor, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing action batch of %s: %w", actor, err)
	}

	slog.Debug("saved actor actions", "actor", actor, "count", len(a.Actions))
	return nil
}

func scanAction(rows pgx.Rows) (string, data.ActionEntry, error) {
	var (
		actor string
		e     data.ActionEntry
	)
	err := rows.Scan(
		&actor, &e.Name, &e.Kind, &e.Cooldown, &e.Priority,
		&e.MinRange, &e.MaxRange, &e.MinHealth, &e.MaxHealth,
		&e.Interruptible, &e.Params,
	)
	if len(e.Params) == 0 {
		e.Params = nil
	}
	return actor, e, err
}
