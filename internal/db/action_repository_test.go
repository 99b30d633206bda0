package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rim-SeungJae/eternal-survival/internal/data"
)

func ptr(v float64) *float64 { return &v }

func sampleCatalog() *data.Catalog {
	return &data.Catalog{Actors: map[string]data.ActorCatalog{
		"warden": {Actions: []data.ActionEntry{
			{
				Name: "slam", Kind: "strike", Cooldown: 4, Priority: 10,
				MaxRange: ptr(3), Interruptible: true,
				Params: map[string]any{"telegraph": 0.75, "scale": 1.5},
			},
			{
				Name: "pulse", Kind: "script", Cooldown: 8, Priority: 3,
				MaxHealth: ptr(0.5),
				Params: map[string]any{
					"script": "pulse",
					"phases": []any{map[string]any{"name": "charge", "duration": 1}},
				},
			},
		}},
		"sentinel": {Actions: []data.ActionEntry{
			{Name: "burst", Kind: "nova", MinRange: 1, MaxRange: ptr(6), MinHealth: 0.1},
		}},
	}}
}

func TestActionRepository_CatalogRoundTrip(t *testing.T) {
	d, _ := newTestDB(t)
	repo := NewActionRepository(d.Pool())
	ctx := context.Background()

	require.NoError(t, repo.SaveCatalog(ctx, sampleCatalog()))

	got, err := repo.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sentinel", "warden"}, got.ActorNames())

	warden := got.Actors["warden"].Actions
	require.Len(t, warden, 2)
	assert.Equal(t, "slam", warden[0].Name, "declaration order survives")
	assert.Equal(t, 3.0, *warden[0].MaxRange)
	assert.Nil(t, warden[0].MaxHealth)
	assert.True(t, warden[0].Interruptible)
	assert.Equal(t, 0.75, warden[0].Params["telegraph"])
	assert.Equal(t, 0.5, *warden[1].MaxHealth)
	assert.Nil(t, warden[1].MaxRange)
	assert.Equal(t, "pulse", warden[1].Params["script"])

	sentinel := got.Actors["sentinel"].Actions
	require.Len(t, sentinel, 1)
	assert.Equal(t, 0.1, sentinel[0].MinHealth)
	assert.Nil(t, sentinel[0].Params)

	names, err := repo.Actors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sentinel", "warden"}, names)

	// SaveCatalog is a full replace
	only := &data.Catalog{Actors: map[string]data.ActorCatalog{"sentinel": sampleCatalog().Actors["sentinel"]}}
	require.NoError(t, repo.SaveCatalog(ctx, only))
	names, err = repo.Actors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sentinel"}, names)
}

func TestActionRepository_ActorsAndScripts(t *testing.T) {
	d, _ := newTestDB(t)
	repo := NewActionRepository(d.Pool())
	ctx := context.Background()

	require.NoError(t, repo.SaveActor(ctx, "warden", sampleCatalog().Actors["warden"]))
	require.NoError(t, repo.SaveActor(ctx, "warden", data.ActorCatalog{Actions: []data.ActionEntry{
		{Name: "swipe", Kind: "strike"},
	}}))

	a, err := repo.LoadActor(ctx, "warden")
	require.NoError(t, err)
	require.Len(t, a.Actions, 1)
	assert.Equal(t, "swipe", a.Actions[0].Name)

	empty, err := repo.LoadActor(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty.Actions)

	names, err := repo.Actors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"warden"}, names)

	_, err = repo.Script(ctx, "pulse")
	assert.ErrorIs(t, err, ErrScriptNotFound)

	require.NoError(t, repo.SaveScript(ctx, "pulse", []byte("v1")))
	require.NoError(t, repo.SaveScript(ctx, "pulse", []byte("v2")))
	src, err := repo.Scripts(ctx)("pulse")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(src))
}

func TestActionRepository_RejectsInvalidCatalog(t *testing.T) {
	d, _ := newTestDB(t)
	repo := NewActionRepository(d.Pool())

	err := repo.SaveCatalog(context.Background(), &data.Catalog{})
	assert.ErrorContains(t, err, "no actors")
}

func TestNew_BadDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz", 0)
	assert.ErrorContains(t, err, "parsing database dsn")
}
