package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rim-SeungJae/eternal-survival/internal/data"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

type fakeStore struct {
	actors map[string]data.ActorCatalog
	err    error
}

func (f fakeStore) Actors(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.actors))
	for name := range f.actors {
		names = append(names, name)
	}
	return names, f.err
}

func (f fakeStore) LoadActor(_ context.Context, actor string) (data.ActorCatalog, error) {
	return f.actors[actor], f.err
}

func TestCheckStoredActor(t *testing.T) {
	ctx := context.Background()
	store := fakeStore{actors: map[string]data.ActorCatalog{
		"warden": {Actions: []data.ActionEntry{{Name: "slam", Kind: "strike"}}},
	}}

	assert.NoError(t, checkStoredActor(ctx, store, "warden"))

	err := checkStoredActor(ctx, store, "sentinel")
	assert.ErrorContains(t, err, `no actions for boss actor "sentinel"`)
	assert.ErrorContains(t, err, "warden")

	err = checkStoredActor(ctx, fakeStore{err: errors.New("connection reset")}, "warden")
	assert.ErrorContains(t, err, "connection reset")
}
