// Package storage persists follows graphs and random states between runs.
//
// A [Store] holds named graphs ("full", "reduced", ...) and named random
// states. Two backends are provided:
//
//   - [FileStore]: a directory of gzip-compressed node-link JSON files
//     (<name>.json.gz) and binary state blobs (<name>.rng)
//   - [MongoStore]: "graphs" and "states" collections in a MongoDB database
//
// Names are validated with errors.ValidateName before touching a backend.
// Loading a name that was never saved returns [ErrNotFound].
package storage

import (
	"context"
	"errors"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/rngstate"
)

// Well-known names used by the pipeline.
const (
	FullGraph    = "user_graph"
	ReducedGraph = "reduced_graph"
	State        = "rng"
)

// Kinds reported to observability hooks.
const (
	KindGraph = "graph"
	KindState = "state"
)

// ErrNotFound is returned when no graph or state is stored under a name.
var ErrNotFound = errors.New("not found")

// Store persists graphs and random states by name.
type Store interface {
	SaveGraph(ctx context.Context, name string, g *digraph.Graph) error
	LoadGraph(ctx context.Context, name string) (*digraph.Graph, error)
	SaveState(ctx context.Context, name string, s *rngstate.State) error
	LoadState(ctx context.Context, name string) (*rngstate.State, error)
	Close() error
}

// LoadStateOrDefault loads the state stored under name, falling back to
// rngstate.Default when none was saved yet.
func LoadStateOrDefault(ctx context.Context, s Store, name string) (*rngstate.State, bool, error) {
	st, err := s.LoadState(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return rngstate.Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}
