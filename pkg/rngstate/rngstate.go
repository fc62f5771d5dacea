// Package rngstate holds the pseudo-random generator state used by graph
// reduction.
//
// A [State] is an explicit value: callers create or load one, pass it to
// the reducer, and persist the state the reducer returns. Replaying a
// reduction from the same saved state over the same graph yields the same
// subgraph. Consecutive reductions that thread the returned state forward
// draw different samples.
//
// The generator is a PCG source from math/rand/v2. Serialized states only
// round-trip through this package.
package rngstate

import (
	"bytes"
	"encoding/hex"
	"math/rand/v2"

	"github.com/matzehuels/followgraph/pkg/errors"
)

// DefaultSeed seeds the state used when no persisted state exists.
const DefaultSeed uint64 = 42

// State is a snapshot of a PCG generator. The zero value is not usable;
// create states with [New], [Default] or [Parse].
type State struct {
	src *rand.PCG
}

// New returns a state seeded deterministically from seed.
func New(seed uint64) *State {
	return &State{src: rand.NewPCG(seed, seed^0xdeadbeef)}
}

// Default returns the state for [DefaultSeed].
func Default() *State {
	return New(DefaultSeed)
}

// Parse decodes a state produced by [State.MarshalBinary].
func Parse(data []byte) (*State, error) {
	s := &State{}
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Rand returns a generator that draws from, and advances, s.
func (s *State) Rand() *rand.Rand {
	return rand.New(s.src)
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	cp := *s.src
	return &State{src: &cp}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *State) MarshalBinary() ([]byte, error) {
	return s.src.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *State) UnmarshalBinary(data []byte) error {
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(data); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode random state")
	}
	s.src = src
	return nil
}

// Equal reports whether s and o would produce the same draws.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, _ := s.MarshalBinary()
	b, _ := o.MarshalBinary()
	return bytes.Equal(a, b)
}

// String returns the hex encoding of the serialized state.
func (s *State) String() string {
	b, err := s.MarshalBinary()
	if err != nil {
		return "<invalid>"
	}
	return hex.EncodeToString(b)
}
