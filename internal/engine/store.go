// Store: the single serializing owner of the world state. Ticks,
// directives, and agent action batches each take the lock for the whole
// reducer, so neither side ever observes a half-applied mutation. Slow
// work (LLM round-trips) happens outside; only the final application of a
// result needs the lock.
package engine

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/campus-city/internal/directive"
	"github.com/talgya/campus-city/internal/faculty"
)

// Store wraps the authoritative State behind a mutex.
type Store struct {
	mu    sync.Mutex
	state *State
	rng   *rand.Rand

	// generation keys in-flight agent polls. A batch computed against a
	// stale generation is discarded on arrival instead of applied.
	generation string
}

// NewStore creates a store around a state. rng may be seeded for tests or
// time-seeded in production; most call sites do not rely on determinism.
func NewStore(state *State, rng *rand.Rand) *Store {
	return &Store{
		state:      state,
		rng:        rng,
		generation: uuid.NewString(),
	}
}

// Tick advances the simulation by dt seconds, clamped to MaxTickDelta.
func (st *Store) Tick(dt float64) {
	if dt > MaxTickDelta {
		dt = MaxTickDelta
	}
	if dt <= 0 {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.Tick(dt, st.rng)
}

// ApplyDirective merges one directive atomically between ticks.
func (st *Store) ApplyDirective(d *directive.Directive) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.ApplyDirective(d, st.rng)
}

// Generation returns the current agent-poll generation token. Pollers
// capture it before starting a round-trip and hand it back with the
// result batch.
func (st *Store) Generation() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.generation
}

// InvalidateGeneration rotates the poll token, causing every in-flight
// agent batch to be dropped on arrival. Called when the llmAgents toggle
// flips or a reset discards the world the batch was computed against.
func (st *Store) InvalidateGeneration() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.generation = uuid.NewString()
}

// ApplyAgentActions merges a decision batch, unless it was computed
// against a superseded generation.
func (st *Store) ApplyAgentActions(batch []faculty.Action, generation string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if generation != st.generation {
		return false
	}
	st.state.ApplyAgentActions(batch, st.rng)
	return true
}

// View runs fn with the state under the lock. fn must not retain
// references past its return; it is the read path for API handlers and
// persistence.
func (st *Store) View(fn func(*State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.state)
}

// Mutate runs fn with exclusive access to the state. Used by small
// collaborators (weather merge, scenario toggles) that do not warrant a
// directive.
func (st *Store) Mutate(fn func(*State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.state)
}
