package connectivity

import (
	"fmt"
	"math"
	"sync"
)

// TimestepContext holds the global simulation timestep.
//
// The timestep is set once before any connector runs and is frozen when
// connectivity generation starts; delay staggering depends on it, so a
// change afterwards would leave earlier groups inconsistent.
type TimestepContext struct {
	mu     sync.RWMutex
	dt     float64
	set    bool
	frozen bool
}

// NewTimestepContext returns an unset context.
func NewTimestepContext() *TimestepContext {
	return &TimestepContext{}
}

// Set fixes the timestep in seconds. It fails once the context is frozen.
func (t *TimestepContext) Set(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return invalidf("SetTimestep", "timestep must be positive and finite, got %g", dt)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return fmt.Errorf("SetTimestep: timestep is frozen at %g after connectivity generation: %w", t.dt, ErrConfiguration)
	}
	t.dt = dt
	t.set = true
	return nil
}

// Value returns the timestep, or ErrConfiguration while it is unset.
func (t *TimestepContext) Value() (float64, error) {
	if t == nil {
		return 0, fmt.Errorf("timestep context is nil: %w", ErrConfiguration)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.set {
		return 0, fmt.Errorf("timestep must be set before connectivity is generated: %w", ErrConfiguration)
	}
	return t.dt, nil
}

// IsSet reports whether Set has succeeded.
func (t *TimestepContext) IsSet() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.set
}

// Freeze disallows further changes. Freezing an unset context is an error.
func (t *TimestepContext) Freeze() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.set {
		return fmt.Errorf("cannot freeze an unset timestep: %w", ErrConfiguration)
	}
	t.frozen = true
	return nil
}

// Frozen reports whether Freeze has been called.
func (t *TimestepContext) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}
