// SPDX-License-Identifier: MIT
package model

import (
	"fmt"

	"github.com/katalvlaran/ssetree/ode"
)

// Integrate advances state (length 2d) in place over branch-local time
// [t0, t1] with the solver described by cfg.
//
// Time-zone models split the interval at the critical time and integrate each
// piece with its own sub-model and a fresh solver: the step hint is re-derived
// from cfg.StepFraction for every piece (cfg.InitialStep is ignored), so no
// step straddles the switch.
func (m *Model) Integrate(state []float64, t0, t1 float64, cfg ode.Config) error {
	if len(state) != 2*m.d {
		return fmt.Errorf("Integrate: len=%d, want %d: %w", len(state), 2*m.d, ErrDimension)
	}
	if m.kind != KindTimeZone {
		return ode.Integrate(m, state, t0, t1, cfg)
	}

	cfg.InitialStep = 0
	switch {
	case t1 <= m.crit:
		return ode.Integrate(m.before, state, t0, t1, cfg)
	case t0 >= m.crit:
		return ode.Integrate(m.after, state, t0, t1, cfg)
	}
	if err := ode.Integrate(m.before, state, t0, m.crit, cfg); err != nil {
		return fmt.Errorf("Integrate: before zone: %w", err)
	}
	if err := ode.Integrate(m.after, state, m.crit, t1, cfg); err != nil {
		return fmt.Errorf("Integrate: after zone: %w", err)
	}

	return nil
}
