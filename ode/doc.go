// SPDX-License-Identifier: MIT

// Package ode integrates a system of ordinary differential equations over a
// fixed time interval with an explicit Runge–Kutta method chosen by name.
//
// What:
//
//   - System: anything that can evaluate dy/dt = f(t, y) into a caller buffer.
//   - Integrate: advances y in place from t0 to t1.
//   - Methods: a fixed-step classic RK4 and two embedded adaptive pairs
//     (Cash–Karp 5(4), Dormand–Prince 5(4)); names follow the odeint spelling
//     ("odeint::runge_kutta_dopri5"), the "odeint::" prefix is optional.
//
// Step-size policy (adaptive methods):
//
//	err  = max_i |ê_i| / (AbsTol + RelTol·(|y_i| + h·|f_i|))
//	err > 1  → reject, h ← h·max(0.9·err^(-1/(q-1)), 0.2)   (q = error order)
//	err < ½  → accept, h ← h·min(0.9·err^(-1/p), 5)          (p = method order)
//	otherwise accept with unchanged h. The last step is clipped to land on t1.
//
// Errors:
//
//   - ErrUnknownMethod  name not recognised.
//   - ErrBadInterval    t1 < t0 or non-finite bounds.
//   - ErrBadConfig      non-positive tolerances or step.
//   - ErrNonFinite      NaN/Inf appeared in the state.
//   - ErrStepUnderflow  step shrank below MinStepRatio·max(t1−t0,|t|).
//   - ErrTooManySteps   more than MaxSteps attempted steps.
//
// Determinism: every call allocates its own stage buffers; no solver state is
// shared between calls.
package ode
