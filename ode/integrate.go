// SPDX-License-Identifier: MIT
package ode

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Defaults (single source of truth).
const (
	// DefaultStepFraction is the conventional initial step hint, as a fraction
	// of the interval length.
	DefaultStepFraction = 0.1

	// DefaultMaxSteps bounds the number of attempted steps per call.
	DefaultMaxSteps = 1_000_000

	// MinStepRatio is the smallest admissible step relative to max(t1−t0, |t|).
	// The clipped final step is exempt.
	MinStepRatio = 1e-14

	shrinkFloor = 0.2 // smallest shrink factor on rejection
	growCeil    = 5.0 // largest growth factor on acceptance
	safety      = 0.9 // step-size safety factor
)

var (
	// ErrUnknownMethod indicates an unsupported method name.
	ErrUnknownMethod = errors.New("ode: unknown integration method")

	// ErrBadInterval indicates t1 < t0 or non-finite bounds.
	ErrBadInterval = errors.New("ode: invalid integration interval")

	// ErrBadConfig indicates a non-positive tolerance or a non-finite step.
	ErrBadConfig = errors.New("ode: invalid solver configuration")

	// ErrNonFinite indicates the state became NaN or ±Inf.
	ErrNonFinite = errors.New("ode: non-finite state")

	// ErrStepUnderflow indicates the controller could not meet the tolerance
	// without shrinking the step below MinStepRatio.
	ErrStepUnderflow = errors.New("ode: step size underflow")

	// ErrTooManySteps indicates MaxSteps was exhausted before t1.
	ErrTooManySteps = errors.New("ode: maximum number of steps exceeded")
)

// System is the right-hand side of y' = f(t, y). Derivative must overwrite
// every element of dydt and must not retain y or dydt.
type System interface {
	Derivative(t float64, y, dydt []float64)
}

// Config selects the method and the step-size policy for one integration.
type Config struct {
	Method       Method  // integration scheme
	InitialStep  float64 // absolute step hint; ≤ 0 derives it from StepFraction
	StepFraction float64 // step hint as a fraction of t1−t0; ≤ 0 means DefaultStepFraction
	AbsTol       float64 // absolute tolerance (adaptive methods)
	RelTol       float64 // relative tolerance (adaptive methods)
	MaxSteps     int     // ≤ 0 means DefaultMaxSteps
}

// stepHint resolves the initial step for the interval [t0,t1].
func (c Config) stepHint(t0, t1 float64) float64 {
	if c.InitialStep > 0 {
		return c.InitialStep
	}
	frac := c.StepFraction
	if frac <= 0 {
		frac = DefaultStepFraction
	}

	return frac * (t1 - t0)
}

// Integrate advances y in place from t0 to t1.
//
// Steps:
//  1. Validate the interval; t1 == t0 returns immediately with y unchanged.
//  2. Resolve the tableau and the step hint.
//  3. Fixed-step methods take ⌈(t1−t0)/h⌉ equal steps.
//  4. Adaptive methods run the error-controlled loop described in doc.go.
//
// Every failure leaves y in an unspecified state; callers own a private copy.
func Integrate(sys System, y []float64, t0, t1 float64, cfg Config) error {
	// 1) Interval checks.
	if math.IsNaN(t0) || math.IsNaN(t1) || math.IsInf(t0, 0) || math.IsInf(t1, 0) || t1 < t0 {
		return fmt.Errorf("Integrate[%g,%g]: %w", t0, t1, ErrBadInterval)
	}
	if t1 == t0 {
		return nil // zero-length branch
	}

	// 2) Method and step hint.
	tab, ok := tableaus[cfg.Method]
	if !ok {
		return fmt.Errorf("Integrate(%q): %w", cfg.Method, ErrUnknownMethod)
	}
	h := cfg.stepHint(t0, t1)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return fmt.Errorf("Integrate: step=%g: %w", h, ErrBadConfig)
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	ws := newWorkspace(len(y), tab.stages())

	// 3) Fixed step.
	if !tab.embedded() {
		return ws.fixed(sys, tab, y, t0, t1, h, maxSteps)
	}

	// 4) Adaptive.
	if cfg.AbsTol < 0 || cfg.RelTol < 0 || (cfg.AbsTol == 0 && cfg.RelTol == 0) {
		return fmt.Errorf("Integrate: abstol=%g reltol=%g: %w", cfg.AbsTol, cfg.RelTol, ErrBadConfig)
	}

	return ws.adaptive(sys, tab, y, t0, t1, h, cfg.AbsTol, cfg.RelTol, maxSteps)
}

// workspace holds the per-call stage buffers.
type workspace struct {
	k     [][]float64 // stage derivatives
	tmp   []float64   // stage argument
	yNew  []float64   // candidate solution
	ratio []float64   // scaled error per component
}

func newWorkspace(n, stages int) *workspace {
	ws := &workspace{
		k:     make([][]float64, stages),
		tmp:   make([]float64, n),
		yNew:  make([]float64, n),
		ratio: make([]float64, n),
	}
	for s := range ws.k {
		ws.k[s] = make([]float64, n)
	}

	return ws
}

// step evaluates all stages at (t, y) with step h and writes the propagated
// solution into ws.yNew.
func (ws *workspace) step(sys System, tab *tableau, t float64, y []float64, h float64) {
	var s, j, i int
	var acc float64
	sys.Derivative(t, y, ws.k[0])
	for s = 1; s < tab.stages(); s++ {
		for i = range y {
			acc = 0
			for j = 0; j < s; j++ {
				acc += tab.a[s][j] * ws.k[j][i]
			}
			ws.tmp[i] = y[i] + h*acc
		}
		sys.Derivative(t+tab.c[s]*h, ws.tmp, ws.k[s])
	}
	for i = range y {
		acc = 0
		for s = 0; s < tab.stages(); s++ {
			acc += tab.b[s] * ws.k[s][i]
		}
		ws.yNew[i] = y[i] + h*acc
	}
}

// errorNorm returns max_i |ê_i| / tol_i for the last evaluated step.
func (ws *workspace) errorNorm(tab *tableau, y []float64, h, absTol, relTol float64) float64 {
	var i, s int
	var est float64
	for i = range y {
		est = 0
		for s = 0; s < tab.stages(); s++ {
			est += tab.e[s] * ws.k[s][i]
		}
		tol := absTol + relTol*(math.Abs(y[i])+h*math.Abs(ws.k[0][i]))
		ws.ratio[i] = math.Abs(h*est) / tol
	}
	if len(ws.ratio) == 0 {
		return 0
	}

	return floats.Max(ws.ratio)
}

// fixed runs a fixed-step integration with equal steps covering [t0,t1].
func (ws *workspace) fixed(sys System, tab *tableau, y []float64, t0, t1, hint float64, maxSteps int) error {
	n := int(math.Ceil((t1-t0)/hint - 1e-9))
	if n < 1 {
		n = 1
	}
	if n > maxSteps {
		return fmt.Errorf("fixed: %d steps > %d: %w", n, maxSteps, ErrTooManySteps)
	}
	h := (t1 - t0) / float64(n)
	for i := 0; i < n; i++ {
		ws.step(sys, tab, t0+float64(i)*h, y, h)
		if !finite(ws.yNew) {
			return fmt.Errorf("fixed: t=%g: %w", t0+float64(i+1)*h, ErrNonFinite)
		}
		copy(y, ws.yNew)
	}

	return nil
}

// adaptive runs the error-controlled loop.
func (ws *workspace) adaptive(sys System, tab *tableau, y []float64, t0, t1, h, absTol, relTol float64, maxSteps int) error {
	var (
		t     = t0
		last  bool
		errN  float64
		steps int
	)
	shrinkExp := -1 / float64(tab.errOrder-1)
	growExp := -1 / float64(tab.order)
	errFloor := math.Pow(growCeil, -float64(tab.order))

	for t < t1 {
		// 1) Budget and step clipping.
		if steps >= maxSteps {
			return fmt.Errorf("adaptive: t=%g after %d steps: %w", t, steps, ErrTooManySteps)
		}
		steps++
		last = false
		if t+h >= t1 {
			h = t1 - t
			last = true
		}
		if !last && h < MinStepRatio*math.Max(t1-t0, math.Abs(t)) {
			return fmt.Errorf("adaptive: t=%g h=%g: %w", t, h, ErrStepUnderflow)
		}

		// 2) Trial step.
		ws.step(sys, tab, t, y, h)
		if !finite(ws.yNew) {
			return fmt.Errorf("adaptive: t=%g h=%g: %w", t, h, ErrNonFinite)
		}
		errN = ws.errorNorm(tab, y, h, absTol, relTol)

		// 3) Reject: shrink and retry from the same t.
		if errN > 1 {
			h *= math.Max(safety*math.Pow(errN, shrinkExp), shrinkFloor)
			continue
		}

		// 4) Accept.
		copy(y, ws.yNew)
		if last {
			t = t1
		} else {
			t += h
		}
		if errN < 0.5 {
			errN = math.Max(errN, errFloor)
			h *= safety * math.Pow(errN, growExp)
		}
	}

	return nil
}

// finite reports whether every element of v is a finite number.
func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
