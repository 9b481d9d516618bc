// SPDX-License-Identifier: MIT
package model

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ssetree/matrix"
)

// Kind tags the variant held by a Model.
type Kind int

const (
	// KindStandard is the per-state speciation model.
	KindStandard Kind = iota
	// KindCladogenetic is the tensor speciation model.
	KindCladogenetic
	// KindTimeZone switches between two sub-models at a critical time.
	KindTimeZone
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindCladogenetic:
		return "cladogenetic"
	case KindTimeZone:
		return "timezone"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rates holds the parameters of a standard model.
type Rates struct {
	Lambda []float64     // speciation rate per state (d)
	Mu     []float64     // extinction rate per state (d)
	Q      *matrix.Dense // transition rates (d×d, diagonal ignored)
}

// CladoRates holds the parameters of a cladogenetic model.
type CladoRates struct {
	Lambda *matrix.Tensor3 // λ[i][j][k] (d×d×d)
	Mu     []float64       // extinction rate per state (d)
	Q      *matrix.Dense   // transition rates (d×d, diagonal ignored)
}

// Option configures a Model at construction time.
type Option func(*options)

type options struct {
	complete bool    // complete-tree conditioning
	checkExt bool    // compare children's extinction halves at merge
	extTol   float64 // tolerance for checkExt
}

// WithCompleteTree conditions the model on a complete tree (extinct lineages
// observed). Not available for time-zone models.
func WithCompleteTree() Option {
	return func(o *options) { o.complete = true }
}

// WithExtinctionCheck makes Merge verify that both children carry the same
// extinction probabilities within tol (absolute or relative).
// Panics if tol is negative or NaN.
func WithExtinctionCheck(tol float64) Option {
	if tol < 0 || math.IsNaN(tol) {
		panic(fmt.Sprintf("model: WithExtinctionCheck(%g): tolerance must be ≥ 0", tol))
	}

	return func(o *options) {
		o.checkExt = true
		o.extTol = tol
	}
}

// Model is an immutable SSE state-transition model. Build it with
// NewStandard, NewCladogenetic or NewTimeZone.
type Model struct {
	kind Kind
	d    int
	opts options

	mu []float64 // extinction rates
	q  []float64 // row-major d×d, diagonal zeroed

	// standard
	lambda []float64

	// cladogenetic
	entries []matrix.Entry // non-zero λ_ijk in (i,j,k) order
	lamSum  []float64      // Λ_i

	// time zone
	before, after *Model
	crit          float64
}

// NewStandard validates r and builds a standard model.
//
// Steps:
//  1. d = len(r.Mu); d == 0 → ErrDimension.
//  2. Validate λ, μ (length d, finite, ≥ 0) and Q (d×d, off-diagonal ≥ 0).
//  3. Copy every parameter so later caller mutation cannot leak in.
func NewStandard(r Rates, opts ...Option) (*Model, error) {
	// 1) Dimension.
	d := len(r.Mu)
	if d == 0 {
		return nil, fmt.Errorf("NewStandard: no states: %w", ErrDimension)
	}

	// 2) Validation.
	if err := matrix.ValidateRates(r.Lambda, d); err != nil {
		return nil, fmt.Errorf("NewStandard: lambda: %w", err)
	}
	if err := matrix.ValidateRates(r.Mu, d); err != nil {
		return nil, fmt.Errorf("NewStandard: mu: %w", err)
	}
	if err := matrix.ValidateRateMatrix(r.Q, d); err != nil {
		return nil, fmt.Errorf("NewStandard: q: %w", err)
	}

	// 3) Private copies.
	m := &Model{
		kind:   KindStandard,
		d:      d,
		opts:   applyOptions(opts),
		mu:     append([]float64(nil), r.Mu...),
		q:      offDiagonal(r.Q, d),
		lambda: append([]float64(nil), r.Lambda...),
	}

	return m, nil
}

// NewCladogenetic validates r and builds a cladogenetic model. Only the
// non-zero entries of the tensor are retained.
func NewCladogenetic(r CladoRates, opts ...Option) (*Model, error) {
	d := len(r.Mu)
	if d == 0 {
		return nil, fmt.Errorf("NewCladogenetic: no states: %w", ErrDimension)
	}
	if err := matrix.ValidateTensor(r.Lambda, d); err != nil {
		return nil, fmt.Errorf("NewCladogenetic: lambda: %w", err)
	}
	if err := matrix.ValidateRates(r.Mu, d); err != nil {
		return nil, fmt.Errorf("NewCladogenetic: mu: %w", err)
	}
	if err := matrix.ValidateRateMatrix(r.Q, d); err != nil {
		return nil, fmt.Errorf("NewCladogenetic: q: %w", err)
	}

	m := &Model{
		kind:    KindCladogenetic,
		d:       d,
		opts:    applyOptions(opts),
		mu:      append([]float64(nil), r.Mu...),
		q:       offDiagonal(r.Q, d),
		entries: r.Lambda.NonZero(),
		lamSum:  r.Lambda.SliceSums(),
	}

	return m, nil
}

// NewTimeZone composes two models of the same kind and dimension, switching
// from before to after at branch-local time crit.
//
// Errors: ErrNilModel, ErrCriticalTime, ErrDimension (d differs),
// ErrUnsupported (kinds differ, nested zones, complete-tree sub-models or
// WithCompleteTree passed here).
func NewTimeZone(before, after *Model, crit float64, opts ...Option) (*Model, error) {
	// 1) Presence and critical time.
	if before == nil || after == nil {
		return nil, fmt.Errorf("NewTimeZone: %w", ErrNilModel)
	}
	if math.IsNaN(crit) || math.IsInf(crit, 0) {
		return nil, fmt.Errorf("NewTimeZone: crit=%g: %w", crit, ErrCriticalTime)
	}

	// 2) Composition rules.
	if before.kind == KindTimeZone || after.kind == KindTimeZone {
		return nil, fmt.Errorf("NewTimeZone: nested time zones: %w", ErrUnsupported)
	}
	if before.kind != after.kind {
		return nil, fmt.Errorf("NewTimeZone: %s before, %s after: %w", before.kind, after.kind, ErrUnsupported)
	}
	if before.d != after.d {
		return nil, fmt.Errorf("NewTimeZone: d=%d before, d=%d after: %w", before.d, after.d, ErrDimension)
	}
	o := applyOptions(opts)
	if o.complete || before.opts.complete || after.opts.complete {
		return nil, fmt.Errorf("NewTimeZone: complete-tree conditioning: %w", ErrUnsupported)
	}

	return &Model{
		kind:   KindTimeZone,
		d:      before.d,
		opts:   o,
		before: before,
		after:  after,
		crit:   crit,
	}, nil
}

// Kind reports the variant.
func (m *Model) Kind() Kind { return m.kind }

// Dim returns the number of observable states d (state vectors have 2d entries).
func (m *Model) Dim() int { return m.d }

// CompleteTree reports whether complete-tree conditioning is active.
func (m *Model) CompleteTree() bool { return m.opts.complete }

// Zones returns the sub-models and critical time of a time-zone model;
// ok is false for the other kinds.
func (m *Model) Zones() (before, after *Model, crit float64, ok bool) {
	if m.kind != KindTimeZone {
		return nil, nil, 0, false
	}

	return m.before, m.after, m.crit, true
}

// String renders a short description such as "standard(d=2)".
func (m *Model) String() string {
	switch m.kind {
	case KindTimeZone:
		return fmt.Sprintf("timezone(d=%d, crit=%g, %s)", m.d, m.crit, m.before.kind)
	case KindCladogenetic:
		return fmt.Sprintf("cladogenetic(d=%d, nnz=%d)", m.d, len(m.entries))
	default:
		return fmt.Sprintf("%s(d=%d)", m.kind, m.d)
	}
}

// applyOptions folds opts over the zero configuration.
func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// offDiagonal copies q into a flat row-major buffer with a zero diagonal.
func offDiagonal(q *matrix.Dense, d int) []float64 {
	out := append([]float64(nil), q.Raw()...)
	for i := 0; i < d; i++ {
		out[i*d+i] = 0
	}

	return out
}
