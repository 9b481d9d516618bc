// SPDX-License-Identifier: MIT
package treegen

import (
	"fmt"
	"math/rand/v2"
)

// Deterministic defaults.
const (
	DefaultSeed   uint64  = 1
	DefaultDim            = 2
	DefaultLength float64 = 1
	DefaultRate   float64 = 1
)

// Option customizes a generator.
type Option func(*config)

type config struct {
	rng         *rand.Rand
	seed        uint64
	lengthFn    func(*rand.Rand) float64
	ultrametric bool
	dim         int
	tipState    func(tip int, r *rand.Rand) int
	rate        float64
}

func newConfig(opts []Option) config {
	cfg := config{
		seed:     DefaultSeed,
		lengthFn: func(*rand.Rand) float64 { return DefaultLength },
		dim:      DefaultDim,
		rate:     DefaultRate,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tipState == nil {
		d := cfg.dim
		cfg.tipState = func(tip int, _ *rand.Rand) int { return tip % d }
	}
	cfg.rng = rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))

	return cfg
}

// WithSeed fixes the random source.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithLengthFn draws every branch length (or, with WithUltrametric, every
// height increment) from fn. Panics on nil.
func WithLengthFn(fn func(*rand.Rand) float64) Option {
	if fn == nil {
		panic("treegen: WithLengthFn(nil)")
	}

	return func(c *config) { c.lengthFn = fn }
}

// WithUltrametric places all tips at the same distance from the root.
func WithUltrametric() Option {
	return func(c *config) { c.ultrametric = true }
}

// WithDim sets the number of observable states. Panics if d < 1.
func WithDim(d int) Option {
	if d < 1 {
		panic(fmt.Sprintf("treegen: WithDim(%d)", d))
	}

	return func(c *config) { c.dim = d }
}

// WithTipStates chooses the observed state of each tip; results are taken
// modulo the dimension. Panics on nil.
func WithTipStates(fn func(tip int) int) Option {
	if fn == nil {
		panic("treegen: WithTipStates(nil)")
	}

	return func(c *config) {
		c.tipState = func(tip int, _ *rand.Rand) int { return fn(tip) }
	}
}

// WithRandomTipStates draws each tip's observed state uniformly.
func WithRandomTipStates() Option {
	return func(c *config) {
		c.tipState = func(_ int, r *rand.Rand) int { return r.IntN(c.dim) }
	}
}

// WithRate sets the coalescence rate per lineage pair. Panics unless r > 0.
func WithRate(r float64) Option {
	if !(r > 0) {
		panic(fmt.Sprintf("treegen: WithRate(%g)", r))
	}

	return func(c *config) { c.rate = r }
}
