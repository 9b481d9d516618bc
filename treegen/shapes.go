// SPDX-License-Identifier: MIT
package treegen

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Balanced returns a tree whose tips are split in halves recursively; for a
// power of two every tip has the same number of ancestors.
// Complexity: O(n).
func Balanced(tips int, opts ...Option) (*Fixture, error) {
	a, err := newAssembler(tips, newConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("Balanced: %w", err)
	}
	if _, err = a.split(0, tips); err != nil {
		return nil, fmt.Errorf("Balanced: %w", err)
	}

	return a.f, nil
}

// split builds the subtree over tips [lo, hi) post-order and returns its root.
func (a *assembler) split(lo, hi int) (int, error) {
	if hi-lo == 1 {
		return lo, nil
	}
	mid := lo + (hi-lo+1)/2
	left, err := a.split(lo, mid)
	if err != nil {
		return 0, err
	}
	right, err := a.split(mid, hi)
	if err != nil {
		return 0, err
	}

	return a.join(left, right)
}

// Caterpillar returns ((((0,1),2),3),…), the deepest possible binary tree.
// Complexity: O(n).
func Caterpillar(tips int, opts ...Option) (*Fixture, error) {
	a, err := newAssembler(tips, newConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("Caterpillar: %w", err)
	}
	spine := 0
	for tip := 1; tip < tips; tip++ {
		if spine, err = a.join(spine, tip); err != nil {
			return nil, fmt.Errorf("Caterpillar: %w", err)
		}
	}

	return a.f, nil
}

// Coalescent returns a Kingman coalescent tree: with k lineages left the next
// merge happens after an Exp(rate·k(k−1)/2) waiting time and joins a uniformly
// chosen pair. The result is ultrametric; WithLengthFn and WithUltrametric
// are ignored.
// Complexity: O(n²) for the lineage bookkeeping.
func Coalescent(tips int, opts ...Option) (*Fixture, error) {
	cfg := newConfig(opts)
	a, err := newAssembler(tips, cfg)
	if err != nil {
		return nil, fmt.Errorf("Coalescent: %w", err)
	}
	lineages := make([]int, tips)
	for i := range lineages {
		lineages[i] = i
	}
	var now float64
	for k := tips; k > 1; k-- {
		wait := distuv.Exponential{Rate: cfg.rate * float64(k*(k-1)) / 2, Src: cfg.rng}
		now += wait.Rand()

		i := cfg.rng.IntN(k)
		j := cfg.rng.IntN(k - 1)
		if j >= i {
			j++
		}
		if j < i {
			i, j = j, i // keep the lower slot as First
		}
		parent := a.joinAt(lineages[i], lineages[j], now)
		lineages[i] = parent
		lineages[j] = lineages[k-1]
		lineages = lineages[:k-1]
	}

	return a.f, nil
}
