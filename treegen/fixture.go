// SPDX-License-Identifier: MIT
package treegen

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ssetree/tree"
)

// Fixture is a generated tree in raw form.
type Fixture struct {
	Ances  []int       // internal nodes, bottom-up, root last
	Table  [][]float64 // [parent, child, length] rows, First child first
	States [][]float64 // 2d rows for tips, nil for internal nodes
	Dim    int         // number of observable states
}

// Description validates the fixture and returns a tree description backed by
// a fresh state table.
func (f *Fixture) Description() (*tree.Description, error) {
	return tree.FromTable(f.Ances, f.Table, tree.FromRows(f.States))
}

// Depths returns the root-to-node distance of every node.
func (f *Fixture) Depths() []float64 {
	depth := make([]float64, len(f.States))
	// Rows are emitted parent by parent in bottom-up order; walk them top-down.
	for i := len(f.Table) - 1; i >= 0; i-- {
		row := f.Table[i]
		depth[int(row[1])] = depth[int(row[0])] + row[2]
	}

	return depth
}

// assembler accumulates nodes in creation order.
type assembler struct {
	cfg    config
	tips   int
	next   int       // next internal id
	height []float64 // node height above the tips (ultrametric mode)
	f      *Fixture
}

func newAssembler(tips int, cfg config) (*assembler, error) {
	if tips < 2 {
		return nil, fmt.Errorf("tips=%d: %w", tips, ErrTooFewTips)
	}
	n := 2*tips - 1
	a := &assembler{
		cfg:    cfg,
		tips:   tips,
		next:   tips,
		height: make([]float64, n),
		f: &Fixture{
			Ances:  make([]int, 0, tips-1),
			Table:  make([][]float64, 0, n-1),
			States: make([][]float64, n),
			Dim:    cfg.dim,
		},
	}
	d := cfg.dim
	for tip := 0; tip < tips; tip++ {
		s := cfg.tipState(tip, cfg.rng) % d
		if s < 0 {
			s += d
		}
		row := make([]float64, 2*d)
		row[d+s] = 1
		a.f.States[tip] = row
	}

	return a, nil
}

// join creates the parent of first and second and returns its id. Without
// ultrametric mode both branches get an independent length draw; with it the
// parent sits one draw above its higher child.
func (a *assembler) join(first, second int) (int, error) {
	parent := a.next
	a.next++
	var l1, l2 float64
	if a.cfg.ultrametric {
		inc, err := a.draw()
		if err != nil {
			return 0, err
		}
		a.height[parent] = math.Max(a.height[first], a.height[second]) + inc
		l1 = a.height[parent] - a.height[first]
		l2 = a.height[parent] - a.height[second]
	} else {
		var err error
		if l1, err = a.draw(); err != nil {
			return 0, err
		}
		if l2, err = a.draw(); err != nil {
			return 0, err
		}
	}
	a.emit(parent, first, second, l1, l2)

	return parent, nil
}

// joinAt creates the parent at an explicit height (coalescent times).
func (a *assembler) joinAt(first, second int, h float64) int {
	parent := a.next
	a.next++
	a.height[parent] = h
	a.emit(parent, first, second, h-a.height[first], h-a.height[second])

	return parent
}

func (a *assembler) emit(parent, first, second int, l1, l2 float64) {
	a.f.Ances = append(a.f.Ances, parent)
	a.f.Table = append(a.f.Table,
		[]float64{float64(parent), float64(first), l1},
		[]float64{float64(parent), float64(second), l2},
	)
}

func (a *assembler) draw() (float64, error) {
	l := a.cfg.lengthFn(a.cfg.rng)
	if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
		return 0, fmt.Errorf("length %g: %w", l, ErrBadLength)
	}

	return l, nil
}
