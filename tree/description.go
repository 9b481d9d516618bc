// SPDX-License-Identifier: MIT
package tree

import (
	"fmt"
	"math"
)

// Side distinguishes the two children of an internal node.
type Side int8

const (
	// First is the child delivered on merge port 0.
	First Side = iota
	// Second is the child delivered on merge port 1; its extinction half is
	// carried through the merge.
	Second
)

// String returns "first" or "second".
func (s Side) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Branch connects Child to Parent.
type Branch struct {
	Parent int     // internal node id
	Child  int     // node id
	Length float64 // branch length, ≥ 0
	Side   Side    // which child of Parent this is
}

// Visitation colours for cycle detection.
const (
	white = iota // not visited
	gray         // on the current path
	black        // fully explored
)

const noNode = -1

// Description is a validated rooted binary tree. Build it with New or
// FromTable; the zero value is not usable.
type Description struct {
	ances    []int
	branches []Branch
	states   *States

	branchOf []int    // child → index into branches, noNode for the root
	children [][2]int // node → {first, second}, noNode for tips
	internal []bool   // node → listed in ances
}

// New validates the tree and returns its description. ances and branches are
// copied; states is shared and remains owned by the caller.
//
// Steps:
//  1. Presence: non-empty ances, non-nil states.
//  2. Ranges: node ids and branch lengths.
//  3. Shape: one parent per child, two sides per internal node, root last.
//  4. Acyclicity and reachability from the root.
//  5. Bottom-up order of ances.
func New(ances []int, branches []Branch, states *States) (*Description, error) {
	// 1) Presence.
	if len(ances) == 0 || states == nil || states.Len() == 0 {
		return nil, fmt.Errorf("New: %w", ErrEmpty)
	}
	n := states.Len()
	d := &Description{
		ances:    append([]int(nil), ances...),
		branches: append([]Branch(nil), branches...),
		states:   states,
		branchOf: make([]int, n),
		children: make([][2]int, n),
		internal: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		d.branchOf[i] = noNode
		d.children[i] = [2]int{noNode, noNode}
	}

	// 2) Ranges.
	for _, a := range d.ances {
		if a < 0 || a >= n {
			return nil, fmt.Errorf("New: ancestor %d of %d nodes: %w", a, n, ErrNodeOutOfRange)
		}
		if d.internal[a] {
			return nil, fmt.Errorf("New: ancestor %d listed twice: %w", a, ErrMalformed)
		}
		d.internal[a] = true
	}
	for i, b := range d.branches {
		if b.Parent < 0 || b.Parent >= n || b.Child < 0 || b.Child >= n {
			return nil, fmt.Errorf("New: branch %d (%d→%d) of %d nodes: %w", i, b.Parent, b.Child, n, ErrNodeOutOfRange)
		}
		if math.IsNaN(b.Length) || math.IsInf(b.Length, 0) || b.Length < 0 {
			return nil, fmt.Errorf("New: branch %d length %g: %w", i, b.Length, ErrBadLength)
		}
	}

	// 3) Shape.
	if err := d.link(); err != nil {
		return nil, err
	}

	// 4) Cycles and reachability.
	if err := d.checkAcyclic(); err != nil {
		return nil, err
	}

	// 5) Order.
	if err := d.checkBottomUp(); err != nil {
		return nil, err
	}

	return d, nil
}

// link fills branchOf and children and checks the binary-tree shape.
func (d *Description) link() error {
	for i, b := range d.branches {
		if !d.internal[b.Parent] {
			return fmt.Errorf("New: branch %d parent %d is not in ances: %w", i, b.Parent, ErrMalformed)
		}
		if b.Side != First && b.Side != Second {
			return fmt.Errorf("New: branch %d side %d: %w", i, b.Side, ErrMalformed)
		}
		if b.Parent == b.Child {
			return fmt.Errorf("New: branch %d is a self-loop on %d: %w", i, b.Child, ErrCycleDetected)
		}
		if d.branchOf[b.Child] != noNode {
			return fmt.Errorf("New: node %d has two parents: %w", b.Child, ErrMalformed)
		}
		if d.children[b.Parent][b.Side] != noNode {
			return fmt.Errorf("New: node %d has two %s children: %w", b.Parent, b.Side, ErrMalformed)
		}
		d.branchOf[b.Child] = i
		d.children[b.Parent][b.Side] = b.Child
	}
	for _, a := range d.ances {
		if d.children[a][First] == noNode || d.children[a][Second] == noNode {
			return fmt.Errorf("New: internal node %d needs two children: %w", a, ErrMalformed)
		}
	}
	root := d.Root()
	if d.branchOf[root] != noNode {
		return fmt.Errorf("New: root %d has a parent: %w", root, ErrMalformed)
	}
	for node := range d.branchOf {
		if node != root && d.branchOf[node] == noNode {
			return fmt.Errorf("New: node %d has no parent: %w", node, ErrMalformed)
		}
	}

	return nil
}

// checkAcyclic colours every node following child links. With one parent per
// node a cycle can only live apart from the root, so any node not reached
// from the root is reported as either a cycle or a disconnected component.
func (d *Description) checkAcyclic() error {
	n := len(d.children)
	color := make([]int, n)
	stack := make([]int, 0, 64)

	// visit explores start iteratively; a gray hit is a back-edge.
	visit := func(start int) error {
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			if color[v] == white {
				color[v] = gray
				for _, c := range d.children[v] {
					if c == noNode {
						continue
					}
					if color[c] == gray {
						return fmt.Errorf("New: back-edge %d→%d: %w", v, c, ErrCycleDetected)
					}
					if color[c] == white {
						stack = append(stack, c)
					}
				}
				continue
			}
			stack = stack[:len(stack)-1]
			color[v] = black
		}

		return nil
	}

	// 1) From the root: everything reachable must be a tree.
	if err := visit(d.Root()); err != nil {
		return err
	}
	reached := make([]bool, n)
	for v := range color {
		reached[v] = color[v] == black
	}

	// 2) Anything left over is either a cycle or a detached component.
	for v := range color {
		if color[v] != white {
			continue
		}
		if err := visit(v); err != nil {
			return err
		}
	}
	for v := range reached {
		if !reached[v] {
			return fmt.Errorf("New: node %d unreachable from root %d: %w", v, d.Root(), ErrMalformed)
		}
	}

	return nil
}

// checkBottomUp verifies that every internal child precedes its parent in ances.
func (d *Description) checkBottomUp() error {
	pos := make([]int, len(d.children))
	for i, a := range d.ances {
		pos[a] = i
	}
	for i, a := range d.ances {
		for _, c := range d.children[a] {
			if d.internal[c] && pos[c] >= i {
				return fmt.Errorf("New: ancestor %d at %d precedes its child %d at %d: %w", a, i, c, pos[c], ErrNotTopological)
			}
		}
	}

	return nil
}

// FromTable builds a Description from rows of [parent, child, length]. The
// first row of a parent becomes its First child, the second its Second child.
func FromTable(ances []int, table [][]float64, states *States) (*Description, error) {
	seen := make(map[int]int, len(ances))
	branches := make([]Branch, 0, len(table))
	for i, row := range table {
		if len(row) != 3 {
			return nil, fmt.Errorf("FromTable: row %d has %d columns, want 3: %w", i, len(row), ErrMalformed)
		}
		parent, okP := nodeID(row[0])
		child, okC := nodeID(row[1])
		if !okP || !okC {
			return nil, fmt.Errorf("FromTable: row %d ids (%g,%g): %w", i, row[0], row[1], ErrNodeOutOfRange)
		}
		side := Side(seen[parent])
		if side > Second {
			return nil, fmt.Errorf("FromTable: node %d has more than two children: %w", parent, ErrMalformed)
		}
		seen[parent]++
		branches = append(branches, Branch{Parent: parent, Child: child, Length: row[2], Side: side})
	}

	return New(ances, branches, states)
}

// nodeID converts a table cell to a node id; fractional or negative values fail.
func nodeID(x float64) (int, bool) {
	if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
		return 0, false
	}

	return int(x), true
}

// Root returns the root node (the last ancestor).
func (d *Description) Root() int { return d.ances[len(d.ances)-1] }

// NumNodes returns the size of the state table.
func (d *Description) NumNodes() int { return len(d.children) }

// Ances returns a copy of the internal nodes in bottom-up order.
func (d *Description) Ances() []int { return append([]int(nil), d.ances...) }

// Branches returns a copy of the branch list.
func (d *Description) Branches() []Branch { return append([]Branch(nil), d.branches...) }

// States returns the shared state table.
func (d *Description) States() *States { return d.states }

// IsTip reports whether node is a leaf.
func (d *Description) IsTip(node int) bool {
	return node >= 0 && node < len(d.internal) && !d.internal[node]
}

// Tips returns the leaf ids in ascending order.
func (d *Description) Tips() []int {
	tips := make([]int, 0, len(d.internal)-len(d.ances))
	for v, in := range d.internal {
		if !in {
			tips = append(tips, v)
		}
	}

	return tips
}

// Children returns the First and Second child of an internal node.
func (d *Description) Children(node int) (first, second int, ok bool) {
	if node < 0 || node >= len(d.internal) || !d.internal[node] {
		return noNode, noNode, false
	}

	return d.children[node][First], d.children[node][Second], true
}

// BranchOf returns the branch above node; ok is false for the root.
func (d *Description) BranchOf(node int) (Branch, bool) {
	if node < 0 || node >= len(d.branchOf) || d.branchOf[node] == noNode {
		return Branch{}, false
	}

	return d.branches[d.branchOf[node]], true
}

// Table renders the branches as [parent, child, length] rows ordered so that
// FromTable reproduces the same sides.
func (d *Description) Table() [][]float64 {
	out := make([][]float64, 0, len(d.branches))
	for _, a := range d.ances {
		for _, c := range d.children[a] {
			b := d.branches[d.branchOf[c]]
			out = append(out, []float64{float64(b.Parent), float64(b.Child), b.Length})
		}
	}

	return out
}

// CheckStates verifies that every tip slot holds a vector of length 2·dim
// whose entries are finite and ≥ 0.
func (d *Description) CheckStates(dim int) error {
	for _, tip := range d.Tips() {
		v, err := d.states.Get(tip)
		if err != nil {
			return fmt.Errorf("CheckStates: tip %d: %w", tip, ErrMissingTipState)
		}
		if len(v) != 2*dim {
			return fmt.Errorf("CheckStates: tip %d len=%d, want %d: %w", tip, len(v), 2*dim, ErrDimensionMismatch)
		}
		for i, x := range v {
			if !(x >= 0) || math.IsInf(x, 1) {
				return fmt.Errorf("CheckStates: tip %d [%d]=%g: %w", tip, i, x, ErrBadTipState)
			}
		}
	}

	return nil
}
