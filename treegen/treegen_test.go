// SPDX-License-Identifier: MIT
package treegen_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssetree/treegen"
)

// tipDepths returns the depths of the first n nodes (the tips).
func tipDepths(f *treegen.Fixture, n int) []float64 {
	return f.Depths()[:n]
}

func TestBalanced_Shape(t *testing.T) {
	f, err := treegen.Balanced(4)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, f.Ances)
	assert.Equal(t, [][]float64{
		{4, 0, 1}, {4, 1, 1},
		{5, 2, 1}, {5, 3, 1},
		{6, 4, 1}, {6, 5, 1},
	}, f.Table)
	assert.Equal(t, []float64{0, 0, 1, 0}, f.States[0])
	assert.Equal(t, []float64{0, 0, 0, 1}, f.States[1])
	assert.Nil(t, f.States[4])

	d, err := f.Description()
	require.NoError(t, err)
	assert.Equal(t, 6, d.Root())
	assert.NoError(t, d.CheckStates(2))
}

// TestGenerators_Valid checks every shape and size yields a valid tree.
func TestGenerators_Valid(t *testing.T) {
	gens := map[string]func(int, ...treegen.Option) (*treegen.Fixture, error){
		"balanced":    treegen.Balanced,
		"caterpillar": treegen.Caterpillar,
		"coalescent":  treegen.Coalescent,
	}
	for name, gen := range gens {
		for _, n := range []int{2, 3, 7, 64, 100} {
			t.Run(fmt.Sprintf("%s/%d", name, n), func(t *testing.T) {
				f, err := gen(n, treegen.WithDim(3), treegen.WithRandomTipStates())
				require.NoError(t, err)
				assert.Len(t, f.Ances, n-1)
				assert.Len(t, f.Table, 2*(n-1))
				d, err := f.Description()
				require.NoError(t, err)
				assert.Len(t, d.Tips(), n)
				assert.NoError(t, d.CheckStates(3))
			})
		}
	}
}

// TestUltrametric places all tips at the same depth.
func TestUltrametric(t *testing.T) {
	uniform := func(r *rand.Rand) float64 { return 0.1 + r.Float64() }

	f, err := treegen.Caterpillar(9, treegen.WithUltrametric(), treegen.WithLengthFn(uniform))
	require.NoError(t, err)
	depths := tipDepths(f, 9)
	for _, x := range depths {
		assert.InDelta(t, depths[0], x, 1e-12)
	}

	f, err = treegen.Coalescent(50, treegen.WithSeed(7))
	require.NoError(t, err)
	depths = tipDepths(f, 50)
	for _, x := range depths {
		assert.InDelta(t, depths[0], x, 1e-12)
	}

	f, err = treegen.Caterpillar(4)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 2, 1}, tipDepths(f, 4), "unit lengths are not ultrametric")
}

// TestSeed_Reproducible: same seed, same tree; other seed, other tree.
func TestSeed_Reproducible(t *testing.T) {
	a, err := treegen.Coalescent(20, treegen.WithSeed(42))
	require.NoError(t, err)
	b, err := treegen.Coalescent(20, treegen.WithSeed(42))
	require.NoError(t, err)
	c, err := treegen.Coalescent(20, treegen.WithSeed(43))
	require.NoError(t, err)
	assert.Equal(t, a.Table, b.Table)
	assert.NotEqual(t, a.Table, c.Table)
}

// TestTipStates maps custom observations modulo the dimension.
func TestTipStates(t *testing.T) {
	f, err := treegen.Balanced(3, treegen.WithDim(2), treegen.WithTipStates(func(tip int) int { return -tip }))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0}, f.States[0])
	assert.Equal(t, []float64{0, 0, 0, 1}, f.States[1])
	assert.Equal(t, 2, f.Dim)
}

func TestGenerators_Errors(t *testing.T) {
	_, err := treegen.Balanced(1)
	assert.ErrorIs(t, err, treegen.ErrTooFewTips)
	_, err = treegen.Coalescent(0)
	assert.ErrorIs(t, err, treegen.ErrTooFewTips)

	_, err = treegen.Caterpillar(3, treegen.WithLengthFn(func(*rand.Rand) float64 { return math.NaN() }))
	assert.ErrorIs(t, err, treegen.ErrBadLength)

	assert.Panics(t, func() { treegen.WithDim(0) })
	assert.Panics(t, func() { treegen.WithRate(0) })
	assert.Panics(t, func() { treegen.WithLengthFn(nil) })
}
