// SPDX-License-Identifier: MIT
package ode

// tableau is an explicit Runge–Kutta Butcher tableau, optionally with an
// embedded lower-order solution expressed as error weights e = b - b̂.
type tableau struct {
	c        []float64   // stage nodes
	a        [][]float64 // a[s] holds the s coefficients of stage s
	b        []float64   // weights of the propagated solution
	e        []float64   // error weights; nil for fixed-step methods
	order    int         // order of the propagated solution (p)
	errOrder int         // order of the embedded solution (q)
}

// embedded reports whether the tableau carries an error estimate.
func (t *tableau) embedded() bool { return t.e != nil }

// stages returns the number of stages.
func (t *tableau) stages() int { return len(t.c) }

// diff returns x[i]-y[i] element-wise.
func diff(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - y[i]
	}

	return out
}

var rk4Tableau = &tableau{
	c: []float64{0, 0.5, 0.5, 1},
	a: [][]float64{
		{},
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	},
	b:     []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	order: 4,
}

var cashKarpTableau = &tableau{
	c: []float64{0, 1.0 / 5, 3.0 / 10, 3.0 / 5, 1, 7.0 / 8},
	a: [][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{3.0 / 10, -9.0 / 10, 6.0 / 5},
		{-11.0 / 54, 5.0 / 2, -70.0 / 27, 35.0 / 27},
		{1631.0 / 55296, 175.0 / 512, 575.0 / 13824, 44275.0 / 110592, 253.0 / 4096},
	},
	b: []float64{37.0 / 378, 0, 250.0 / 621, 125.0 / 594, 0, 512.0 / 1771},
	e: diff(
		[]float64{37.0 / 378, 0, 250.0 / 621, 125.0 / 594, 0, 512.0 / 1771},
		[]float64{2825.0 / 27648, 0, 18575.0 / 48384, 13525.0 / 55296, 277.0 / 14336, 1.0 / 4},
	),
	order:    5,
	errOrder: 4,
}

var dopri5Tableau = &tableau{
	c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	a: [][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	b: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
	e: diff(
		[]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		[]float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40},
	),
	order:    5,
	errOrder: 4,
}

// tableaus maps every supported method to its coefficients.
var tableaus = map[Method]*tableau{
	RK4:        rk4Tableau,
	CashKarp54: cashKarpTableau,
	Dopri5:     dopri5Tableau,
}
