// SPDX-License-Identifier: MIT
package model

// Derivative evaluates dx/dt at time t into dxdt. x and dxdt have length 2d:
// x[:d] is the extinction half E, x[d:] the observation half D.
// Time-zone models pick the before set for t < crit and the after set otherwise.
func (m *Model) Derivative(t float64, x, dxdt []float64) {
	switch m.kind {
	case KindStandard:
		m.standard(x, dxdt)
	case KindCladogenetic:
		m.cladogenetic(x, dxdt)
	case KindTimeZone:
		m.active(t).Derivative(t, x, dxdt)
	}
}

// active returns the sub-model in force at t.
func (m *Model) active(t float64) *Model {
	if t < m.crit {
		return m.before
	}

	return m.after
}

func (m *Model) standard(x, dxdt []float64) {
	d := m.d
	E, D := x[:d], x[d:]
	dE, dD := dxdt[:d], dxdt[d:]
	var i int
	var lam, mu, loss float64
	for i = 0; i < d; i++ {
		lam, mu = m.lambda[i], m.mu[i]
		loss = lam + mu
		dE[i] = mu - loss*E[i] + lam*E[i]*E[i]
		dD[i] = -loss * D[i]
		if !m.opts.complete {
			dD[i] += 2 * lam * E[i] * D[i]
		}
	}
	m.transitions(E, D, dE, dD)
}

func (m *Model) cladogenetic(x, dxdt []float64) {
	d := m.d
	E, D := x[:d], x[d:]
	dE, dD := dxdt[:d], dxdt[d:]
	var i int
	var loss float64
	for i = 0; i < d; i++ {
		loss = m.lamSum[i] + m.mu[i]
		dE[i] = m.mu[i] - loss*E[i]
		dD[i] = -loss * D[i]
	}
	for _, e := range m.entries {
		dE[e.I] += e.V * E[e.J] * E[e.K]
		if !m.opts.complete {
			dD[e.I] += e.V * (E[e.J]*D[e.K] + D[e.J]*E[e.K])
		}
	}
	m.transitions(E, D, dE, dD)
}

// transitions adds Σ_{j≠i} q_ij (x_j − x_i) to both halves. The diagonal of
// m.q is zero, so the j == i term vanishes on its own.
func (m *Model) transitions(E, D, dE, dD []float64) {
	d := m.d
	var i, j int
	var q, accE, accD float64
	for i = 0; i < d; i++ {
		accE, accD = 0, 0
		for j = 0; j < d; j++ {
			q = m.q[i*d+j]
			if q == 0 {
				continue
			}
			accE += q * (E[j] - E[i])
			accD += q * (D[j] - D[i])
		}
		dE[i] += accE
		dD[i] += accD
	}
}
