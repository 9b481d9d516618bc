// SPDX-License-Identifier: MIT
package engine

import "github.com/katalvlaran/ssetree/loglik"

// Packet is the value passed between stages.
type Packet struct {
	State  []float64  // 2d: extinction half then observation half
	LogLik loglik.Sum // log-likelihood accumulated below this point
}

// Flatten returns the state followed by the accumulated log-likelihood. A
// branch packet gives [E | D | loglik]; the collect packet gives
// [D_root | nodeM | loglik].
func (p Packet) Flatten() []float64 {
	out := make([]float64, len(p.State)+1)
	copy(out, p.State)
	out[len(p.State)] = p.LogLik.Value()

	return out
}
