// SPDX-License-Identifier: MIT

// Package model defines the state-transition models of a state-dependent
// speciation/extinction (SSE) process and the two operations the likelihood
// engine needs from them: the branch derivative and the node merge.
//
// What:
//
//   - Model is a closed variant with three kinds:
//     KindStandard      per-state speciation λ_i, extinction μ_i, transitions Q;
//     KindCladogenetic  speciation tensor λ[i][j][k] (parent i → daughters j,k);
//     KindTimeZone      two sub-models of the same kind switched at a critical
//     time (before for t < crit, after for t ≥ crit).
//   - Derivative(t, x, dxdt) evaluates d/dt of the 2d state [E | D].
//   - Integrate advances a state along one branch, splitting at the critical
//     time so no derivative is evaluated across the switch.
//   - Merge combines the two child states at an internal node.
//
// Equations (d states, Σq over j ≠ i):
//
//	standard:      dE_i = μ_i − (λ_i+μ_i)E_i + λ_i E_i² + Σ q_ij (E_j − E_i)
//	               dD_i = −(λ_i+μ_i)D_i + 2λ_i E_i D_i + Σ q_ij (D_j − D_i)
//	cladogenetic:  Λ_i  = Σ_jk λ_ijk
//	               dE_i = μ_i − (Λ_i+μ_i)E_i + Σ_jk λ_ijk E_j E_k + Σ q_ij (E_j − E_i)
//	               dD_i = −(Λ_i+μ_i)D_i + Σ_jk λ_ijk (E_j D_k + D_j E_k) + Σ q_ij (D_j − D_i)
//
// With WithCompleteTree every lineage is observed and the observation equations
// lose the unobserved-sibling terms (2λ_i E_i D_i, resp. λ_ijk(E_j D_k + D_j E_k)).
//
// Merge rules (observation half; the extinction half is taken from the
// second child and the result is normalized into the running log-likelihood):
//
//	standard:      D_i = D¹_i · D²_i · λ_i
//	cladogenetic:  D_i = ½ Σ_jk λ_ijk (D¹_j D²_k + D²_j D¹_k)
//	time zone:     merges with the before set.
//
// Errors:
//
//   - ErrDimension           rate shapes disagree, or state length is not 2d.
//   - ErrUnsupported         invalid time-zone composition (mixed kinds,
//     nested zones, complete-tree sub-models).
//   - ErrCriticalTime        non-finite critical time.
//   - ErrExtinctionMismatch  children disagree on E (WithExtinctionCheck only).
//
// Concurrency: a Model is immutable after construction and safe for concurrent
// use; Derivative and Merge keep no scratch state.
package model
