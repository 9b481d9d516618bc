// SPDX-License-Identifier: MIT

// Package loglik keeps probability vectors in a safe floating-point range
// while folding the discarded scale into a running log-likelihood.
//
// What:
//
//   - Sum: a compensated (Neumaier) accumulator for log contributions. Two
//     subtrees' sums are combined with Merge at their common ancestor, so no
//     global lock or shared total is ever needed.
//   - Normalize: rescales a vector to unit L1 mass and adds ln(mass) to a Sum.
//   - NormalizeNode: the same on the observation half of a 2d state vector.
//
// Why:
//
//	Products of observation probabilities shrink geometrically towards the
//	root; without rescaling they underflow long before the root is reached.
//	Keeping every vector at unit mass also keeps the ODE absolute tolerance
//	meaningful.
//
// Guarantees:
//
//   - Vectors whose mass is already within Band of 1 are left untouched and
//     contribute exactly zero, so normalizing twice is idempotent.
//   - original = normalized · exp(contribution) within floating-point error.
//   - An all-zero vector is ErrDegenerate, a NaN/Inf mass is ErrNonFinite;
//     neither is ever turned into a NaN log-likelihood.
package loglik
