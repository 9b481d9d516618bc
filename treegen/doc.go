// SPDX-License-Identifier: MIT

// Package treegen builds deterministic and random rooted binary trees with
// tip states, ready to feed the likelihood engine.
//
// Shapes:
//
//	Balanced(n)     split the tips in halves recursively.
//	Caterpillar(n)  ((((0,1),2),3),…): maximally unbalanced.
//	Coalescent(n)   Kingman coalescent: random pairs merge after
//	                exponential waiting times (gonum distuv); ultrametric.
//
// Node numbering: tips are 0..n-1, internal nodes n..2n-2 in creation order,
// which is bottom-up, so Fixture.Ances can be used as is and the root is last.
//
// Options:
//
//   - WithSeed(seed)      reproducible randomness (default DefaultSeed).
//   - WithLengthFn(fn)    branch length draw (default constant 1).
//   - WithUltrametric()   place every tip at the same depth.
//   - WithDim(d)          number of observable states (default 2).
//   - WithTipStates(fn)   observed state per tip (default tip % d).
//   - WithRandomTipStates uniformly random observed states.
//   - WithRate(r)         coalescent rate per pair (default 1).
//
// Option constructors panic on meaningless arguments; generators return
// ErrTooFewTips or ErrBadLength.
package treegen
