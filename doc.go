// SPDX-License-Identifier: MIT

// Package ssetree computes the log-likelihood of a rooted binary phylogeny
// under a state-dependent speciation/extinction (SSE) model.
//
// Every tip carries a 2d state vector [E | D]: E_i is the probability that a
// lineage in state i leaves no sampled descendants, D_i the probability of the
// observed subtree given state i. Branches are integrated from the tips to
// the root with an ODE solver, sibling branches are merged at their parent,
// and the observation half is renormalized at every step so the
// log-likelihood accumulates in a compensated sum instead of underflowing.
//
// Entry points:
//
//	ComputeTreeLoglik          per-state speciation λ (d), μ (d), Q (d×d)
//	ComputeTreeLoglikCla       cladogenetic tensor λ[i][j][k] (d×d×d)
//	ComputeTreeLoglikTimeZone  two parameter sets switched at a critical time
//
// Each returns the root log-likelihood, the normalized root observation vector
// (MergeBranch, length d), the integrated Second child of the root (NodeM,
// length 2d) and the filled state table. Independent branches are evaluated
// in parallel on a bounded worker pool; the result does not depend on the
// worker count.
//
// Under the hood:
//
//	matrix/   dense rate matrices, sparse-iterable speciation tensors, validators
//	loglik/   compensated log-likelihood sum and the normalizer
//	ode/      fixed-step RK4 and adaptive Cash–Karp / Dormand–Prince integrators
//	model/    standard, cladogenetic and time-zone models (derivative + merge)
//	tree/     validated tree description and the per-node state table
//	dag/      generic stage graph executed on a bounded worker pool
//	engine/   builds and runs the per-tree stage graph
//	treegen/  balanced, caterpillar and coalescent test trees
//	store/    SQLite history of runs
//
// Errors are reported under four categories matched with errors.Is:
// ErrInvalidInput, ErrUnsupported, ErrNumerical and ErrIntegrator. The
// originating package sentinel stays in the chain.
//
//	go get github.com/katalvlaran/ssetree
package ssetree
