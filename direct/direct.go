// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package direct provides the "DirectSolver" external collaborator of
// design §6: a factorization for the small coarse operator E, replicated
// across a handful of master ranks. Two implementations are provided —
// SkylineLU, a sparse factorization via github.com/cpmech/gosl/la (the
// same la.Triplet/la.GetSolver idiom gofem's fem/domain.go uses for the
// global Jacobian), and DenseGJ, a dense LU solve (gonum) for the
// single-master specialization noted in design §9's Open Questions.
package direct

import "github.com/cpmech/subdefl/xport"

// Solver factors and solves the coarse system E x = f. Once built it may
// be called repeatedly with different right-hand sides.
type Solver interface {
	// Solve computes cx = E^-1 cf.
	Solve(cf, cx []float64) error
	// Clean releases any resources held by the factorization.
	Clean()
}

// Factory builds a Solver over a communicator and decides, via CommSize,
// how many ranks a factorization of a coarse system of the given order
// should occupy — the value design §3 calls M = min(P, CommSize(K)).
type Factory interface {
	// CommSize returns the number of ranks a system of this order should
	// be factored across.
	CommSize(order int) int

	// New builds a solver for the CSR system (ptr,col,val) of the given
	// order, collective over masters.
	New(masters xport.Comm, order int, ptr, col []int, val []float64) (Solver, error)
}
