// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package direct

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/subdefl/xport"
)

// SkylineLUFactory builds a SkylineLU solver: every master gathers the
// row-blocks contributed by every other master over masters_comm and
// factors the fully assembled coarse operator with
// github.com/cpmech/gosl/la's direct solver (la.GetSolver/InitR/Fact),
// the same call sequence gofem's fem/s_implicit.go uses for the global
// Jacobian. The factorization is replicated on every master rather than
// distributed, mirroring amgcl's default mpi::skyline_lu, which is a
// sequential factorization run once per master rather than a genuinely
// parallel one.
//
// MaxMasters bounds how many ranks CommSize will ever request; a coarse
// system much smaller than P should not tie up every rank in a
// replicated sequential factorization.
type SkylineLUFactory struct {
	SolverName string // e.g. "umfpack"; passed to la.GetSolver
	MaxMasters int
}

func (f SkylineLUFactory) CommSize(order int) int {
	max := f.MaxMasters
	if max <= 0 {
		max = 4
	}
	if order <= 0 {
		return 1
	}
	if order < max {
		return order
	}
	return max
}

func (f SkylineLUFactory) New(masters xport.Comm, localOrder int, ptr, col []int, val []float64) (Solver, error) {
	rowStarts := masters.AllGatherInt(localOrder)
	total := 0
	for _, n := range rowStarts {
		total += n
	}

	// Gather every master's (ptr-deltas, col, val) row-block so each
	// master ends up with the complete, replicated coarse operator.
	deltas := ptrDeltas(ptr)
	allDeltas := masters.AllGatherVarInts(deltas)
	allCol := masters.AllGatherVarInts(col)
	allVal := masters.AllGatherVarFloats(val)

	Eptr := make([]int, total+1)
	row := 0
	for _, d := range allDeltas {
		for _, nnz := range d {
			Eptr[row+1] = Eptr[row] + nnz
			row++
		}
	}
	Ecol := make([]int, 0, Eptr[total])
	Eval := make([]float64, 0, Eptr[total])
	for p := range allCol {
		Ecol = append(Ecol, allCol[p]...)
		Eval = append(Eval, allVal[p]...)
	}

	name := f.SolverName
	if name == "" {
		name = "umfpack"
	}

	kb := new(la.Triplet)
	kb.Init(total, total, len(Ecol))
	for i := 0; i < total; i++ {
		for k := Eptr[i]; k < Eptr[i+1]; k++ {
			kb.Put(i, Ecol[k], Eval[k])
		}
	}

	lsol := la.GetSolver(name)
	if err := lsol.InitR(kb, false, false, false); err != nil {
		return nil, err
	}
	if err := lsol.Fact(); err != nil {
		return nil, err
	}

	return &skylineSolver{order: total, lsol: lsol}, nil
}

// ptrDeltas converts a CSR Ptr array (length nrows+1) into per-row nnz
// counts, the wire format used to reassemble Eptr on the receiving side
// without shipping absolute offsets that would need shifting.
func ptrDeltas(ptr []int) []int {
	if len(ptr) == 0 {
		return nil
	}
	out := make([]int, len(ptr)-1)
	for i := range out {
		out[i] = ptr[i+1] - ptr[i]
	}
	return out
}

type skylineSolver struct {
	order int
	lsol  la.LinSol
}

func (s *skylineSolver) Solve(cf, cx []float64) error {
	if len(cf) != s.order || len(cx) != s.order {
		chk.Panic("direct: SkylineLU.Solve: size mismatch: order=%d len(cf)=%d len(cx)=%d", s.order, len(cf), len(cx))
	}
	return s.lsol.SolveR(cx, cf, false)
}

func (s *skylineSolver) Clean() { s.lsol.Clean() }
