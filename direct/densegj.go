// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package direct

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/subdefl/xport"
)

// DenseGJFactory materializes E as a dense matrix and inverts it via
// gonum's LU/dense solve, the Go rendering of the "simpler variant" noted
// in design §9: single deflation vector per subdomain, one master,
// E inverted in one shot rather than assembled across a masters_comm.
// CommSize always returns 1, so this factory only ever produces a single
// master regardless of P.
type DenseGJFactory struct{}

func (DenseGJFactory) CommSize(order int) int { return 1 }

func (DenseGJFactory) New(masters xport.Comm, localOrder int, ptr, col []int, val []float64) (Solver, error) {
	if masters.Size() != 1 {
		chk.Panic("direct: DenseGJFactory requires exactly one master, got %d", masters.Size())
	}
	dense := mat.NewDense(localOrder, localOrder, nil)
	for i := 0; i < localOrder; i++ {
		for k := ptr[i]; k < ptr[i+1]; k++ {
			dense.Set(i, col[k], val[k])
		}
	}
	var lu mat.LU
	lu.Factorize(dense)
	return &denseSolver{order: localOrder, lu: lu}, nil
}

type denseSolver struct {
	order int
	lu    mat.LU
}

func (s *denseSolver) Solve(cf, cx []float64) error {
	if len(cf) != s.order || len(cx) != s.order {
		chk.Panic("direct: DenseGJ.Solve: size mismatch: order=%d len(cf)=%d len(cx)=%d", s.order, len(cf), len(cx))
	}
	b := mat.NewVecDense(s.order, cf)
	x := mat.NewVecDense(s.order, nil)
	if err := s.lu.SolveVecTo(x, false, b); err != nil {
		return err
	}
	copy(cx, x.RawVector().Data)
	return nil
}

func (s *denseSolver) Clean() {}
