// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitter

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/partition"
)

// rows is a plain RowIterable over pre-built global-column entries, the
// same shape a caller-supplied sparse-matrix adapter would present.
type rows [][]csr.Entry

func (r rows) Rows() int          { return len(r) }
func (r rows) Row(i int) []csr.Entry { return r[i] }

// poissonStrip builds rank 0's row-block of the 8-unknown tridiagonal
// [-1,2,-1] stencil from spec §8 scenario 1: 4 local rows, global columns.
func poissonStrip() rows {
	return rows{
		{{Col: 0, Val: 2}, {Col: 1, Val: -1}},
		{{Col: 0, Val: -1}, {Col: 1, Val: 2}, {Col: 2, Val: -1}},
		{{Col: 1, Val: -1}, {Col: 2, Val: 2}, {Col: 3, Val: -1}},
		{{Col: 2, Val: -1}, {Col: 3, Val: 2}, {Col: 4, Val: -1}},
	}
}

func TestSplitLocalRemoteAndGhosts(t *testing.T) {
	dom := partition.New([]int{4, 4})
	strip := poissonStrip()
	z := basis.Constant(1)
	dvStart := []int{0, 1, 2}
	dvSize := []int{1, 1}

	res := Split(dom, 0, strip, z, dvStart, dvSize)

	chk.IntAssert(res.Aloc.Nrows, 4)
	chk.IntAssert(res.Arem.Ncols, 1)
	chk.Ints(t, "ghostGlobal", res.GhostGlobal, []int{4})
	chk.Ints(t, "numRecv", res.NumRecv, []int{0, 1})

	// nnz conservation: |Aloc row| + |Arem row| = |strip row|.
	for i := 0; i < 4; i++ {
		lb, le := res.Aloc.RowSpan(i)
		rb, re := res.Arem.RowSpan(i)
		got := (le - lb) + (re - rb)
		chk.IntAssert(got, len(strip[i]))
	}

	// only the last row has a ghost contribution, at the compact id 0.
	for i := 0; i < 3; i++ {
		b, e := res.Arem.RowSpan(i)
		chk.IntAssert(e-b, 0)
	}
	b, e := res.Arem.RowSpan(3)
	chk.IntAssert(e-b, 1)
	chk.IntAssert(res.Arem.Col[b], 0)
	chk.Float64(t, "arem row3 val", 1e-15, res.Arem.Val[b], -1)

	// Aloc keeps the tridiagonal structure in local numbering.
	lb, le := res.Aloc.RowSpan(0)
	chk.Ints(t, "aloc row0 cols", res.Aloc.Col[lb:le], []int{0, 1})
	chk.Array(t, "aloc row0 vals", 1e-15, res.Aloc.Val[lb:le], []float64{2, -1})
}

func TestSplitEmptyStrip(t *testing.T) {
	dom := partition.New([]int{4, 0, 4})
	z := basis.Constant(1)
	dvStart := []int{0, 1, 1, 2}
	dvSize := []int{1, 0, 1}

	res := Split(dom, 1, rows{}, z, dvStart, dvSize)
	chk.IntAssert(res.Aloc.Nrows, 0)
	chk.IntAssert(len(res.GhostGlobal), 0)
	chk.Ints(t, "numRecv", res.NumRecv, []int{0, 0, 0})
}
