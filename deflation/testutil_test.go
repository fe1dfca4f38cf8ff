// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"sync"

	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/xport"
)

// runRanks spawns one goroutine per world communicator and waits for all
// of them to return, the harness every multi-rank test in this package
// drives a Setup/Solve call across without an mpirun launcher.
func runRanks(world []xport.Comm, fn func(rank int, comm xport.Comm)) {
	var wg sync.WaitGroup
	wg.Add(len(world))
	for r, comm := range world {
		go func(r int, comm xport.Comm) {
			defer wg.Done()
			fn(r, comm)
		}(r, comm)
	}
	wg.Wait()
}

// tridiagRow returns the global (col,val) entries of row i of the N×N
// [-1,2,-1] stencil, clipped at the boundary.
func tridiagRow(i, n int) []csr.Entry {
	var row []csr.Entry
	if i > 0 {
		row = append(row, csr.Entry{Col: i - 1, Val: -1})
	}
	row = append(row, csr.Entry{Col: i, Val: 2})
	if i < n-1 {
		row = append(row, csr.Entry{Col: i + 1, Val: -1})
	}
	return row
}

// tridiagStrip is a RowIterable over global rows [start,start+count) of
// the N×N [-1,2,-1] stencil, columns left in the global numbering.
type tridiagStrip struct {
	start, count, n int
}

func (s tridiagStrip) Rows() int { return s.count }
func (s tridiagStrip) Row(i int) []csr.Entry { return tridiagRow(s.start+i, s.n) }
