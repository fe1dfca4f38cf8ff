// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splitter implements the local/remote splitter (C2): a two-pass
// scan that partitions a caller-supplied row-strip into A_loc (owned
// columns) and A_rem (ghost columns, compactly renumbered), and lays down
// the local contribution to the sparsity pattern of AZ = A·Z.
package splitter

import (
	"sort"

	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/partition"
)

// Result bundles everything the splitter produces: the two local CSR
// matrices, the compact ghost numbering, and the partially built AZ
// skeleton that the AZ builder (C4) completes with off-diagonal
// contributions.
type Result struct {
	Aloc *csr.Matrix // n×n, local column numbering
	Arem *csr.Matrix // n×n_ghost, compact ghost numbering

	// GhostGlobal maps compact ghost id -> global column, strictly
	// increasing by construction (sorted ascending global column id).
	GhostGlobal []int

	// NumRecv[p] is how many distinct columns this rank needs from p.
	NumRecv []int

	// AZ is the coarse product skeleton: local contributions (columns
	// owned by this rank's own deflation range) are already summed in;
	// AZ.Ptr currently holds, for every row i, one past the last filled
	// slot of that row rather than a standard CSR start — the AZ builder
	// (C4) continues filling from there and performs the final
	// rotate-right that restores a valid CSR Ptr.
	AZ *csr.Matrix
}

// Split runs the two-pass scan described in the design (§4.2) over strip
// (a row-iterable whose column indices are global), using dom to resolve
// column ownership and z to evaluate the local rank's own deflation
// basis. dvStart/dvSize are the global exclusive-prefix-sum and per-rank
// deflation-vector counts (dv_start[P] == K).
func Split(dom *partition.Map, rank int, strip csr.RowIterable, z basis.Basis, dvStart, dvSize []int) *Result {
	n := strip.Rows()
	P := dom.P()
	K := dvStart[P]
	chunkStart := dom.Start(rank)
	ndv := dvSize[rank]

	azPtr := make([]int, n+1)
	rowTouch := utl.IntVals(P, -1)

	locNNZ, remNNZ := 0, 0
	remoteSet := make(map[int]struct{})

	// Pass 1: counting.
	rows := make([][]csr.Entry, n)
	for i := 0; i < n; i++ {
		row := strip.Row(i)
		rows[i] = row
		for _, e := range row {
			d := dom.Owner(e.Col)
			if d == rank {
				locNNZ++
			} else {
				remNNZ++
				remoteSet[e.Col] = struct{}{}
			}
			if rowTouch[d] != i {
				rowTouch[d] = i
				azPtr[i+1] += dvSize[d]
			}
		}
	}

	// Between passes: assign compact ghost ids in sorted global-column
	// order, and accumulate NumRecv by walking the domain table.
	ghostGlobal := make([]int, 0, len(remoteSet))
	for c := range remoteSet {
		ghostGlobal = append(ghostGlobal, c)
	}
	sort.Ints(ghostGlobal)

	ghostID := make(map[int]int, len(ghostGlobal))
	numRecv := make([]int, P)
	cur := 0
	for id, c := range ghostGlobal {
		ghostID[c] = id
		for c >= dom.Domain()[cur+1] {
			cur++
		}
		numRecv[cur]++
	}

	for i := 1; i <= n; i++ {
		azPtr[i] += azPtr[i-1]
	}
	azCol := make([]int, azPtr[n])
	azVal := make([]float64, azPtr[n])

	aloc := csr.NewMatrix(n, n)
	arem := csr.NewMatrix(n, len(ghostGlobal))
	alocCol, alocVal := make([]int, 0, locNNZ), make([]float64, 0, locNNZ)
	aremCol, aremVal := make([]int, 0, remNNZ), make([]float64, 0, remNNZ)
	aloc.Ptr[0], arem.Ptr[0] = 0, 0

	slotMarker := utl.IntVals(K, -1)

	// Pass 2: emission.
	for i := 0; i < n; i++ {
		azRowBeg := azPtr[i]
		azRowEnd := azRowBeg

		for _, e := range rows[i] {
			c, v := e.Col, e.Val
			if c >= chunkStart && c < chunkStart+n {
				locC := c - chunkStart
				alocCol = append(alocCol, locC)
				alocVal = append(alocVal, v)

				for j, k := 0, dvStart[rank]; j < ndv; j, k = j+1, k+1 {
					if slotMarker[k] < azRowBeg {
						slotMarker[k] = azRowEnd
						azCol[azRowEnd] = k
						azVal[azRowEnd] = v * z.At(locC, j)
						azRowEnd++
					} else {
						azVal[slotMarker[k]] += v * z.At(locC, j)
					}
				}
			} else {
				aremCol = append(aremCol, ghostID[c])
				aremVal = append(aremVal, v)
			}
		}

		azPtr[i] = azRowEnd
		aloc.Ptr[i+1] = len(alocCol)
		arem.Ptr[i+1] = len(aremCol)
	}

	aloc.Col, aloc.Val = alocCol, alocVal
	arem.Col, arem.Val = aremCol, aremVal

	az := &csr.Matrix{Nrows: n, Ncols: K, Ptr: azPtr, Col: azCol, Val: azVal}

	return &Result{
		Aloc:        aloc,
		Arem:        arem,
		GhostGlobal: ghostGlobal,
		NumRecv:     numRecv,
		AZ:          az,
	}
}
