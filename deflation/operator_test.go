// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/xport"
)

// TestMulHaloExchangeFidelity is scenario 4 of §8: an 8-row strip split
// across two ranks reproduces the same mul() result a single, non
// distributed SpMV against the whole [-1,2,-1] stencil would give.
func TestMulHaloExchangeFidelity(t *testing.T) {
	const n = 8
	world := xport.NewFakeWorld(2)
	got := make([][]float64, 2)

	params := DefaultParams()
	params.Coarse = CoarseParams{Kind: "dense_gj"}

	runRanks(world, func(rank int, comm xport.Comm) {
		strip := tridiagStrip{start: rank * 4, count: 4, n: n}
		op := Setup(comm, strip, basis.Constant(1), params)

		x := make([]float64, 4)
		for i := range x {
			x[i] = float64(rank*4 + i)
		}
		y := make([]float64, 4)
		op.mul(1, x, 0, y)
		got[rank] = y
	})

	// reference: single dense application of the whole stencil to
	// x_global[i] = i.
	full := csr.NewMatrix(n, n)
	var col []int
	var val []float64
	for i := 0; i < n; i++ {
		for _, e := range tridiagRow(i, n) {
			col = append(col, e.Col)
			val = append(val, e.Val)
		}
		full.Ptr[i+1] = len(col)
	}
	full.Col, full.Val = col, val
	xg := make([]float64, n)
	for i := range xg {
		xg[i] = float64(i)
	}
	yg := make([]float64, n)
	csr.SpMV(1, full, xg, 0, yg)

	chk.Array(t, "rank0 mul", 1e-12, got[0], yg[0:4])
	chk.Array(t, "rank1 mul", 1e-12, got[1], yg[4:8])
}

// TestProjectIdempotence is scenario 5 of §8: project(project(x)) equals
// project(x) up to tolerance.
func TestProjectIdempotence(t *testing.T) {
	const n = 8
	world := xport.NewFakeWorld(2)
	diffs := make([]float64, 2)
	yNorm := make([]float64, 2)

	params := DefaultParams()
	params.Coarse = CoarseParams{Kind: "dense_gj"}

	runRanks(world, func(rank int, comm xport.Comm) {
		strip := tridiagStrip{start: rank * 4, count: 4, n: n}
		op := Setup(comm, strip, basis.Constant(1), params)

		x := []float64{0.3, -1.2, 2.5, 7.1}
		if rank == 1 {
			x = []float64{-4.4, 0.9, 3.3, -2.1}
		}
		y := append([]float64(nil), x...)
		op.Project(y)
		z := append([]float64(nil), y...)
		op.Project(z)

		diff := 0.0
		norm := 0.0
		for i := range y {
			d := y[i] - z[i]
			diff += d * d
			norm += y[i] * y[i]
		}
		diffs[rank] = diff
		yNorm[rank] = norm
	})

	totalDiff := diffs[0] + diffs[1]
	totalNorm := yNorm[0] + yNorm[1]
	if totalNorm == 0 {
		totalNorm = 1
	}
	if totalDiff > 1e-20*totalNorm {
		t.Fatalf("project not idempotent: ||y-z||^2=%g ||y||^2=%g", totalDiff, totalNorm)
	}
}

// TestGalerkinPropertyAfterProject checks <x,Z[j]>=0 for every local j
// after project(x), the invariant of §8.
func TestGalerkinPropertyAfterProject(t *testing.T) {
	const n = 8
	world := xport.NewFakeWorld(2)
	residuals := make([]float64, 2)

	params := DefaultParams()
	params.Coarse = CoarseParams{Kind: "dense_gj"}

	runRanks(world, func(rank int, comm xport.Comm) {
		strip := tridiagStrip{start: rank * 4, count: 4, n: n}
		z := basis.Constant(1)
		op := Setup(comm, strip, z, params)

		x := []float64{1, 2, 3, 4}
		if rank == 1 {
			x = []float64{5, -1, 2, 0}
		}
		op.Project(x)

		sum := 0.0
		for i, v := range x {
			sum += v * z.At(i, 0)
		}
		residuals[rank] = sum
	})

	chk.Float64(t, "rank0 <x,Z0>", 1e-8, residuals[0], 0)
	chk.Float64(t, "rank1 <x,Z0>", 1e-8, residuals[1], 0)
}
