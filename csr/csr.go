// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package csr implements the local sparse-matrix/vector backend used by
// the deflated operator: compressed row storage, sparse matrix-vector
// products, inner products, axpy-family updates and index gathers. This
// is the "backend" capability set of the design (§6): every operation the
// online operator needs, expressed over plain []float64 slices.
package csr

import "github.com/cpmech/gosl/chk"

// Entry is a single (column, value) pair yielded by a row iterator.
type Entry struct {
	Col int
	Val float64
}

// RowIterable is the caller-supplied sparse-matrix adapter: any type
// exposing a row count and per-row iteration over (col, value) pairs with
// col a non-negative global index.
type RowIterable interface {
	Rows() int
	Row(i int) []Entry
}

// Matrix is a compressed-row-storage matrix, the concrete representation
// of A_loc, A_rem, AZ and (assembled) E.
type Matrix struct {
	Nrows int
	Ncols int
	Ptr   []int
	Col   []int
	Val   []float64
}

// NewMatrix returns an empty nrows×ncols matrix with Ptr pre-sized.
func NewMatrix(nrows, ncols int) *Matrix {
	return &Matrix{
		Nrows: nrows,
		Ncols: ncols,
		Ptr:   make([]int, nrows+1),
	}
}

// RowSpan returns the [begin,end) index range in Col/Val for row i.
func (m *Matrix) RowSpan(i int) (begin, end int) {
	return m.Ptr[i], m.Ptr[i+1]
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.Val) }

// Rows implements RowIterable, letting a Matrix serve as another matrix's
// input strip (used by tests to feed a dense reference matrix through the
// same splitting/assembly code as caller-supplied adapters).
func (m *Matrix) Rows() int { return m.Nrows }

func (m *Matrix) Row(i int) []Entry {
	b, e := m.RowSpan(i)
	out := make([]Entry, e-b)
	for k := b; k < e; k++ {
		out[k-b] = Entry{Col: m.Col[k], Val: m.Val[k]}
	}
	return out
}

// SpMV computes y ← alpha*A*x + beta*y.
func SpMV(alpha float64, a *Matrix, x []float64, beta float64, y []float64) {
	if len(x) != a.Ncols {
		chk.Panic("csr: SpMV: x has length %d, want %d", len(x), a.Ncols)
	}
	if len(y) != a.Nrows {
		chk.Panic("csr: SpMV: y has length %d, want %d", len(y), a.Nrows)
	}
	for i := 0; i < a.Nrows; i++ {
		sum := 0.0
		for k := a.Ptr[i]; k < a.Ptr[i+1]; k++ {
			sum += a.Val[k] * x[a.Col[k]]
		}
		y[i] = alpha*sum + beta*y[i]
	}
}

// Residual computes r ← f - A*x.
func Residual(f []float64, a *Matrix, x []float64, r []float64) {
	SpMV(-1, a, x, 0, r)
	for i := range r {
		r[i] += f[i]
	}
}

// InnerProduct returns the local dot product <x,y>. Global reductions are
// the caller's responsibility (see xport.Comm.AllReduceSum).
func InnerProduct(x, y []float64) float64 {
	if len(x) != len(y) {
		chk.Panic("csr: InnerProduct: length mismatch %d != %d", len(x), len(y))
	}
	sum := 0.0
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

// Norm2Sq returns the local contribution to a squared 2-norm; callers combine
// across ranks with AllReduceSum then Sqrt.
func Norm2Sq(x []float64) float64 { return InnerProduct(x, x) }

// Axpby computes y ← a*x + b*y.
func Axpby(a float64, x []float64, b float64, y []float64) {
	for i := range y {
		y[i] = a*x[i] + b*y[i]
	}
}

// Axpbypcz computes z ← a*x + b*y + c*z.
func Axpbypcz(a float64, x []float64, b float64, y []float64, c float64, z []float64) {
	for i := range z {
		z[i] = a*x[i] + b*y[i] + c*z[i]
	}
}

// Gather copies x[idx[i]] into dst[i] for every i, the backend's
// column-gatherer used to pack outbound halo values.
func Gather(dst []float64, x []float64, idx []int) {
	for i, j := range idx {
		dst[i] = x[j]
	}
}

// Fill sets every element of x to v.
func Fill(x []float64, v float64) {
	for i := range x {
		x[i] = v
	}
}
