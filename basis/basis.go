// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package basis defines the caller-supplied deflation basis Z: a per-rank
// functional evaluator z(i, j) for local row i and deflation column j,
// never materialised as a global matrix.
package basis

// Basis is a subdomain's slice of the deflation basis Z: an n×k_local
// functional evaluator supplied by the caller. Rows are local row indices
// [0,n); columns are local deflation-vector indices [0,dim()).
type Basis interface {
	// Dim returns k_local, the number of deflation vectors on this rank.
	Dim() int

	// At returns Z[row,j] for local row and deflation column j.
	At(row int, j int) float64
}

// constant implements pointwise-constant (block) deflation vectors: one
// deflation vector per degree of freedom in a block, z(i,j) = 1 iff
// i mod blockSize == j.
type constant struct {
	blockSize int
}

// Constant returns the pointwise-constant deflation basis used when no
// near-null-space information is supplied by the caller: blockSize
// deflation vectors, z(i,j) = 1 iff i mod blockSize == j.
func Constant(blockSize int) Basis {
	if blockSize < 1 {
		blockSize = 1
	}
	return constant{blockSize: blockSize}
}

func (c constant) Dim() int { return c.blockSize }

func (c constant) At(row, j int) float64 {
	if row%c.blockSize == j {
		return 1
	}
	return 0
}

// Slice adapts a dense [][]float64 (row-major, n×k) already held in memory
// into a Basis. Useful in tests and for small subdomains.
type Slice [][]float64

func (s Slice) Dim() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func (s Slice) At(row, j int) float64 {
	return s[row][j]
}
