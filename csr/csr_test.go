// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csr

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// tridiag builds the classic [-1,2,-1] stencil on n rows.
func tridiag(n int) *Matrix {
	m := NewMatrix(n, n)
	var col []int
	var val []float64
	for i := 0; i < n; i++ {
		if i > 0 {
			col = append(col, i-1)
			val = append(val, -1)
		}
		col = append(col, i)
		val = append(val, 2)
		if i < n-1 {
			col = append(col, i+1)
			val = append(val, -1)
		}
		m.Ptr[i+1] = len(col)
	}
	m.Col, m.Val = col, val
	return m
}

func TestSpMV(t *testing.T) {
	a := tridiag(3)
	x := []float64{1, 2, 3}
	y := make([]float64, 3)
	SpMV(1, a, x, 0, y)
	chk.Array(t, "y", 1e-15, y, []float64{0, 0, 4})
}

func TestSpMVAxpby(t *testing.T) {
	a := tridiag(3)
	x := []float64{1, 2, 3}
	y := []float64{10, 10, 10}
	SpMV(2, a, x, 3, y)
	// alpha*A*x = [0,0,8]; beta*y = [30,30,30]
	chk.Array(t, "y", 1e-15, y, []float64{30, 30, 38})
}

func TestResidual(t *testing.T) {
	a := tridiag(3)
	x := []float64{1, 2, 3}
	f := []float64{1, 1, 1}
	r := make([]float64, 3)
	Residual(f, a, x, r)
	chk.Array(t, "r", 1e-15, r, []float64{1, 1, -3})
}

func TestInnerProduct(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}
	chk.Float64(t, "dot", 1e-15, InnerProduct(x, y), 32)
	chk.Float64(t, "norm2sq", 1e-15, Norm2Sq(x), 14)
}

func TestAxpbypcz(t *testing.T) {
	x := []float64{1, 1, 1}
	y := []float64{2, 2, 2}
	z := []float64{3, 3, 3}
	Axpbypcz(1, x, 1, y, 1, z)
	chk.Array(t, "z", 1e-15, z, []float64{6, 6, 6})
}

func TestGatherAndFill(t *testing.T) {
	x := []float64{10, 20, 30, 40}
	dst := make([]float64, 2)
	Gather(dst, x, []int{3, 1})
	chk.Array(t, "dst", 1e-15, dst, []float64{40, 20})

	Fill(x, -1)
	chk.Array(t, "filled", 1e-15, x, []float64{-1, -1, -1, -1})
}
