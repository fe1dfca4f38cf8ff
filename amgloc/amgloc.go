// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package amgloc is the per-subdomain preconditioner the deflated operator
// wraps around A_loc: an external collaborator in its own right (a real
// algebraic multigrid hierarchy is out of scope here, matching design
// §9's "AMG hierarchy construction/coarsening" non-goal), rendered as a
// fixed count of either damped-Jacobi or forward Gauss-Seidel sweeps
// (chosen by Params.Kind) so the operator, the coarse-solve dispatch and the Krylov driver all have
// a real, testable Apply to call.
package amgloc

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/subdefl/csr"
)

// Preconditioner applies an approximate solve of A_loc·x = f, the local
// smoothing step referenced throughout design §5 as "apply the local
// preconditioner".
type Preconditioner interface {
	// Apply computes x ← M⁻¹f for the wrapped local matrix.
	Apply(f, x []float64)

	// TopMatrix returns the local matrix the preconditioner was built for,
	// so callers can assemble residuals without holding their own copy.
	TopMatrix() *csr.Matrix

	// Params returns the parameters this preconditioner was built with.
	Params() Params
}

// Params mirrors amgcl's smoother parameter block, trimmed to the knobs a
// damped-Jacobi/Gauss-Seidel smoother actually consumes.
type Params struct {
	Kind      string  `json:"kind"`      // "jacobi" or "gauss_seidel"
	Damping   float64 `json:"damping"`   // relaxation factor, default 0.72
	Sweeps    int     `json:"sweeps"`    // number of smoothing sweeps, default 1
}

// DefaultParams returns amgcl's usual damped-Jacobi defaults.
func DefaultParams() Params {
	return Params{Kind: "jacobi", Damping: 0.72, Sweeps: 1}
}

type smoother struct {
	a      *csr.Matrix
	diag   []float64
	params Params
}

// New builds a Preconditioner over a (local, symmetric-ordering-free)
// matrix. The matrix is not copied; callers must not mutate it afterwards.
func New(a *csr.Matrix, params Params) Preconditioner {
	if params.Sweeps <= 0 {
		params.Sweeps = 1
	}
	if params.Damping <= 0 {
		params.Damping = 0.72
	}
	diag := make([]float64, a.Nrows)
	for i := 0; i < a.Nrows; i++ {
		b, e := a.RowSpan(i)
		for k := b; k < e; k++ {
			if a.Col[k] == i {
				diag[i] = a.Val[k]
			}
		}
		if diag[i] == 0 {
			chk.Panic("amgloc: matrix has a zero diagonal at local row %d", i)
		}
	}
	return &smoother{a: a, diag: diag, params: params}
}

func (s *smoother) TopMatrix() *csr.Matrix { return s.a }
func (s *smoother) Params() Params         { return s.params }

func (s *smoother) Apply(f, x []float64) {
	n := s.a.Nrows
	if len(f) != n || len(x) != n {
		chk.Panic("amgloc: Apply: size mismatch: n=%d len(f)=%d len(x)=%d", n, len(f), len(x))
	}
	csr.Fill(x, 0)
	switch s.params.Kind {
	case "gauss_seidel":
		s.gaussSeidel(f, x)
	default:
		s.jacobi(f, x)
	}
}

// jacobi runs Sweeps passes of x ← x + damping·D⁻¹(f - A·x).
func (s *smoother) jacobi(f, x []float64) {
	n := s.a.Nrows
	r := make([]float64, n)
	for sweep := 0; sweep < s.params.Sweeps; sweep++ {
		csr.Residual(f, s.a, x, r)
		for i := 0; i < n; i++ {
			x[i] += s.params.Damping * r[i] / s.diag[i]
		}
	}
}

// gaussSeidel runs Sweeps forward sweeps of the classical update, using
// values already updated earlier in the same sweep.
func (s *smoother) gaussSeidel(f, x []float64) {
	n := s.a.Nrows
	for sweep := 0; sweep < s.params.Sweeps; sweep++ {
		for i := 0; i < n; i++ {
			sum := f[i]
			b, e := s.a.RowSpan(i)
			for k := b; k < e; k++ {
				if c := s.a.Col[k]; c != i {
					sum -= s.a.Val[k] * x[c]
				}
			}
			x[i] = sum / s.diag[i]
		}
	}
}
