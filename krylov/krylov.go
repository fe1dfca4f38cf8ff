// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package krylov implements the outer Krylov iteration that drives the
// deflated operator (design §5's solve()). Every dot product it needs is
// supplied by the caller rather than computed locally, since in a
// distributed run an inner product is a local partial sum followed by an
// AllReduceSum — the same reverse-communication discipline
// vladimir-ch's gonum/iterative package uses to keep MatVec/PSolve
// pluggable, adapted here for pluggable reductions instead of a resumable
// state machine.
package krylov

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// System is everything a Solver needs from the deflated operator: a
// (possibly distributed) matrix-vector product, a preconditioner solve,
// and a global inner product.
type System struct {
	MatVec func(dst, src []float64)         // dst ← A·src
	PSolve func(dst, src []float64)         // dst ← M⁻¹·src
	Dot    func(x, y []float64) float64     // global <x,y>
}

// Settings bounds the iteration.
type Settings struct {
	Tolerance  float64 // relative residual tolerance, default 1e-6
	MaxIter    int     // default 2*dim
}

// Result reports what the iteration achieved.
type Result struct {
	Iterations int
	Residual   float64 // ||r|| / ||b||
}

// Solver is an iterative method operating over a System.
type Solver interface {
	Solve(sys System, b, x []float64, settings Settings) (Result, error)
}

var errBreakdown = errors.New("krylov: breakdown (rho or omega too small)")
var errNoConverge = errors.New("krylov: iteration limit reached")

const tiny = 1e-300

func defaultSettings(s Settings, dim int) Settings {
	if s.Tolerance <= 0 {
		s.Tolerance = 1e-6
	}
	if s.MaxIter <= 0 {
		s.MaxIter = 2 * dim
	}
	return s
}

// BiCGStab is the preconditioned biconjugate-gradient-stabilized method,
// the Krylov accelerator amgcl pairs with subdomain deflation by default
// for non-symmetric systems.
type BiCGStab struct{}

func (BiCGStab) Solve(sys System, b, x []float64, settings Settings) (Result, error) {
	dim := len(b)
	settings = defaultSettings(settings, dim)

	r := make([]float64, dim)
	rtilde := make([]float64, dim)
	p := make([]float64, dim)
	v := make([]float64, dim)
	s := make([]float64, dim)
	t := make([]float64, dim)
	phat := make([]float64, dim)
	shat := make([]float64, dim)

	sys.MatVec(r, x)
	floats.Scale(-1, r)
	floats.Add(r, b)
	copy(rtilde, r)

	bnorm := math.Sqrt(sys.Dot(b, b))
	if bnorm == 0 {
		bnorm = 1
	}
	res := math.Sqrt(sys.Dot(r, r)) / bnorm
	if res < settings.Tolerance {
		return Result{Iterations: 0, Residual: res}, nil
	}

	var rho, rhoPrev, alpha, omega float64
	for it := 1; it <= settings.MaxIter; it++ {
		rho = sys.Dot(rtilde, r)
		if math.Abs(rho) < tiny {
			return Result{Iterations: it - 1, Residual: res}, errBreakdown
		}

		if it == 1 {
			copy(p, r)
		} else {
			beta := (rho / rhoPrev) * (alpha / omega)
			floats.AddScaled(p, -omega, v) // p -= ω*v
			floats.Scale(beta, p)          // p *= β
			floats.Add(p, r)               // p += r
		}

		sys.PSolve(phat, p)
		sys.MatVec(v, phat)

		alpha = rho / sys.Dot(rtilde, v)
		copy(s, r)
		floats.AddScaled(s, -alpha, v) // s -= α*v

		res = math.Sqrt(sys.Dot(s, s)) / bnorm
		if res < settings.Tolerance {
			floats.AddScaled(x, alpha, phat) // x += α*phat
			return Result{Iterations: it, Residual: res}, nil
		}

		sys.PSolve(shat, s)
		sys.MatVec(t, shat)

		tt := sys.Dot(t, t)
		if tt < tiny {
			return Result{Iterations: it, Residual: res}, errBreakdown
		}
		omega = sys.Dot(t, s) / tt

		floats.AddScaled(x, alpha, phat) // x += α*phat
		floats.AddScaled(x, omega, shat) // x += ω*shat
		copy(r, s)
		floats.AddScaled(r, -omega, t) // r -= ω*t

		res = math.Sqrt(sys.Dot(r, r)) / bnorm
		if res < settings.Tolerance {
			return Result{Iterations: it, Residual: res}, nil
		}
		if math.Abs(omega) < tiny {
			return Result{Iterations: it, Residual: res}, errBreakdown
		}
		rhoPrev = rho
	}
	return Result{Iterations: settings.MaxIter, Residual: res}, errNoConverge
}
