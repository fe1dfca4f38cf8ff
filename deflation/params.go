// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"github.com/cpmech/subdefl/amgloc"
	"github.com/cpmech/subdefl/direct"
)

// Params mirrors amgcl's nested subdomain_deflation params block: local
// smoother knobs and the coarse-solver factory selection.
type Params struct {
	Local  amgloc.Params `json:"local"`
	Coarse CoarseParams  `json:"coarse"`
}

// CoarseParams selects and configures the direct-solver factory used to
// factor E.
type CoarseParams struct {
	Kind       string `json:"kind"` // "skyline_lu" (default) or "dense_gj"
	SolverName string `json:"solver_name"`
	MaxMasters int    `json:"max_masters"`
}

// DefaultParams mirrors amgcl's defaults: damped-Jacobi smoothing and a
// skyline_lu coarse solve limited to 4 masters.
func DefaultParams() Params {
	return Params{
		Local:  amgloc.DefaultParams(),
		Coarse: CoarseParams{Kind: "skyline_lu", SolverName: "umfpack", MaxMasters: 4},
	}
}

func (p CoarseParams) factory() direct.Factory {
	if p.Kind == "dense_gj" {
		return direct.DenseGJFactory{}
	}
	return direct.SkylineLUFactory{SolverName: p.SolverName, MaxMasters: p.MaxMasters}
}
