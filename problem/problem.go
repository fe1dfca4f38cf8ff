// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package problem reads a distributed linear-system problem from a JSON
// file, the same encoding/json + io.ReadFile idiom gofem's inp.ReadSim
// uses for its .sim input, adapted here to a matrix-market-free format
// since no sparse-matrix file reader exists anywhere in this pack: a
// row-major list of global (row, col, val) triplets for this rank's
// strip, this rank's slice of the right-hand side, and a block size for
// the constant deflation basis.
package problem

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/deflation"
)

// Triplet is one (row, col, val) contribution to this rank's row-strip,
// with row local to the strip and col in the global numbering.
type Triplet struct {
	Row int     `json:"row"`
	Col int     `json:"col"`
	Val float64 `json:"val"`
}

// File is the on-disk shape of one rank's shard of a distributed problem.
type File struct {
	Desc        string    `json:"desc"`         // description of the problem
	Rows        int       `json:"rows"`         // number of local rows in this shard
	Triplets    []Triplet `json:"triplets"`     // this rank's strip, coordinate form
	Rhs         []float64 `json:"rhs"`           // this rank's slice of the right-hand side
	BlockSize   int       `json:"block_size"`    // deflation vectors per rank; 0 selects 1
	Local       string    `json:"local"`         // "jacobi" or "gauss_seidel"
	Sweeps      int       `json:"sweeps"`
	Damping     float64   `json:"damping"`
	CoarseKind  string    `json:"coarse_kind"`   // "skyline_lu" (default) or "dense_gj"
	MaxMasters  int       `json:"max_masters"`
	Tolerance   float64   `json:"tolerance"`
	MaxIter     int       `json:"max_iter"`
}

// stripAdapter turns a File's coordinate-form triplets into a
// csr.RowIterable without ever materialising a full CSR matrix, mirroring
// how gofem's own element routines hand rows to the global system one at
// a time rather than building a dense intermediate.
type stripAdapter struct {
	rows [][]csr.Entry
}

func (s *stripAdapter) Rows() int { return len(s.rows) }
func (s *stripAdapter) Row(i int) []csr.Entry { return s.rows[i] }

// Load reads path (this rank's shard) and returns the strip, right-hand
// side and solver parameters ready to hand to deflation.Setup.
func Load(path string) (strip csr.RowIterable, z basis.Basis, rhs []float64, params deflation.Params, settings SolveSettings) {
	b, err := io.ReadFile(path)
	if err != nil {
		chk.Panic("problem: cannot read %q: %v", path, err)
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		chk.Panic("problem: cannot unmarshal %q: %v", path, err)
	}

	rows := make([][]csr.Entry, f.Rows)
	for _, tr := range f.Triplets {
		if tr.Row < 0 || tr.Row >= f.Rows {
			chk.Panic("problem: %s: triplet row %d out of range [0,%d)", filepath.Base(path), tr.Row, f.Rows)
		}
		rows[tr.Row] = append(rows[tr.Row], csr.Entry{Col: tr.Col, Val: tr.Val})
	}
	strip = &stripAdapter{rows: rows}

	blockSize := f.BlockSize
	if blockSize <= 0 {
		blockSize = 1
	}
	z = basis.Constant(blockSize)

	params = deflation.DefaultParams()
	if f.Local != "" {
		params.Local.Kind = f.Local
	}
	if f.Sweeps > 0 {
		params.Local.Sweeps = f.Sweeps
	}
	if f.Damping > 0 {
		params.Local.Damping = f.Damping
	}
	if f.CoarseKind != "" {
		params.Coarse.Kind = f.CoarseKind
	}
	if f.MaxMasters > 0 {
		params.Coarse.MaxMasters = f.MaxMasters
	}

	settings = SolveSettings{Tolerance: f.Tolerance, MaxIter: f.MaxIter}
	return strip, z, f.Rhs, params, settings
}

// SolveSettings mirrors krylov.Settings, kept as its own type so this
// package does not need to import krylov just to shuttle two numbers.
type SolveSettings struct {
	Tolerance float64
	MaxIter   int
}
