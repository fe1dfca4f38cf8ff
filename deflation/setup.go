// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deflation assembles and drives the subdomain-deflated operator:
// the local/remote matrix split (C2), the halo-exchange schedule (C3), the
// coarse-product completion (C4), the coarse operator's assembly and
// factorization (C5), and the online operator with its Krylov-driven
// solve (C6, C7).
package deflation

import (
	"github.com/cpmech/subdefl/amgloc"
	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/partition"
	"github.com/cpmech/subdefl/splitter"
	"github.com/cpmech/subdefl/xport"
)

// Setup runs the full offline assembly (C1 through C5) and returns an
// Operator ready to drive Solve. strip is this rank's row-block of the
// global matrix, with column indices in the global numbering; z is this
// rank's slice of the deflation basis.
func Setup(comm xport.Comm, strip csr.RowIterable, z basis.Basis, params Params) *Operator {
	rank := comm.Rank()
	n := strip.Rows()

	nrows := comm.AllGatherInt(n)
	dom := partition.New(nrows)

	dvSize := comm.AllGatherInt(z.Dim())
	dvMap := partition.New(dvSize)
	dvStart := dvMap.Domain()

	res := splitter.Split(dom, rank, strip, z, dvStart, dvSize)
	sched, commMatrix := buildSchedule(comm, dom, res.GhostGlobal, res.NumRecv)
	completeAZ(comm, sched, dvStart, dvSize, res.Arem, res.AZ, z)

	factory := params.Coarse.factory()
	coarse := setupCoarseOperator(comm, dvStart, dvSize, commMatrix, res.AZ, z, factory)

	amg := amgloc.New(res.Aloc, params.Local)

	return &Operator{
		comm:    comm,
		dom:     dom,
		rank:    rank,
		aloc:    res.Aloc,
		arem:    res.Arem,
		az:      res.AZ,
		amg:     amg,
		sched:   sched,
		z:       z,
		dvStart: dvStart,
		dvSize:  dvSize,
		coarse:  coarse,
	}
}
