// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/cpmech/subdefl/deflation"
	"github.com/cpmech/subdefl/krylov"
	"github.com/cpmech/subdefl/problem"
	"github.com/cpmech/subdefl/xport"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".shard", true)
	verbose := io.ArgToBool(1, true)

	comm := xport.NewReal(nil)
	rank := comm.Rank()

	if rank == 0 && verbose {
		io.PfWhite("\nsubdefl -- distributed subdomain-deflation solver\n\n")
		io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")
		io.Pf("\n%v\n", io.ArgsTable(
			"shard path (per-rank .shard suffix added below)", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
		))
	}

	// each rank reads its own shard: <fnamepath>_p<rank>.shard
	shardPath := io.Sf("%s_p%d.shard", fnamepath, rank)
	strip, z, rhs, params, settings := problem.Load(shardPath)

	if verbose {
		io.Pforan("rank %d: loaded shard with %d local rows\n", rank, strip.Rows())
	}

	op := deflation.Setup(comm, strip, z, params)

	x := make([]float64, len(rhs))
	ksettings := krylov.Settings{Tolerance: settings.Tolerance, MaxIter: settings.MaxIter}
	result, err := op.Solve(rhs, x, ksettings)
	if err != nil && verbose {
		io.PfRed("rank %d: solve did not converge: %v (iterations=%d residual=%g)\n", rank, err, result.Iterations, result.Residual)
	}

	if verbose {
		io.Pfgreen("rank %d: solved in %d iterations, residual=%g\n", rank, result.Iterations, result.Residual)
	}

	var buf bytes.Buffer
	for _, v := range x {
		buf.WriteString(io.Sf("%.15g\n", v))
	}
	out := io.Sf("%s_p%d.solution", fnamepath, rank)
	io.WriteFile(out, &buf)
	if verbose {
		io.Pf("rank %d: solution written to <%s>\n", rank, out)
	}
}
