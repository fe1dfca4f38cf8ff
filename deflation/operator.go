// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"golang.org/x/sync/errgroup"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/subdefl/amgloc"
	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/krylov"
	"github.com/cpmech/subdefl/partition"
	"github.com/cpmech/subdefl/xport"
)

// Operator is the assembled deflated operator (C6): a subdomain's local
// matrix, its halo-exchange schedule, the online AMG smoother and the
// coarse-solve dispatcher, wired together into mul/residual/project/apply
// and a driving Krylov solve.
type Operator struct {
	comm xport.Comm
	dom  *partition.Map
	rank int

	aloc *csr.Matrix
	arem *csr.Matrix
	az   *csr.Matrix // n×K coarse-product skeleton, needed at runtime by project
	amg  amgloc.Preconditioner

	sched *Schedule
	z     basis.Basis

	dvStart, dvSize []int
	coarse          *coarseFactorization
}

// exchange is a single in-flight halo exchange of a distributed vector.
type exchange struct {
	sendBuf  []float64
	recvBuf  []float64
	recvReqs []*xport.Request
	sendReqs []*xport.Request
}

func (op *Operator) startExchange(x []float64) *exchange {
	ex := &exchange{
		sendBuf: make([]float64, len(op.sched.SendCol)),
		recvBuf: make([]float64, op.arem.Ncols),
	}
	csr.Gather(ex.sendBuf, x, op.sched.SendCol)
	for i, nbr := range op.sched.RecvNbr {
		buf := ex.recvBuf[op.sched.RecvPtr[i]:op.sched.RecvPtr[i+1]]
		ex.recvReqs = append(ex.recvReqs, op.comm.IRecv(buf, nbr, xport.TagExcVals))
	}
	for i, nbr := range op.sched.SendNbr {
		data := ex.sendBuf[op.sched.SendPtr[i]:op.sched.SendPtr[i+1]]
		ex.sendReqs = append(ex.sendReqs, op.comm.ISend(data, nbr, xport.TagExcVals))
	}
	return ex
}

// finishExchange waits the receive and send legs concurrently via
// errgroup rather than back-to-back — the two waits are independent, and
// this is the idiom the pack uses for goroutine fan-out with error
// propagation instead of a bare sync.WaitGroup that would swallow errors.
func (op *Operator) finishExchange(ex *exchange) []float64 {
	var g errgroup.Group
	g.Go(func() error { return xport.WaitAll(ex.recvReqs) })
	g.Go(func() error { return xport.WaitAll(ex.sendReqs) })
	if err := g.Wait(); err != nil {
		chk.Panic("deflation: halo exchange failed: %v", err)
	}
	return ex.recvBuf
}

// mul computes y ← alpha*A*x + beta*y, overlapping the halo exchange of x
// with the local A_loc·x product (§5's compute/communication overlap
// requirement) before folding in the remote A_rem·x_ghost contribution.
func (op *Operator) mul(alpha float64, x []float64, beta float64, y []float64) {
	ex := op.startExchange(x)
	csr.SpMV(alpha, op.aloc, x, beta, y)
	ghost := op.finishExchange(ex)
	if op.arem.NNZ() > 0 {
		csr.SpMV(alpha, op.arem, ghost, 1, y)
	}
}

// coarseSolve dispatches the coarse system E·dx = df (C7): every rank's
// own exact contribution dfLocal (Z's support is confined to its owning
// rank, so no cross-rank summation is needed to assemble it) is gathered
// to rank 0, broadcast in full to every rank, solved redundantly on every
// master (the direct-solver factories both replicate the full K×K
// operator across masters), and the full-length result is broadcast back
// from rank 0 — which is always a master, since at least one master
// always exists. Returned unsliced (length K, identical on every rank),
// since project needs every coarse component to drive AZ·dx.
func (op *Operator) coarseSolve(dfLocal []float64) []float64 {
	comm := op.comm
	rank := comm.Rank()
	P := comm.Size()
	K := op.dvStart[P]

	full := comm.Gatherv(dfLocal, 0, op.dvSize, op.dvStart[:P])
	full = comm.Bcast(full, 0)

	if rank < op.coarse.top.nmasters {
		copy(op.coarse.cf, full)
		if err := op.coarse.solver.Solve(op.coarse.cf, op.coarse.cx); err != nil {
			chk.Panic("deflation: coarse solve failed: %v", err)
		}
	}

	var dxFull []float64
	if rank == 0 {
		dxFull = op.coarse.cx
	} else {
		dxFull = make([]float64, K)
	}
	return comm.Bcast(dxFull, 0)
}

// project computes x ← x − AZ·(E⁻¹·Zᵀx). Step 1, the inner product
// <x,Z[j]>, needs no communication since Z[j] has local support only;
// step 3 is a plain local spmv against the n×K coarse-product skeleton
// because AZ already carries every cross-rank contribution baked in at
// setup time. Idempotent: ZᵀAZ = E exactly (by construction, since E's
// own assembly sums the very same AZ against the very same Z), so a
// second application sees Zᵀx = 0 and is a no-op.
func (op *Operator) project(x []float64) {
	ndv := op.dvSize[op.rank]
	df := make([]float64, ndv)
	for j := 0; j < ndv; j++ {
		sum := 0.0
		for i := 0; i < len(x); i++ {
			sum += op.z.At(i, j) * x[i]
		}
		df[j] = sum
	}
	dx := op.coarseSolve(df)
	csr.SpMV(-1, op.az, dx, 1, x)
}

// Project exposes project for callers (and tests) driving the projector
// directly rather than through mul/residual.
func (op *Operator) Project(x []float64) { op.project(x) }

// MulNProject computes y ← project(alpha*A*x + beta*y).
func (op *Operator) MulNProject(alpha float64, x []float64, beta float64, y []float64) {
	op.mul(alpha, x, beta, y)
	op.project(y)
}

// Residual computes r ← project(f − A*x).
func (op *Operator) Residual(f, x, r []float64) {
	op.mul(-1, x, 0, r)
	for i := range r {
		r[i] += f[i]
	}
	op.project(r)
}

// Apply runs the local preconditioner only: x ← M⁻¹_loc rhs. No
// communication, matching design §4.6 exactly — the coarse correction is
// folded in separately by PostProcess, not by Apply.
func (op *Operator) Apply(rhs, x []float64) {
	op.amg.Apply(rhs, x)
}

// PostProcess is the final global correction
// x ← x + Z·E⁻¹·Zᵀ·(rhs − A x), run once after the Krylov loop converges.
func (op *Operator) PostProcess(rhs, x []float64) {
	q := make([]float64, len(rhs))
	op.mul(1, x, 0, q) // q ← A x

	ndv := op.dvSize[op.rank]
	df := make([]float64, ndv)
	for j := 0; j < ndv; j++ {
		s1, s2 := 0.0, 0.0
		for i := range rhs {
			zij := op.z.At(i, j)
			s1 += rhs[i] * zij
			s2 += q[i] * zij
		}
		df[j] = s1 - s2
	}

	dx := op.coarseSolve(df)
	base := op.dvStart[op.rank]
	for j := 0; j < ndv; j++ {
		coeff := dx[base+j]
		for i := range x {
			x[i] += coeff * op.z.At(i, j)
		}
	}
}

// Solve invokes the Krylov driver with this operator supplying both the
// (projected) matrix-vector product and the (local) preconditioner, and
// the distributed inner product of §5. On return it runs PostProcess and
// reports the driver's convergence tuple.
func (op *Operator) Solve(rhs, x []float64, settings krylov.Settings) (krylov.Result, error) {
	sys := krylov.System{
		MatVec: func(dst, src []float64) { op.MulNProject(1, src, 0, dst) },
		PSolve: func(dst, src []float64) { op.Apply(src, dst) },
		Dot: func(a, b []float64) float64 {
			return op.comm.AllReduceSum(csr.InnerProduct(a, b))
		},
	}
	// The driver forms its residual as b − MatVec(x); handing it the
	// projected right-hand side makes that residual project(rhs − A x).
	prhs := append([]float64(nil), rhs...)
	op.project(prhs)
	method := krylov.BiCGStab{}
	result, err := method.Solve(sys, prhs, x, settings)
	op.PostProcess(rhs, x)
	return result, err
}

// LocalRows returns the number of rows this rank owns.
func (op *Operator) LocalRows() int { return op.aloc.Nrows }
