// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/direct"
	"github.com/cpmech/subdefl/xport"
)

// coarseTopology is the master/slave assignment of design §3: M masters
// host the factorization of E, each responsible for a contiguous range
// of "slave" ranks that feed it their rows and later receive coarse-solve
// results back through it.
type coarseTopology struct {
	nmasters int
	master   int   // which master this rank reports to
	slaves   []int // length nmasters+1, valid only when rank < nmasters
}

func buildTopology(rank, P int, factory direct.Factory, K int) coarseTopology {
	nmasters := factory.CommSize(K)
	if nmasters > P {
		nmasters = P
	}
	if nmasters < 1 {
		nmasters = 1
	}
	nslaves := (P + nmasters - 1) / nmasters

	top := coarseTopology{nmasters: nmasters, master: rank / nslaves}
	if rank < nmasters {
		top.slaves = make([]int, nmasters+1)
		for p := 0; p <= nmasters; p++ {
			s := p * nslaves
			if s > P {
				s = P
			}
			top.slaves[p] = s
		}
	}
	return top
}

// assembleERow computes this rank's rows of E = Zᵀ(AZ) restricted to the
// symmetrized subdomain adjacency (design §4.5): row j, column c is kept
// iff owner(c) is this rank, or comm_matrix says the two subdomains
// exchange halo data in either direction.
func assembleERow(rank, P, ndv int, dvStart, dvSize []int, commMatrix [][]int, az *csr.Matrix, z basis.Basis) (rowNNZ []int, ecol []int, eval []float64) {
	K := dvStart[P]
	erow := make([][]float64, ndv)
	for j := range erow {
		erow[j] = make([]float64, K)
	}

	n := az.Nrows
	for i := 0; i < n; i++ {
		b, e := az.RowSpan(i)
		for k := b; k < e; k++ {
			c, v := az.Col[k], az.Val[k]
			for j := 0; j < ndv; j++ {
				erow[j][c] += v * z.At(i, j)
			}
		}
	}

	adj := make([]int, 0, P)
	for p := 0; p < P; p++ {
		if p == rank || commMatrix[rank][p] > 0 || commMatrix[p][rank] > 0 {
			adj = append(adj, p)
		}
	}

	nnzPerRow := 0
	for _, p := range adj {
		nnzPerRow += dvSize[p]
	}

	rowNNZ = make([]int, ndv)
	ecol = make([]int, 0, ndv*nnzPerRow)
	eval = make([]float64, 0, ndv*nnzPerRow)
	for j := 0; j < ndv; j++ {
		rowNNZ[j] = nnzPerRow
		for _, p := range adj {
			for k := 0; k < dvSize[p]; k++ {
				c := dvStart[p] + k
				ecol = append(ecol, c)
				eval = append(eval, erow[j][c])
			}
		}
	}
	return
}

// coarseFactorization is everything the online operator (C6) and the
// coarse-solve dispatcher (C7) need at runtime.
type coarseFactorization struct {
	top         coarseTopology
	mastersComm xport.Comm // nil on non-master ranks
	solver      direct.Solver
	cf, cx      []float64 // scratch sized to this master's row block
}

// setupCoarseOperator runs C5 in full: row assembly, the row exchange to
// masters, communicator split and factorization.
func setupCoarseOperator(comm xport.Comm, dvStart, dvSize []int, commMatrix [][]int, az *csr.Matrix, z basis.Basis, factory direct.Factory) *coarseFactorization {
	rank := comm.Rank()
	P := comm.Size()
	ndv := dvSize[rank]
	K := dvStart[P]

	rowNNZ, ecol, eval := assembleERow(rank, P, ndv, dvStart, dvSize, commMatrix, az, z)
	top := buildTopology(rank, P, factory, K)

	var recvLenReqs []*xport.Request
	var colReqs, valReqs []*xport.Request
	var Eptr []int
	if rank < top.nmasters {
		blockSize := dvStart[top.slaves[rank+1]] - dvStart[top.slaves[rank]]
		Eptr = make([]int, blockSize+1)
		offset := dvStart[top.slaves[rank]]
		for p := top.slaves[rank]; p < top.slaves[rank+1]; p++ {
			begin := dvStart[p] - offset + 1
			size := dvStart[p+1] - dvStart[p]
			buf := Eptr[begin : begin+size]
			recvLenReqs = append(recvLenReqs, comm.IRecvInts(buf, p, xport.TagExcLnnz))
		}
	}

	comm.SendInts(rowNNZ, top.master, xport.TagExcLnnz)

	var Ecol []int
	var Eval []float64
	if rank < top.nmasters {
		xport.WaitAll(recvLenReqs)
		for i := 1; i < len(Eptr); i++ {
			Eptr[i] += Eptr[i-1]
		}
		Ecol = make([]int, Eptr[len(Eptr)-1])
		Eval = make([]float64, Eptr[len(Eptr)-1])

		offset := dvStart[top.slaves[rank]]
		for p := top.slaves[rank]; p < top.slaves[rank+1]; p++ {
			begin := Eptr[dvStart[p]-offset]
			size := Eptr[dvStart[p+1]-offset] - begin
			colReqs = append(colReqs, comm.IRecvInts(Ecol[begin:begin+size], p, xport.TagExcDmat))
			valReqs = append(valReqs, comm.IRecv(Eval[begin:begin+size], p, xport.TagExcDmat))
		}
	}

	comm.SendInts(ecol, top.master, xport.TagExcDmat)
	comm.Send(eval, top.master, xport.TagExcDmat)

	if rank < top.nmasters {
		xport.WaitAll(colReqs)
		xport.WaitAll(valReqs)
	}

	colour := xport.Undefined
	if rank < top.nmasters {
		colour = 0
	}
	mastersComm := comm.Split(colour)

	cff := &coarseFactorization{top: top}
	if rank < top.nmasters {
		blockSize := len(Eptr) - 1
		solver, err := factory.New(mastersComm, blockSize, Eptr, Ecol, Eval)
		if err != nil {
			panic(err)
		}
		cff.mastersComm = mastersComm
		cff.solver = solver
		// The direct-solver factories (SkylineLU, DenseGJ) both replicate
		// the fully assembled K×K coarse operator on every master, so
		// Solve always runs on the complete coarse vector rather than
		// just this master's own row-block.
		cff.cf = make([]float64, K)
		cff.cx = make([]float64, K)
	}
	return cff
}
