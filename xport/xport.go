// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xport is the transport abstraction the deflated operator runs
// over: point-to-point non-blocking send/receive, the collectives needed
// by setup (all-gather, all-reduce, gatherv, broadcast) and communicator
// split/free for the masters' sub-communicator. Two implementations are
// provided: Real, a thin wrapper over github.com/cpmech/gosl/mpi (the
// same library gofem's fem/solver.go uses to detect rank/size), and Fake,
// an in-process goroutine-and-channel broker used by tests so that go
// test exercises every collective and every non-blocking exchange without
// an mpirun launcher.
//
// gosl/mpi's cgo binding, like the derivative fork kept in this pack
// (cogentcore's mpi.Comm), only exposes blocking point-to-point calls.
// Non-blocking semantics are layered on top here: ISend/IRecv spawn a
// goroutine performing the blocking call and report completion on a
// buffered channel; WaitAll drains those channels. The local compute the
// caller issues between the post and the wait still overlaps the transfer,
// which is the property the deflated operator's mul/residual rely on.
package xport

// Undefined is the colour passed to Split by ranks that should be
// dropped from the resulting sub-communicator, mirroring MPI_UNDEFINED.
const Undefined = -1

// Tags partition traffic by phase, exactly as amgcl's subdomain_deflation
// keeps tag_exc_cols/tag_exc_vals/tag_exc_dmat/tag_exc_dvec/tag_exc_lnnz
// distinct so messages between the same pair of ranks in different phases
// are never confused.
const (
	TagExcCols = 1001 // ghost-column-list exchange (C3)
	TagExcVals = 2001 // halo value / deflation-vector exchange (C4, C6)
	TagExcDmat = 3001 // coarse-matrix row payload (C5)
	TagExcDvec = 4001 // coarse-vector payload (C7)
	TagExcLnnz = 5001 // per-rank row-length message (C5)
)

// Request is a pending non-blocking operation. Wait blocks until it
// completes and returns any transport error.
type Request struct {
	done chan error
}

// Wait blocks until the operation completes.
func (r *Request) Wait() error {
	if r == nil {
		return nil
	}
	return <-r.done
}

// WaitAll waits for every request in reqs, in no particular order,
// returning the first error encountered (if any), after draining all of
// them so no goroutine is left blocked on a send.
func WaitAll(reqs []*Request) error {
	var first error
	for _, r := range reqs {
		if err := r.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newRequest() (*Request, chan error) {
	ch := make(chan error, 1)
	return &Request{done: ch}, ch
}

// Comm is the collective+point-to-point surface the deflated operator's
// setup and runtime phases require.
type Comm interface {
	Rank() int
	Size() int

	Barrier()

	// AllGatherInt all-gathers one int per rank into a length-Size slice,
	// used for the domain-size and ndv-size all-gathers of §5.
	AllGatherInt(v int) []int

	// AllGatherInts all-gathers a length-Size row from every rank into a
	// Size×Size matrix, used to build comm_matrix from num_recv (C3).
	AllGatherInts(row []int) [][]int

	// AllGatherVarFloats/AllGatherVarInts all-gather variable-length
	// payloads from every rank, returned in rank order to every rank —
	// used to replicate the coarse operator's row-blocks across masters
	// before factorization (C5).
	AllGatherVarFloats(local []float64) [][]float64
	AllGatherVarInts(local []int) [][]int

	// ISend/IRecv are non-blocking point-to-point transfers of float64
	// payloads. Fake matches them by (peer, tag); Real matches by peer
	// only, since gosl/mpi's point-to-point calls carry no tag.
	ISend(data []float64, dest, tag int) *Request
	IRecv(buf []float64, src, tag int) *Request

	// ISendInts/IRecvInts are the integer-payload counterparts, used for
	// column-id and row-length exchanges.
	ISendInts(data []int, dest, tag int) *Request
	IRecvInts(buf []int, src, tag int) *Request

	// Send/Recv are blocking counterparts used where the algorithm does
	// not need to overlap the transfer (the E row-length, column and value
	// messages of C5).
	Send(data []float64, dest, tag int)
	Recv(buf []float64, src, tag int)
	SendInts(data []int, dest, tag int)
	RecvInts(buf []int, src, tag int)

	// Gatherv gathers variable-length contributions to root, in rank
	// order, using counts/displs sized like MPI_Gatherv's recvcounts and
	// displs. Only root's returned slice is meaningful.
	Gatherv(send []float64, root int, counts, displs []int) []float64

	// Bcast broadcasts buf (already populated on root) from root to every
	// rank, returning the received data.
	Bcast(buf []float64, root int) []float64

	// AllReduceSum sums local across every rank and returns the result on
	// every rank (the distributed inner product of §5).
	AllReduceSum(local float64) float64

	// Split partitions the communicator by colour, ranks ordered by their
	// own rank id within a colour (MPI_Comm_split semantics). Ranks
	// passing Undefined get a nil Comm back.
	Split(colour int) Comm

	// Free releases any resources held by a sub-communicator produced by
	// Split. Freeing the world communicator is a no-op.
	Free()
}
