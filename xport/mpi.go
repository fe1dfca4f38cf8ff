// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xport

import "github.com/cpmech/gosl/mpi"

// Real wraps a github.com/cpmech/gosl/mpi communicator, the same package
// gofem's fem/solver.go consults via mpi.IsOn()/mpi.Rank()/mpi.Size() to
// decide whether a run is distributed. gosl/mpi's blocking Send/Recv are
// used directly for the Comm.Send/Recv family; the non-blocking family is
// a goroutine wrapped around them (see package doc).
type Real struct {
	comm *mpi.Communicator
}

// NewReal wraps the world communicator, or the sub-communicator over
// ranks if ranks is non-empty.
func NewReal(ranks []int) *Real {
	if len(ranks) == 0 {
		return &Real{comm: mpi.NewCommunicator(nil)}
	}
	return &Real{comm: mpi.NewCommunicator(ranks)}
}

func (r *Real) Rank() int { return r.comm.Rank() }
func (r *Real) Size() int { return r.comm.Size() }
func (r *Real) Barrier()  { r.comm.Barrier() }

func (r *Real) AllGatherInt(v int) []int {
	local := []float64{float64(v)}
	out := make([]float64, r.Size())
	r.comm.AllGather(out, local)
	ints := make([]int, r.Size())
	for i, x := range out {
		ints[i] = int(x)
	}
	return ints
}

func (r *Real) AllGatherInts(row []int) [][]int {
	n := len(row)
	local := make([]float64, n)
	for i, v := range row {
		local[i] = float64(v)
	}
	out := make([]float64, n*r.Size())
	r.comm.AllGather(out, local)
	mat := make([][]int, r.Size())
	for p := 0; p < r.Size(); p++ {
		mat[p] = make([]int, n)
		for i := 0; i < n; i++ {
			mat[p][i] = int(out[p*n+i])
		}
	}
	return mat
}

func (r *Real) AllGatherVarFloats(local []float64) [][]float64 {
	counts := r.AllGatherInt(len(local))
	displs := make([]int, len(counts))
	for i := 1; i < len(counts); i++ {
		displs[i] = displs[i-1] + counts[i-1]
	}
	flat := r.Gatherv(local, 0, counts, displs)
	flat = r.Bcast(flat, 0)
	out := make([][]float64, r.Size())
	for p := range counts {
		out[p] = flat[displs[p] : displs[p]+counts[p]]
	}
	return out
}

func (r *Real) AllGatherVarInts(local []int) [][]int {
	f := make([]float64, len(local))
	for i, v := range local {
		f[i] = float64(v)
	}
	flat := r.AllGatherVarFloats(f)
	out := make([][]int, len(flat))
	for p, row := range flat {
		out[p] = make([]int, len(row))
		for i, v := range row {
			out[p][i] = int(v)
		}
	}
	return out
}

func (r *Real) ISend(data []float64, dest, tag int) *Request {
	req, done := newRequest()
	go func() {
		r.comm.SendI(data, dest)
		done <- nil
	}()
	_ = tag // gosl/mpi's Send/Recv pair match by peer only; tag ordering
	// is guaranteed by the phase-serialised calling convention (§5).
	return req
}

func (r *Real) IRecv(buf []float64, src, tag int) *Request {
	req, done := newRequest()
	go func() {
		r.comm.RecvI(buf, src)
		done <- nil
	}()
	_ = tag
	return req
}

func (r *Real) ISendInts(data []int, dest, tag int) *Request {
	f := make([]float64, len(data))
	for i, v := range data {
		f[i] = float64(v)
	}
	return r.ISend(f, dest, tag)
}

func (r *Real) IRecvInts(buf []int, src, tag int) *Request {
	f := make([]float64, len(buf))
	req, done := newRequest()
	go func() {
		r.comm.RecvI(f, src)
		for i, v := range f {
			buf[i] = int(v)
		}
		done <- nil
	}()
	_ = tag
	return req
}

func (r *Real) Send(data []float64, dest, tag int)    { r.ISend(data, dest, tag).Wait() }
func (r *Real) Recv(buf []float64, src, tag int)       { r.IRecv(buf, src, tag).Wait() }
func (r *Real) SendInts(data []int, dest, tag int)     { r.ISendInts(data, dest, tag).Wait() }
func (r *Real) RecvInts(buf []int, src, tag int)       { r.IRecvInts(buf, src, tag).Wait() }

func (r *Real) Gatherv(send []float64, root int, counts, displs []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, total)
	r.comm.Gatherv(out, send, counts, displs, root)
	return out
}

func (r *Real) Bcast(buf []float64, root int) []float64 {
	out := append([]float64(nil), buf...)
	r.comm.BcastFromRoot(out)
	return out
}

func (r *Real) AllReduceSum(local float64) float64 {
	out := make([]float64, 1)
	r.comm.AllReduceSum(out, []float64{local})
	return out[0]
}

func (r *Real) Split(colour int) Comm {
	// gosl/mpi communicators are built from an explicit rank set rather
	// than an MPI_Comm_split colour/key pair, so the colour is first
	// resolved to a member-rank list via an all-gather, then a fresh
	// communicator is created over exactly those ranks — the same
	// two-step gofem uses when it needs a sub-group (see fem/solver.go's
	// rank/size gating).
	colours := r.AllGatherInt(colour)
	if colour == Undefined {
		return nil
	}
	members := make([]int, 0, len(colours))
	for p, c := range colours {
		if c == colour {
			members = append(members, p)
		}
	}
	return NewReal(members)
}

func (r *Real) Free() {}
