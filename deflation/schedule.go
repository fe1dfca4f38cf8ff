// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"github.com/cpmech/subdefl/partition"
	"github.com/cpmech/subdefl/xport"
)

// Schedule is the two-sided halo-exchange communication pattern (C3):
// which ranks this rank receives ghost values from and sends owned
// values to, and the local indices of the values to dispatch.
type Schedule struct {
	RecvNbr []int // source ranks, ascending
	RecvPtr []int // exclusive prefix sums of per-source counts, len(RecvNbr)+1

	SendNbr []int // destination ranks, ascending
	SendPtr []int // exclusive prefix sums of per-destination counts
	SendCol []int // local indices into x of values to dispatch, one per SendPtr[len-1] slot
}

// buildSchedule discovers send/receive neighbours and exchanges the exact
// column lists via an all-to-all of per-pair counts followed by an
// explicit index exchange, exactly as design §4.3 prescribes. It returns
// the schedule together with the all-gathered comm_matrix (row p is rank
// p's num_recv, not symmetrized) so callers
// (E assembly) can reuse it without a second all-gather.
func buildSchedule(comm xport.Comm, dom *partition.Map, ghostGlobal []int, numRecv []int) (*Schedule, [][]int) {
	P := dom.P()
	rank := comm.Rank()
	commMatrix := comm.AllGatherInts(numRecv)

	sched := &Schedule{RecvPtr: []int{0}, SendPtr: []int{0}}
	for i := 0; i < P; i++ {
		if nr := commMatrix[rank][i]; nr > 0 {
			sched.RecvNbr = append(sched.RecvNbr, i)
			sched.RecvPtr = append(sched.RecvPtr, sched.RecvPtr[len(sched.RecvPtr)-1]+nr)
		}
		if ns := commMatrix[i][rank]; ns > 0 {
			sched.SendNbr = append(sched.SendNbr, i)
			sched.SendPtr = append(sched.SendPtr, sched.SendPtr[len(sched.SendPtr)-1]+ns)
		}
	}

	sendSize := 0
	if n := len(sched.SendPtr); n > 0 {
		sendSize = sched.SendPtr[n-1]
	}
	sendColGlobal := make([]int, sendSize)

	var recvReqs, sendReqs []*xport.Request
	for i, nbr := range sched.SendNbr {
		cnt := commMatrix[nbr][rank]
		buf := sendColGlobal[sched.SendPtr[i] : sched.SendPtr[i]+cnt]
		recvReqs = append(recvReqs, comm.IRecvInts(buf, nbr, xport.TagExcCols))
	}
	for i, nbr := range sched.RecvNbr {
		cnt := commMatrix[rank][nbr]
		data := ghostGlobal[sched.RecvPtr[i] : sched.RecvPtr[i]+cnt]
		sendReqs = append(sendReqs, comm.ISendInts(data, nbr, xport.TagExcCols))
	}
	xport.WaitAll(recvReqs)
	xport.WaitAll(sendReqs)

	chunkStart := dom.Start(rank)
	sched.SendCol = make([]int, sendSize)
	for i, c := range sendColGlobal {
		sched.SendCol[i] = c - chunkStart
	}

	return sched, commMatrix
}

// ownerOfGhost returns the source rank a compact ghost column belongs to,
// via binary search in RecvPtr.
func (s *Schedule) ownerOfGhost(g int) int {
	lo, hi := 0, len(s.RecvPtr)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.RecvPtr[mid] <= g {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return s.RecvNbr[lo-1]
}
