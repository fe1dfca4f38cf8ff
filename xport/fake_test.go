// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xport

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// runRanks spawns one goroutine per Comm in world and waits for all of
// them to return, the same fan-out/join shape every fake-world test in
// this package uses to drive a collective across simulated ranks.
func runRanks(world []Comm, fn func(rank int, comm Comm)) {
	var wg sync.WaitGroup
	wg.Add(len(world))
	for r, comm := range world {
		go func(r int, comm Comm) {
			defer wg.Done()
			fn(r, comm)
		}(r, comm)
	}
	wg.Wait()
}

func TestFakeAllGatherInt(t *testing.T) {
	world := NewFakeWorld(4)
	got := make([][]int, 4)
	runRanks(world, func(rank int, comm Comm) {
		got[rank] = comm.AllGatherInt(rank * 10)
	})
	for r := 0; r < 4; r++ {
		chk.Ints(t, "gathered", got[r], []int{0, 10, 20, 30})
	}
}

func TestFakeAllGatherIntsSymmetricCommMatrix(t *testing.T) {
	// numRecv[p] on rank q says how many values q receives from p; the
	// resulting comm_matrix[q][p] must equal comm_matrix[p][q]'s
	// transposed reading — i.e. what q reports receiving from p is what
	// p sent to q, so build both sides from the same fixed table.
	sent := [][]int{
		{0, 2, 0},
		{2, 0, 1},
		{0, 1, 0},
	}
	world := NewFakeWorld(3)
	mats := make([][][]int, 3)
	runRanks(world, func(rank int, comm Comm) {
		mats[rank] = comm.AllGatherInts(sent[rank])
	})
	for r := 0; r < 3; r++ {
		for p := 0; p < 3; p++ {
			for q := 0; q < 3; q++ {
				chk.IntAssert(mats[r][p][q], sent[p][q])
			}
		}
		// symmetry: what p reports sending to q equals what q reports
		// sending to p only for this particular symmetric fixture.
		chk.IntAssert(mats[r][0][1], mats[r][1][0])
		chk.IntAssert(mats[r][1][2], mats[r][2][1])
	}
}

func TestFakePointToPointRing(t *testing.T) {
	P := 3
	world := NewFakeWorld(P)
	received := make([]float64, P)
	runRanks(world, func(rank int, comm Comm) {
		next := (rank + 1) % P
		prev := (rank - 1 + P) % P
		sendReq := comm.ISend([]float64{float64(rank)}, next, 42)
		buf := make([]float64, 1)
		recvReq := comm.IRecv(buf, prev, 42)
		if err := recvReq.Wait(); err != nil {
			t.Fatal(err)
		}
		if err := sendReq.Wait(); err != nil {
			t.Fatal(err)
		}
		received[rank] = buf[0]
	})
	for r := 0; r < P; r++ {
		prev := (r - 1 + P) % P
		chk.Float64(t, "received", 1e-15, received[r], float64(prev))
	}
}

func TestFakeGathervAndBcast(t *testing.T) {
	world := NewFakeWorld(3)
	counts := []int{1, 2, 1}
	displs := []int{0, 1, 3}
	results := make([][]float64, 3)
	runRanks(world, func(rank int, comm Comm) {
		local := make([]float64, counts[rank])
		for i := range local {
			local[i] = float64(rank)
		}
		gathered := comm.Gatherv(local, 0, counts, displs)
		gathered = comm.Bcast(gathered, 0)
		results[rank] = gathered
	})
	want := []float64{0, 1, 1, 2}
	for r := 0; r < 3; r++ {
		chk.Array(t, "bcast result", 1e-15, results[r], want)
	}
}

func TestFakeAllReduceSum(t *testing.T) {
	world := NewFakeWorld(4)
	sums := make([]float64, 4)
	runRanks(world, func(rank int, comm Comm) {
		sums[rank] = comm.AllReduceSum(float64(rank + 1))
	})
	for r := 0; r < 4; r++ {
		chk.Float64(t, "allreduce", 1e-15, sums[r], 10)
	}
}

func TestFakeSplitTwoGroups(t *testing.T) {
	P := 4
	world := NewFakeWorld(P)
	subRanks := make([]int, P)
	subSizes := make([]int, P)
	crossGroup := make([]float64, P)
	runRanks(world, func(rank int, comm Comm) {
		colour := rank / 2 // {0,1} -> colour 0, {2,3} -> colour 1
		sub := comm.Split(colour)
		subRanks[rank] = sub.Rank()
		subSizes[rank] = sub.Size()

		// exchange within the subgroup: rank 0 of each group sends its
		// world rank to rank 1 of the same group.
		if sub.Rank() == 0 {
			sub.Send([]float64{float64(rank)}, 1, 7)
		} else {
			buf := make([]float64, 1)
			sub.Recv(buf, 0, 7)
			crossGroup[rank] = buf[0]
		}
		sub.Free()
	})
	for r := 0; r < P; r++ {
		chk.IntAssert(subSizes[r], 2)
	}
	chk.IntAssert(subRanks[0], 0)
	chk.IntAssert(subRanks[1], 1)
	chk.IntAssert(subRanks[2], 0)
	chk.IntAssert(subRanks[3], 1)
	// rank 1 received rank 0's world id (0); rank 3 received rank 2's (2).
	chk.Float64(t, "crossGroup[1]", 1e-15, crossGroup[1], 0)
	chk.Float64(t, "crossGroup[3]", 1e-15, crossGroup[3], 2)
}
