// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflation

import (
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/subdefl/basis"
	"github.com/cpmech/subdefl/csr"
	"github.com/cpmech/subdefl/xport"
)

// completeAZ finishes the AZ skeleton produced by splitter.Split with the
// off-diagonal contribution A_rem·Z_remote (C4). It performs a second
// round of communication distinct from the runtime halo exchange: this
// one transfers dv_size[owner] values per ghost column instead of one
// scalar per ghost column, so it needs its own schedule-derived buffers
// even though it reuses the same neighbour lists.
func completeAZ(comm xport.Comm, sched *Schedule, dvStart, dvSize []int, arem *csr.Matrix, az *csr.Matrix, z basis.Basis) {
	ndv := z.Dim()
	nGhost := arem.Ncols

	zrecvPtr := make([]int, len(sched.RecvNbr)+1)
	zcolPtr := make([]int, nGhost+1)
	for i, nbr := range sched.RecvNbr {
		size := sched.RecvPtr[i+1] - sched.RecvPtr[i]
		zrecvPtr[i+1] = zrecvPtr[i] + dvSize[nbr]*size
		for c := sched.RecvPtr[i]; c < sched.RecvPtr[i+1]; c++ {
			zcolPtr[c+1] = zcolPtr[c] + dvSize[nbr]
		}
	}

	zrecv := make([]float64, zrecvPtr[len(zrecvPtr)-1])
	zsend := make([]float64, len(sched.SendCol)*ndv)
	for i, lc := range sched.SendCol {
		for j := 0; j < ndv; j++ {
			zsend[i*ndv+j] = z.At(lc, j)
		}
	}

	var recvReqs, sendReqs []*xport.Request
	for i, nbr := range sched.RecvNbr {
		buf := zrecv[zrecvPtr[i]:zrecvPtr[i+1]]
		recvReqs = append(recvReqs, comm.IRecv(buf, nbr, xport.TagExcVals))
	}
	for i, nbr := range sched.SendNbr {
		data := zsend[sched.SendPtr[i]*ndv : sched.SendPtr[i+1]*ndv]
		sendReqs = append(sendReqs, comm.ISend(data, nbr, xport.TagExcVals))
	}
	xport.WaitAll(recvReqs)

	K := dvStart[len(dvStart)-1]
	slotMarker := utl.IntVals(K, -1)

	n := arem.Nrows
	for i := 0; i < n; i++ {
		azRowBeg := az.Ptr[i]
		azRowEnd := azRowBeg

		b, e := arem.RowSpan(i)
		for k := b; k < e; k++ {
			c := arem.Col[k]
			v := arem.Val[k]
			d := sched.ownerOfGhost(c)
			zval := zrecv[zcolPtr[c]:]

			for j, kk := 0, dvStart[d]; j < dvSize[d]; j, kk = j+1, kk+1 {
				if slotMarker[kk] < azRowBeg {
					slotMarker[kk] = azRowEnd
					az.Col[azRowEnd] = kk
					az.Val[azRowEnd] = v * zval[j]
					azRowEnd++
				} else {
					az.Val[slotMarker[kk]] += v * zval[j]
				}
			}
		}
		az.Ptr[i] = azRowEnd
	}

	rotateRightOne(az.Ptr)
	az.Ptr[0] = 0

	xport.WaitAll(sendReqs)
}

// rotateRightOne mirrors std::rotate(ptr.begin(), ptr.end()-1, ptr.end()):
// az.Ptr[i] holds "one past the last filled slot of row i" for i in
// [0,n); this shifts every entry one place to the right so that az.Ptr[i]
// becomes the CSR start of row i, with az.Ptr[0] fixed up separately.
func rotateRightOne(ptr []int) {
	L := len(ptr)
	if L == 0 {
		return
	}
	last := ptr[L-1]
	copy(ptr[1:], ptr[:L-1])
	ptr[0] = last
}
