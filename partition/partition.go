// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition holds the per-rank row-range table that maps the
// global unknown index space [0,N) onto the P cooperating ranks, and
// answers column-owner lookups during matrix assembly.
package partition

import "github.com/cpmech/gosl/chk"

// Map is the row-range table domain[0..P], identical on every rank once
// built. domain[p] is the first global index owned by rank p; domain[P]
// equals N, the size of the global index space.
type Map struct {
	domain []int // length P+1
}

// New builds a Map from the per-rank row counts nrows[0..P-1], exactly as
// produced by an all-gather of each rank's local row count. The caller is
// responsible for the all-gather; this constructor is a pure function of
// the gathered counts so it can be unit tested without a communicator.
func New(nrows []int) *Map {
	domain := make([]int, len(nrows)+1)
	for p, n := range nrows {
		if n < 0 {
			chk.Panic("partition: row count on rank %d must be non-negative: got %d", p, n)
		}
		domain[p+1] = domain[p] + n
	}
	return &Map{domain: domain}
}

// P returns the number of ranks.
func (m *Map) P() int { return len(m.domain) - 1 }

// N returns the size of the global index space.
func (m *Map) N() int { return m.domain[len(m.domain)-1] }

// Domain returns the underlying domain[0..P] table. Callers must not
// mutate the returned slice.
func (m *Map) Domain() []int { return m.domain }

// Start returns the first global index owned by rank.
func (m *Map) Start(rank int) int { return m.domain[rank] }

// End returns one past the last global index owned by rank.
func (m *Map) End(rank int) int { return m.domain[rank+1] }

// Size returns the number of rows owned by rank.
func (m *Map) Size(rank int) int { return m.domain[rank+1] - m.domain[rank] }

// Owner returns the rank owning global column c, via upper_bound(domain,c)-1.
func (m *Map) Owner(c int) int {
	if c < 0 || c >= m.N() {
		chk.Panic("partition: column %d out of range [0,%d)", c, m.N())
	}
	lo, hi := 0, len(m.domain)
	for lo < hi {
		mid := (lo + hi) / 2
		if m.domain[mid] <= c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}
