// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/n42blockchain/batchexecutor/common/types"
)

// snapshotReader is the minimal surface View needs from its backing
// snapshot; *Snapshot satisfies it, and tests supply lightweight fakes
// without needing a real erigon-lib kv.Tx.
type snapshotReader interface {
	Get(key []byte) ([]byte, error)
}

// View is the mutable-feeling interface the VM executes against: a
// read-through, copy-on-read overlay on top of a read-only Snapshot. Its
// maps are guarded by a mutex and its counters are atomic; by contract the
// VM borrows it exclusively for the duration of a call and the Driver only
// touches it between calls.
type View struct {
	snap snapshotReader

	mu       sync.Mutex
	cache    map[types.StorageKey]uint256.Int // read-through cache, seeded lazily
	overlay  map[types.StorageKey]uint256.Int // write overlay, shadows cache/snapshot
	readSet  map[types.StorageKey]struct{}
	writeSet map[types.StorageKey]struct{}

	readNanos  uint64 // atomic
	writeNanos uint64 // atomic
	readOps    uint64 // atomic
	writeOps   uint64 // atomic
}

// NewView constructs an empty overlay over snap.
func NewView(snap snapshotReader) *View {
	return &View{
		snap:     snap,
		cache:    make(map[types.StorageKey]uint256.Int),
		overlay:  make(map[types.StorageKey]uint256.Int),
		readSet:  make(map[types.StorageKey]struct{}),
		writeSet: make(map[types.StorageKey]struct{}),
	}
}

// ReadSlot returns the current value of key, consulting the write overlay
// first, then the read-through cache, and finally the underlying snapshot.
// The first read of any key is cached and recorded in the read set.
func (v *View) ReadSlot(key types.StorageKey) (uint256.Int, error) {
	start := time.Now()
	defer v.recordRead(start)

	v.mu.Lock()
	defer v.mu.Unlock()

	if val, ok := v.overlay[key]; ok {
		v.readSet[key] = struct{}{}
		return val, nil
	}
	if val, ok := v.cache[key]; ok {
		v.readSet[key] = struct{}{}
		return val, nil
	}

	raw, err := v.snap.Get(key.Slot.Bytes())
	if err != nil {
		return uint256.Int{}, err
	}

	var val uint256.Int
	if len(raw) > 0 {
		val.SetBytes(raw)
	}
	v.cache[key] = val
	v.readSet[key] = struct{}{}
	return val, nil
}

// WriteSlot updates the in-memory overlay; subsequent reads of key observe
// this value until the overlay is discarded.
func (v *View) WriteSlot(key types.StorageKey, value uint256.Int) {
	start := time.Now()
	defer v.recordWrite(start)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.overlay[key] = value
	v.writeSet[key] = struct{}{}
}

func (v *View) recordRead(start time.Time) {
	atomic.AddUint64(&v.readNanos, uint64(time.Since(start).Nanoseconds()))
	atomic.AddUint64(&v.readOps, 1)
}

func (v *View) recordWrite(start time.Time) {
	atomic.AddUint64(&v.writeNanos, uint64(time.Since(start).Nanoseconds()))
	atomic.AddUint64(&v.writeOps, 1)
}

// Metrics is the cumulative wall-time spent in the read and write paths,
// readable only when the VM is not mid-execution (immediately after a
// command reply, or at batch finish).
type Metrics struct {
	ReadNanos  uint64
	WriteNanos uint64
	ReadOps    uint64
	WriteOps   uint64
}

// ReadMetrics returns the view's cumulative timing counters.
func (v *View) ReadMetrics() Metrics {
	return Metrics{
		ReadNanos:  atomic.LoadUint64(&v.readNanos),
		WriteNanos: atomic.LoadUint64(&v.writeNanos),
		ReadOps:    atomic.LoadUint64(&v.readOps),
		WriteOps:   atomic.LoadUint64(&v.writeOps),
	}
}

// WitnessBlockState is the read set plus the write overlay of a batch's
// Storage View, captured at finish_batch for proof generation.
type WitnessBlockState struct {
	Reads  map[types.StorageKey]uint256.Int
	Writes map[types.StorageKey]uint256.Int
}

// SnapshotWitnessState materializes the current read set and write overlay.
// It takes a defensive copy so that later mutation of the View (there is
// none once the batch has finished, but the contract does not assume that)
// cannot retroactively change a previously captured witness.
func (v *View) SnapshotWitnessState() WitnessBlockState {
	v.mu.Lock()
	defer v.mu.Unlock()

	reads := make(map[types.StorageKey]uint256.Int, len(v.readSet))
	for k := range v.readSet {
		if val, ok := v.overlay[k]; ok {
			reads[k] = val
		} else {
			reads[k] = v.cache[k]
		}
	}

	writes := make(map[types.StorageKey]uint256.Int, len(v.writeSet))
	for k := range v.writeSet {
		writes[k] = v.overlay[k]
	}

	return WitnessBlockState{Reads: reads, Writes: writes}
}
