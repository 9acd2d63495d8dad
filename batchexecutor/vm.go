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

package batchexecutor

import "github.com/google/uuid"

// CallTraceSink is a write-once destination for a single transaction's call
// trace. The VM is handed a sink when call tracing is enabled and writes to
// it at most once per transaction; a second write is a bug in the VM and
// panics, matching the write-once contract the VM is expected to honor.
//
// CorrelationID is generated once per sink so that a trace collected here
// can be matched against the same transaction's log lines: tracing is only
// ever turned on for a minority of batches, so the id is otherwise unused
// overhead-free cost.
type CallTraceSink struct {
	CorrelationID uuid.UUID

	written bool
	trace   []Call
}

// NewCallTraceSink returns an empty sink with a fresh correlation id.
func NewCallTraceSink() *CallTraceSink {
	return &CallTraceSink{CorrelationID: uuid.New()}
}

// Set records trace as the sink's contents. Calling Set twice panics.
func (s *CallTraceSink) Set(trace []Call) {
	if s.written {
		panic("batchexecutor: call trace sink written twice")
	}
	s.written = true
	s.trace = trace
}

// Take consumes the sink's contents, returning nil if nothing was ever
// written (tracing disabled, or the VM produced no trace). Safe to call on
// a nil sink, which is what newTraceSink returns when tracing is off.
func (s *CallTraceSink) Take() []Call {
	if s == nil {
		return nil
	}
	trace := s.trace
	s.trace = nil
	return trace
}

// VM is the external engine the Driver steers through a batch. It is
// modeled as a stateful object already bound to a batch environment, a
// system environment, and a Storage View; the Driver never constructs one
// directly but receives it, ready to run, from a Builder.
//
// Implementations own a LIFO snapshot stack of arbitrary depth. The Driver
// is the only caller and guarantees the make/rollback/pop calls it issues
// are balanced per the protocol in §4.2 of the executor's command design.
type VM interface {
	// MakeSnapshot pushes a new restorable point.
	MakeSnapshot()

	// RollbackToLatestSnapshot restores state to the most recently pushed
	// snapshot and pops it.
	RollbackToLatestSnapshot()

	// PopSnapshotNoRollback discards the most recently pushed snapshot
	// without restoring state to it (the "commit" path).
	PopSnapshotNoRollback()

	// InspectTransactionWithBytecodeCompression executes tx. When
	// withCompression is true the call may fail (a non-nil error means the
	// attempt must be discarded and retried without compression); when
	// withCompression is false the call never fails.
	InspectTransactionWithBytecodeCompression(trace *CallTraceSink, tx Transaction, withCompression bool) (ExecutionResult, error)

	// GetLastTxCompressedBytecodes returns the bytecodes actually
	// published by the most recent InspectTransactionWithBytecodeCompression
	// call.
	GetLastTxCompressedBytecodes() []CompressedBytecodeInfo

	// StartNewL2Block advances the VM's sub-block state.
	StartNewL2Block(env L2BlockEnv)

	// ExecuteBlockTip runs post-transaction block finalization. The result
	// may be Success, Revert, or Halt.
	ExecuteBlockTip() ExecutionResult

	// FinishBatch returns the terminal batch result, including the final
	// block-tip execution result.
	FinishBatch() FinishedL1Batch
}
