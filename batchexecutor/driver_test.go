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

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n42blockchain/batchexecutor/state"
)

// fakeStorage is an empty-backed snapshotReader, sufficient since no test
// in this file reads an actual pre-populated storage slot through the VM.
type fakeStorage struct{}

func (fakeStorage) Get(key []byte) ([]byte, error) { return nil, nil }

type fakeSnapshotCloser struct{ closed bool }

func (f *fakeSnapshotCloser) Close() { f.closed = true }

// fakeVM is a scriptable VM test double: every field that isn't a counter
// is consulted by exactly one method, letting each test configure only the
// behavior it cares about.
type fakeVM struct {
	depth int
	calls []string

	compressionFails bool
	txResult         ExecutionResult
	blockTipResult   ExecutionResult
	finishResult     FinishedL1Batch
	compressed       []CompressedBytecodeInfo

	miniblocks []L2BlockEnv
}

func (f *fakeVM) MakeSnapshot() {
	f.depth++
	f.calls = append(f.calls, "make_snapshot")
}

func (f *fakeVM) RollbackToLatestSnapshot() {
	f.depth--
	f.calls = append(f.calls, "rollback")
}

func (f *fakeVM) PopSnapshotNoRollback() {
	f.depth--
	f.calls = append(f.calls, "pop")
}

func (f *fakeVM) InspectTransactionWithBytecodeCompression(trace *CallTraceSink, tx Transaction, withCompression bool) (ExecutionResult, error) {
	f.calls = append(f.calls, fmt.Sprintf("inspect(compression=%v)", withCompression))
	if withCompression && f.compressionFails {
		return ExecutionResult{}, errors.New("fakeVM: compressed publish rejected")
	}
	if trace != nil {
		trace.Set(nil)
	}
	return f.txResult, nil
}

func (f *fakeVM) GetLastTxCompressedBytecodes() []CompressedBytecodeInfo { return f.compressed }

func (f *fakeVM) StartNewL2Block(env L2BlockEnv) {
	f.miniblocks = append(f.miniblocks, env)
}

func (f *fakeVM) ExecuteBlockTip() ExecutionResult { return f.blockTipResult }

func (f *fakeVM) FinishBatch() FinishedL1Batch { return f.finishResult }

func newTestDriver(vm *fakeVM) *Driver {
	view := state.NewView(fakeStorage{})
	snap := &fakeSnapshotCloser{}
	cfg := driverConfig{maxAllowedTxGasLimit: 1_000_000}
	return newDriver(vm, view, snap, BatchEnv{Number: 1}, cfg, nil)
}

func TestExecuteTxSuccessEndsTxPendingDepthOne(t *testing.T) {
	vm := &fakeVM{
		txResult:       ExecutionResult{Kind: ResultSuccess},
		blockTipResult: ExecutionResult{Kind: ResultSuccess},
	}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 100})

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Equal(t, stateTxPending, d.state)
	require.Equal(t, 1, d.depth)
	require.Equal(t, 1, vm.depth, "dry run must restore the VM's own stack to the outer snapshot only")
}

func TestExecuteTxTooBigGasLimitNeverTouchesSnapshots(t *testing.T) {
	vm := &fakeVM{}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 10_000_000})

	require.Equal(t, OutcomeRejectedByVM, outcome.Kind)
	require.Equal(t, HaltTooBigGasLimit, outcome.RejectReason)
	require.Equal(t, stateIdle, d.state)
	require.Equal(t, 0, d.depth)
	require.Empty(t, vm.calls, "gas-gate rejection must leave the VM untouched")
}

func TestExecuteTxHaltedByVMRetainsNoOuterSnapshot(t *testing.T) {
	vm := &fakeVM{
		txResult: ExecutionResult{Kind: ResultHalt, Halt: "invalid_signature"},
	}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 100})

	require.Equal(t, OutcomeRejectedByVM, outcome.Kind)
	require.Equal(t, HaltReason("invalid_signature"), outcome.RejectReason)
	require.Equal(t, stateIdle, d.state)
	require.Equal(t, 0, d.depth)
}

func TestExecuteTxBootloaderOutOfGasForTx(t *testing.T) {
	vm := &fakeVM{
		txResult: ExecutionResult{Kind: ResultHalt, Halt: HaltBootloaderOutOfGas},
	}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 100})

	require.Equal(t, OutcomeBootloaderOutOfGasForTx, outcome.Kind)
	require.Equal(t, stateIdle, d.state)
	require.Equal(t, 0, d.depth)
}

func TestExecuteTxBootloaderOutOfGasForBlockTipLeavesTxPending(t *testing.T) {
	vm := &fakeVM{
		txResult:       ExecutionResult{Kind: ResultSuccess},
		blockTipResult: ExecutionResult{Kind: ResultHalt, Halt: HaltBootloaderOutOfGas},
	}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 100})

	require.Equal(t, OutcomeBootloaderOutOfGasForBlockTip, outcome.Kind)
	require.Equal(t, stateTxPending, d.state)
	require.Equal(t, 1, d.depth, "the outer snapshot must remain for a subsequent rollback_last_tx")
}

func TestCompressionRetryInvisibleOnSuccess(t *testing.T) {
	vm := &fakeVM{
		compressionFails: true,
		txResult:         ExecutionResult{Kind: ResultSuccess},
		blockTipResult:   ExecutionResult{Kind: ResultSuccess},
	}
	d := newTestDriver(vm)

	outcome := d.handleExecuteTx(Transaction{GasLimit: 100})

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Equal(t, []string{
		"make_snapshot", // outer
		"make_snapshot", // inner
		"inspect(compression=true)",
		"rollback",                  // inner, undoing the failed compressed attempt
		"inspect(compression=false)", // retry, no new snapshot
		"make_snapshot",             // block-tip dry run
		"rollback",                  // block-tip dry run restore
	}, vm.calls)
}

func TestCompressionRetryFailureIsAProtocolViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "an infallible no-compression retry that still fails must panic")
	}()

	d := newTestDriver(&fakeVM{})
	d.vm = &alwaysFailingVM{fakeVM: &fakeVM{compressionFails: true}}

	d.handleExecuteTx(Transaction{GasLimit: 100})
}

// alwaysFailingVM wraps fakeVM so both the compressed and uncompressed
// inspection calls report failure, modeling the VM invariant violation the
// Driver must treat as fatal.
type alwaysFailingVM struct{ *fakeVM }

func (v *alwaysFailingVM) InspectTransactionWithBytecodeCompression(trace *CallTraceSink, tx Transaction, withCompression bool) (ExecutionResult, error) {
	v.calls = append(v.calls, fmt.Sprintf("inspect(compression=%v)", withCompression))
	return ExecutionResult{}, errors.New("fakeVM: unconditional failure")
}

func TestRollbackLastTxRequiresTxPending(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "rollback_last_tx while Idle must panic, not silently no-op")
	}()

	d := newTestDriver(&fakeVM{})
	d.handleRollbackLastTx()
}

func TestRollbackLastTxRestoresIdle(t *testing.T) {
	vm := &fakeVM{
		txResult:       ExecutionResult{Kind: ResultSuccess},
		blockTipResult: ExecutionResult{Kind: ResultSuccess},
	}
	d := newTestDriver(vm)
	d.handleExecuteTx(Transaction{GasLimit: 100})

	d.handleRollbackLastTx()

	require.Equal(t, stateIdle, d.state)
	require.Equal(t, 0, d.depth)
}

func TestStartNextMiniblockCommitsPendingTx(t *testing.T) {
	vm := &fakeVM{
		txResult:       ExecutionResult{Kind: ResultSuccess},
		blockTipResult: ExecutionResult{Kind: ResultSuccess},
	}
	d := newTestDriver(vm)
	d.handleExecuteTx(Transaction{GasLimit: 100})
	require.Equal(t, stateTxPending, d.state)

	d.handleStartNextMiniblock(L2BlockEnv{Number: 2})

	require.Equal(t, stateIdle, d.state)
	require.Equal(t, 0, d.depth)
	require.Len(t, vm.miniblocks, 1)
}

func TestFinishBatchPanicsOnFailedBlockTip(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "a FinishBatch whose block-tip result is not Success must panic")
	}()

	vm := &fakeVM{
		finishResult: FinishedL1Batch{BlockTipResult: ExecutionResult{Kind: ResultHalt}},
	}
	d := newTestDriver(vm)
	d.handleFinishBatch()
}

func TestFinishBatchCapturesWitnessWhenConfigured(t *testing.T) {
	vm := &fakeVM{
		finishResult: FinishedL1Batch{BlockTipResult: ExecutionResult{Kind: ResultSuccess}},
	}
	d := newTestDriver(vm)
	d.cfg.uploadWitnessInputsToGCS = true

	reply := d.handleFinishBatch()

	require.NotNil(t, reply.Witness)
	require.Equal(t, stateFinished, d.state)
}

func TestFinishBatchSkipsWitnessByDefault(t *testing.T) {
	vm := &fakeVM{
		finishResult: FinishedL1Batch{BlockTipResult: ExecutionResult{Kind: ResultSuccess}},
	}
	d := newTestDriver(vm)

	reply := d.handleFinishBatch()

	require.Nil(t, reply.Witness)
}
