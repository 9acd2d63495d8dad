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
	"time"

	n42errors "github.com/n42blockchain/batchexecutor/pkg/errors"
	"github.com/n42blockchain/batchexecutor/state"

	"github.com/n42blockchain/batchexecutor/log"
)

// driverState is the Driver's logical position in the command protocol.
type driverState int

const (
	stateIdle driverState = iota
	stateTxPending
	stateFinished
)

// Driver owns a single VM instance, the Storage View, and the snapshot
// stack discipline. One Driver executes exactly one batch.
type Driver struct {
	vm       VM
	view     *state.View
	snap     snapshotCloser
	env      BatchEnv
	cfg      driverConfig
	commands <-chan command

	state driverState
	depth int // tracked expected snapshot stack depth, asserted at handler boundaries
}

// snapshotCloser is the release half of state.Snapshot, kept as a minimal
// interface so the Driver does not need the concrete erigon-lib kv.Tx type
// to know when its read transaction is done.
type snapshotCloser interface{ Close() }

// driverConfig is the subset of conf.BatchExecutorConfig the Driver itself
// consults; kept separate from conf.BatchExecutorConfig so the Driver does
// not depend on the erigon-lib kv.RoDB pool handle used only at construction.
type driverConfig struct {
	maxAllowedTxGasLimit     uint64
	saveCallTraces           bool
	uploadWitnessInputsToGCS bool
}

func newDriver(vm VM, view *state.View, snap snapshotCloser, env BatchEnv, cfg driverConfig, commands <-chan command) *Driver {
	return &Driver{vm: vm, view: view, snap: snap, env: env, cfg: cfg, commands: commands}
}

// run is the blocking receive loop: each command is handled to completion
// before the next is received. The channel closing before finish_batch is a
// valid termination (upstream shutdown).
func (d *Driver) run() {
	log.Info("batch executor driver starting", "batch", d.env.Number)
	defer d.snap.Close()

	for cmd := range d.commands {
		switch c := cmd.(type) {
		case executeTxCommand:
			c.reply <- d.handleExecuteTx(c.tx)
		case rollbackLastTxCommand:
			d.handleRollbackLastTx()
			close(c.reply)
		case startNextMiniblockCommand:
			d.handleStartNextMiniblock(c.env)
			close(c.reply)
		case finishBatchCommand:
			c.reply <- d.handleFinishBatch()
			return
		}
	}

	log.Info("batch executor driver exiting with an unfinished batch", "batch", d.env.Number)
}

func (d *Driver) pushSnapshot() {
	d.vm.MakeSnapshot()
	d.depth++
}

func (d *Driver) popCommit() {
	d.vm.PopSnapshotNoRollback()
	d.depth--
}

func (d *Driver) popRollback() {
	d.vm.RollbackToLatestSnapshot()
	d.depth--
}

// commitPendingTx implements the implicit-commit policy: issuing
// execute_tx, start_next_miniblock or finish_batch while Tx-Pending accepts
// the previously executed transaction by committing its outer snapshot.
func (d *Driver) commitPendingTx() {
	if d.state != stateTxPending {
		return
	}
	d.popCommit()
	d.state = stateIdle
}

// handleExecuteTx implements the execute-transaction handler of the command
// protocol: gas gate, outer/inner snapshot discipline, compression retry,
// and block-tip dry run.
func (d *Driver) handleExecuteTx(tx Transaction) ExecutionOutcome {
	d.commitPendingTx()
	if d.depth != 0 {
		panic(n42errors.ErrSnapshotStackDepth)
	}

	if tx.GasLimit > d.cfg.maxAllowedTxGasLimit {
		log.Warn("found tx with too big gas limit", "hash", tx.Hash, "gas_limit", tx.GasLimit)
		return ExecutionOutcome{Kind: OutcomeRejectedByVM, RejectReason: HaltTooBigGasLimit}
	}

	d.pushSnapshot() // outer

	stageStart := time.Now()
	txResult, compressedBytecodes, trace := d.executeTxInVM(tx)
	txExecutionStageHistogram("execution").UpdateDuration(stageStart)
	recordProcessedTx(tx)

	if txResult.Kind == ResultHalt {
		d.popRollback() // P2/scenario 2: no outer snapshot retained on a halted tx
		switch txResult.Halt {
		case HaltBootloaderOutOfGas:
			return ExecutionOutcome{Kind: OutcomeBootloaderOutOfGasForTx}
		default:
			return ExecutionOutcome{Kind: OutcomeRejectedByVM, RejectReason: txResult.Halt}
		}
	}

	// Revert and Success are both "transaction executed" for accounting
	// purposes; reverts are included in the block.
	txMetrics := executionMetricsForCriteria(&tx, txResult)

	dryRunResult, dryRunMetrics := d.dryRunBlockTip()

	switch dryRunResult.Kind {
	case ResultSuccess:
		d.state = stateTxPending
		return ExecutionOutcome{
			Kind:                  OutcomeSuccess,
			TxResult:              txResult,
			TxMetrics:             txMetrics,
			BlockTipDryRunResult:  dryRunResult,
			BlockTipDryRunMetrics: dryRunMetrics,
			CompressedBytecodes:   compressedBytecodes,
			CallTrace:             trace,
		}
	case ResultHalt:
		if dryRunResult.Halt == HaltBootloaderOutOfGas {
			// the outer snapshot remains on the stack; the caller is
			// contractually required to issue rollback_last_tx next.
			d.state = stateTxPending
			return ExecutionOutcome{Kind: OutcomeBootloaderOutOfGasForBlockTip}
		}
		panic(n42errors.ErrBlockTipNotFinal)
	default: // ResultRevert
		panic(n42errors.ErrBlockTipNotFinal)
	}
}

// executeTxInVM implements the two-phase try-with-compression,
// retry-without-compression sequence against a fresh inner snapshot.
func (d *Driver) executeTxInVM(tx Transaction) (ExecutionResult, []CompressedBytecodeInfo, []Call) {
	d.pushSnapshot() // inner

	sink := d.newTraceSink()
	result, err := d.vm.InspectTransactionWithBytecodeCompression(sink, tx, true)
	if err == nil {
		compressed := d.vm.GetLastTxCompressedBytecodes()
		d.popCommit() // inner
		return result, compressed, sink.Take()
	}

	// Compression failed: restore to the inner snapshot, undoing all side
	// effects including any attempted compressed-bytecode publishes, then
	// retry with compression disabled directly on top of the outer
	// snapshot (the retry pushes no snapshot of its own).
	d.popRollback() // inner

	sink = d.newTraceSink()
	result, err = d.vm.InspectTransactionWithBytecodeCompression(sink, tx, false)
	if err != nil {
		panic(n42errors.ErrNoCompressionFailed)
	}
	compressed := d.vm.GetLastTxCompressedBytecodes()
	return result, compressed, sink.Take()
}

func (d *Driver) newTraceSink() *CallTraceSink {
	if !d.cfg.saveCallTraces {
		return nil
	}
	sink := NewCallTraceSink()
	log.Debug("collecting call trace", "batch", d.env.Number, "trace_id", sink.CorrelationID)
	return sink
}

// dryRunBlockTip pushes a snapshot, asks the VM to finalize the block, and
// restores to the snapshot regardless of outcome, leaving the caller's
// stack depth unchanged from before the call.
func (d *Driver) dryRunBlockTip() (ExecutionResult, ExecutionMetricsForCriteria) {
	stageStart := time.Now()

	snapshotStart := time.Now()
	d.pushSnapshot()
	txExecutionStageHistogram("dryrun_make_snapshot").UpdateDuration(snapshotStart)

	execStart := time.Now()
	result := d.vm.ExecuteBlockTip()
	txExecutionStageHistogram("dryrun_execute_block_tip").UpdateDuration(execStart)

	metricsStart := time.Now()
	metrics := executionMetricsForCriteria(nil, result)
	txExecutionStageHistogram("dryrun_get_execution_metrics").UpdateDuration(metricsStart)

	rollbackStart := time.Now()
	d.popRollback()
	txExecutionStageHistogram("dryrun_rollback_to_the_latest_snapshot").UpdateDuration(rollbackStart)

	txExecutionStageHistogram("dryrun_rollback").UpdateDuration(stageStart)

	return result, metrics
}

// handleRollbackLastTx restores to the outer snapshot of the most recent
// execute_tx. Legal only in Tx-Pending; out-of-order rollback is a
// programmer error and panics rather than silently no-op-ing.
func (d *Driver) handleRollbackLastTx() {
	if d.state != stateTxPending {
		panic(n42errors.ErrSnapshotStackDepth)
	}
	stageStart := time.Now()
	d.popRollback()
	txExecutionStageHistogram("tx_rollback").UpdateDuration(stageStart)
	d.state = stateIdle
}

// handleStartNextMiniblock advances the VM's sub-block state. Crossing a
// sub-block boundary invalidates rollback_last_tx for any prior
// transaction, so a pending transaction is implicitly committed first.
func (d *Driver) handleStartNextMiniblock(env L2BlockEnv) {
	d.commitPendingTx()
	d.vm.StartNewL2Block(env)
}

// handleFinishBatch instructs the VM to run terminal post-processing,
// optionally captures the witness block state, and records cumulative
// storage interaction timing - obtainable only now, since the VM no longer
// borrows the Storage View once it returns control.
func (d *Driver) handleFinishBatch() FinishBatchReply {
	d.commitPendingTx()

	batch := d.vm.FinishBatch()
	if batch.BlockTipResult.Failed() {
		panic(n42errors.ErrBatchNotSuccessful)
	}

	var witness *state.WitnessBlockState
	if d.cfg.uploadWitnessInputsToGCS {
		w := d.view.SnapshotWitnessState()
		witness = &w
	}

	d.state = stateFinished

	m := d.view.ReadMetrics()
	storageReadDuration.Update(float64(m.ReadNanos) / 1e9)
	storageWriteDuration.Update(float64(m.WriteNanos) / 1e9)

	return FinishBatchReply{Batch: batch, Witness: witness}
}
