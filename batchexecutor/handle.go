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
)

// command is the tagged union of requests the Handle sends across the
// single-capacity channel to the Driver goroutine. Each variant carries its
// own single-use reply channel so the synchronous Driver never needs to
// know who is waiting.
type command interface{ isCommand() }

type executeTxCommand struct {
	tx    Transaction
	reply chan ExecutionOutcome
}

func (executeTxCommand) isCommand() {}

type rollbackLastTxCommand struct {
	reply chan struct{}
}

func (rollbackLastTxCommand) isCommand() {}

type startNextMiniblockCommand struct {
	env   L2BlockEnv
	reply chan struct{}
}

func (startNextMiniblockCommand) isCommand() {}

type finishBatchCommand struct {
	reply chan FinishBatchReply
}

func (finishBatchCommand) isCommand() {}

// Handle is the asynchronous front end to a running Driver. It is the only
// way callers interact with a batch executor: the channel has capacity one,
// so a caller that issues a command before the previous one has been
// replied to simply blocks on the send, which is the only back-pressure the
// protocol needs since exactly one command is ever in flight.
type Handle struct {
	commands chan command
	done     chan struct{}
	finished bool
}

// Close abandons the batch without finishing it: the command channel is
// closed, the Driver observes this on its next receive and exits without
// sending any reply, and Close waits for that exit before returning. Go has
// no destructor to run this implicitly, so any caller that drops a Handle
// mid-batch instead of calling FinishBatch must call Close to avoid
// leaking the Driver goroutine. A no-op if the batch already finished.
func (h *Handle) Close() {
	if h.finished {
		return
	}
	h.finished = true
	close(h.commands)
	<-h.done
}

// newHandleFromDriver wires a Handle to a Driver and starts its goroutine.
// Builders are the only callers.
func newHandleFromDriver(d *Driver) *Handle {
	commands := make(chan command, 1)
	done := make(chan struct{})
	d.commands = commands

	go func() {
		defer close(done)
		d.run()
	}()

	return &Handle{commands: commands, done: done}
}

// ExecuteTx asks the Driver to execute a single transaction and blocks for
// its outcome. Returns ErrDriverGone if the Driver goroutine has already
// exited (a bug: nothing should call ExecuteTx after FinishBatch) and
// ErrBatchFinished if this Handle already consumed a finish_batch reply.
func (h *Handle) ExecuteTx(tx Transaction) (ExecutionOutcome, error) {
	if h.finished {
		return ExecutionOutcome{}, n42errors.ErrBatchFinished
	}

	reply := make(chan ExecutionOutcome, 1)
	start := time.Now()

	select {
	case h.commands <- executeTxCommand{tx: tx, reply: reply}:
	case <-h.done:
		return ExecutionOutcome{}, n42errors.ErrDriverGone
	}

	select {
	case outcome, ok := <-reply:
		if !ok {
			return ExecutionOutcome{}, n42errors.ErrDriverGone
		}
		recordCommandResponseTime("execute_tx", start)
		h.recordGasRate(tx, outcome, start)
		return outcome, nil
	case <-h.done:
		return ExecutionOutcome{}, n42errors.ErrDriverGone
	}
}

// StartNextMiniblock advances the VM's sub-block state.
func (h *Handle) StartNextMiniblock(env L2BlockEnv) error {
	if h.finished {
		return n42errors.ErrBatchFinished
	}

	reply := make(chan struct{})
	start := time.Now()

	select {
	case h.commands <- startNextMiniblockCommand{env: env, reply: reply}:
	case <-h.done:
		return n42errors.ErrDriverGone
	}

	select {
	case <-reply:
		recordCommandResponseTime("start_next_miniblock", start)
		return nil
	case <-h.done:
		return n42errors.ErrDriverGone
	}
}

// RollbackLastTx discards the most recently executed transaction. Legal
// only when the most recent ExecuteTx reply was Success or
// BootloaderOutOfGasForBlockTip and no StartNextMiniblock or further
// ExecuteTx has been issued since.
func (h *Handle) RollbackLastTx() error {
	if h.finished {
		return n42errors.ErrBatchFinished
	}

	reply := make(chan struct{})
	start := time.Now()

	select {
	case h.commands <- rollbackLastTxCommand{reply: reply}:
	case <-h.done:
		return n42errors.ErrDriverGone
	}

	select {
	case <-reply:
		recordCommandResponseTime("rollback_last_tx", start)
		return nil
	case <-h.done:
		return n42errors.ErrDriverGone
	}
}

// FinishBatch consumes the Handle: it asks the Driver to finalize the batch,
// waits for both the reply and the Driver goroutine's exit, and marks the
// Handle unusable for any further command.
func (h *Handle) FinishBatch() (FinishBatchReply, error) {
	if h.finished {
		return FinishBatchReply{}, n42errors.ErrBatchFinished
	}

	reply := make(chan FinishBatchReply, 1)
	start := time.Now()

	select {
	case h.commands <- finishBatchCommand{reply: reply}:
	case <-h.done:
		return FinishBatchReply{}, n42errors.ErrDriverGone
	}

	result, ok := <-reply
	<-h.done // the Driver goroutine returns immediately after sending this reply
	h.finished = true

	if !ok {
		return FinishBatchReply{}, n42errors.ErrDriverGone
	}
	recordCommandResponseTime("finish_batch", start)
	return result, nil
}

// recordGasRate records the gas-per-nanosecond metrics the command
// round-trip time enables: a successful transaction's computational gas
// rate, or a rejected transaction's own gas limit per nanosecond (since a
// rejected or halted transaction reports no metrics of its own).
func (h *Handle) recordGasRate(tx Transaction, outcome ExecutionOutcome, start time.Time) {
	elapsed := time.Since(start).Nanoseconds()
	if elapsed <= 0 {
		return
	}
	switch outcome.Kind {
	case OutcomeSuccess:
		computationalGasPerNanosecond.Update(float64(outcome.TxMetrics.Execution.ComputationalGasUsed) / float64(elapsed))
	case OutcomeRejectedByVM, OutcomeBootloaderOutOfGasForTx:
		failedTxGasLimitPerNanosecond.Update(float64(tx.GasLimit) / float64(elapsed))
	}
}
