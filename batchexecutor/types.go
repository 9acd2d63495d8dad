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

// Package batchexecutor drives a deterministic VM through the lifecycle of
// a single L1 batch of L2 transactions: it brings up a VM bound to a batch
// environment and a Storage View, accepts a strictly ordered command
// stream, and applies the snapshot/rollback discipline that lets a
// transaction retry without bytecode compression and lets the batch probe
// whether the block tip can still be finalized after each transaction.
package batchexecutor

import (
	"github.com/holiman/uint256"

	"github.com/n42blockchain/batchexecutor/common/types"
	"github.com/n42blockchain/batchexecutor/state"
)

// FeeParams carries the fee-related quantities the bootloader consults
// while executing transactions inside a batch.
type FeeParams struct {
	L1GasPrice     uint64
	FairL2GasPrice uint64
}

// BatchEnv is immutable for the life of one executor.
type BatchEnv struct {
	Number             uint64
	Timestamp          uint64
	ChainID            uint64
	FeeParams          FeeParams
	PrevBlockHashes    []types.Hash
	OperatorAddress    types.Address
	BootloaderCodeHash types.Hash
	DefaultAACodeHash  types.Hash
	CollectCallTraces  bool
}

// L2BlockEnv conveys the data needed to advance the VM's sub-block state.
// Created every time a start-next-miniblock command is issued.
type L2BlockEnv struct {
	Number                   uint64
	Timestamp                uint64
	PrevBlockHash            types.Hash
	MaxVirtualBlocksToCreate uint32
}

// Transaction is an opaque value object the executor never mutates.
type Transaction struct {
	Hash     types.Hash
	GasLimit uint64
	IsL1     bool
	Payload  []byte
}

// HaltReason identifies why the VM refused to apply a transaction or
// finalize a block. HaltBootloaderOutOfGas is distinguished because it
// drives the OOG-for-tx / OOG-for-block-tip branches; every other value is
// surfaced to the caller verbatim as a rejection reason.
type HaltReason string

const (
	HaltTooBigGasLimit     HaltReason = "too_big_gas_limit"
	HaltBootloaderOutOfGas HaltReason = "bootloader_out_of_gas"
)

// ResultKind classifies a single VM execution result.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultRevert
	ResultHalt
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultRevert:
		return "revert"
	case ResultHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// Log is a single event emitted during execution.
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

// ExecutionMetrics is the raw accounting the VM reports for one execution
// (a transaction or the block-tip dry run).
type ExecutionMetrics struct {
	ComputationalGasUsed uint64
	TotalGasUsed         uint64
	PubdataPublished     uint64
}

// ExecutionResult is the result-and-logs pair the VM returns from a single
// transaction inspection or block-tip execution.
type ExecutionResult struct {
	Kind    ResultKind
	Halt    HaltReason
	Logs    []Log
	Metrics ExecutionMetrics
}

// Failed reports whether the result is anything other than a clean success.
func (r ExecutionResult) Failed() bool {
	return r.Kind != ResultSuccess
}

// ExecutionMetricsForCriteria bundles the raw execution metrics with the
// L1 gas attribution the state keeper's sealing criteria consult.
type ExecutionMetricsForCriteria struct {
	L1Gas     uint64
	Execution ExecutionMetrics
}

// Call is a single frame of a recorded call trace.
type Call struct {
	From    types.Address
	To      types.Address
	Value   *uint256.Int
	Input   []byte
	Output  []byte
	GasUsed uint64
	Calls   []Call
}

// CompressedBytecodeInfo describes one bytecode the VM accepted in
// compressed form during a transaction's execution.
type CompressedBytecodeInfo struct {
	Original   []byte
	Compressed []byte
}

// FinishedL1Batch is the VM's terminal batch result. BlockTipResult must
// never be Failed(); the Driver treats a failing value as a bug and aborts.
type FinishedL1Batch struct {
	BlockTipResult ExecutionResult
}

// OutcomeKind tags the variant of an ExecutionOutcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRejectedByVM
	OutcomeBootloaderOutOfGasForTx
	OutcomeBootloaderOutOfGasForBlockTip
)

// ExecutionOutcome is the reply to an execute-transaction command: exactly
// one of Success, RejectedByVM, BootloaderOutOfGasForTx, or
// BootloaderOutOfGasForBlockTip.
type ExecutionOutcome struct {
	Kind OutcomeKind

	// Populated when Kind == OutcomeSuccess.
	TxResult              ExecutionResult
	TxMetrics             ExecutionMetricsForCriteria
	BlockTipDryRunResult  ExecutionResult
	BlockTipDryRunMetrics ExecutionMetricsForCriteria
	CompressedBytecodes   []CompressedBytecodeInfo
	CallTrace             []Call

	// Populated when Kind == OutcomeRejectedByVM.
	RejectReason HaltReason
}

// Halt extracts the Halt reason if the outcome is anything but a clean
// success, mirroring the source contract's "was this a failure, and if so
// why" helper used by upstream sealing criteria.
func (o ExecutionOutcome) Halt() (HaltReason, bool) {
	switch o.Kind {
	case OutcomeSuccess:
		return "", false
	case OutcomeRejectedByVM:
		return o.RejectReason, true
	case OutcomeBootloaderOutOfGasForTx, OutcomeBootloaderOutOfGasForBlockTip:
		return HaltBootloaderOutOfGas, true
	default:
		return "", false
	}
}

// FinishBatchReply is the reply to a finish-batch command: the VM's
// terminal batch result, plus the witness block state when the executor
// was configured to capture it.
type FinishBatchReply struct {
	Batch   FinishedL1Batch
	Witness *state.WitnessBlockState
}
