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

// Package errors defines common error types used throughout the batch
// executor codebase. This package provides a centralized location for error
// definitions to ensure consistency and avoid duplication across modules.
package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// =====================
// Transaction-level rejection reasons
// =====================

var (
	// ErrTooBigGasLimit mirrors the API-level mempool check: a transaction
	// whose gas limit exceeds the configured maximum is rejected before it
	// ever reaches the VM.
	ErrTooBigGasLimit = errors.New("too big gas limit")

	// ErrBootloaderOutOfGas is the distinguished halt reason used when the
	// bootloader's own gas budget (not the transaction's) is exhausted.
	ErrBootloaderOutOfGas = errors.New("bootloader out of gas")
)

// =====================
// Driver protocol violations (fatal; these panic the driver goroutine)
// =====================

var (
	// ErrSnapshotStackDepth is raised when the snapshot stack depth on
	// entry or exit of a command handler does not match the state machine's
	// expected depth (0 in Idle, 1 in Tx-Pending).
	ErrSnapshotStackDepth = errors.New("snapshot stack depth invariant violated")

	// ErrNoCompressionFailed signals that the infallible no-compression
	// retry failed, which the VM contract says cannot happen.
	ErrNoCompressionFailed = errors.New("no-compression retry failed")

	// ErrBlockTipNotFinal signals that the block-tip dry run after a
	// transaction ended in a Revert or a non-OOG Halt, both of which are
	// impossible by the VM's contract.
	ErrBlockTipNotFinal = errors.New("block tip execution did not finalize cleanly")

	// ErrBatchNotSuccessful signals that finish_batch's block-tip result
	// failed; sealing a batch on top of that would be a bug.
	ErrBatchNotSuccessful = errors.New("finished batch block tip result is not successful")
)

// =====================
// Infrastructure errors
// =====================

var (
	// ErrDriverGone is returned by Handle operations when the command
	// channel send fails or the reply is dropped, meaning the Driver
	// goroutine has crashed or already exited.
	ErrDriverGone = errors.New("batch executor driver is gone")

	// ErrBatchFinished is returned when a command is sent after
	// finish_batch has already been processed.
	ErrBatchFinished = errors.New("batch executor has already finished")

	// ErrSnapshotRefresh is returned when bringing the local storage
	// snapshot up to date from the upstream database fails during
	// executor construction.
	ErrSnapshotRefresh = errors.New("failed to refresh storage snapshot")
)

// =====================
// Helper Functions
// =====================

// Wrap wraps an error with additional context, capturing a stack trace at
// the call site, for errors that may surface far from where they
// originated.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message and a stack trace.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, a ...interface{}) error {
	return fmt.Errorf(format, a...)
}
