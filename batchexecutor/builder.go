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
	"context"

	"github.com/n42blockchain/batchexecutor/conf"
	"github.com/n42blockchain/batchexecutor/state"
)

// Builder constructs a running batch executor bound to a batch environment
// and a VM supplied by the caller. Splitting the interface from MainBuilder
// lets tests substitute a builder that skips the real storage snapshot.
type Builder interface {
	InitBatch(ctx context.Context, env BatchEnv, vm VM) (*Handle, error)
}

// MainBuilder is the production Builder: it opens a fresh read-only storage
// snapshot for every batch and wires a Driver goroutine on top of it.
type MainBuilder struct {
	cfg conf.BatchExecutorConfig
}

// NewMainBuilder validates cfg and returns a MainBuilder, or an error if the
// configuration is unusable.
func NewMainBuilder(cfg conf.BatchExecutorConfig) (*MainBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MainBuilder{cfg: cfg}, nil
}

// InitBatch opens the storage snapshot this batch will read and write
// through, starts the Driver goroutine, and returns a Handle ready to
// accept commands. The snapshot is released when the batch finishes.
func (b *MainBuilder) InitBatch(ctx context.Context, env BatchEnv, vm VM) (*Handle, error) {
	snap, err := state.OpenSnapshot(ctx, b.cfg.StateKeeperDBPath, b.cfg.Pool)
	if err != nil {
		return nil, err
	}

	view := state.NewView(snap)
	driverCfg := driverConfig{
		maxAllowedTxGasLimit:     b.cfg.MaxAllowedTxGasLimit,
		saveCallTraces:           b.cfg.SaveCallTraces && env.CollectCallTraces,
		uploadWitnessInputsToGCS: b.cfg.UploadWitnessInputsToGCS,
	}

	driver := newDriver(vm, view, snap, env, driverCfg, nil)
	return newHandleFromDriver(driver), nil
}
