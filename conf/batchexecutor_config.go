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

package conf

import (
	"errors"

	"github.com/ledgerwatch/erigon-lib/kv"
)

var errEmptyStateKeeperDBPath = errors.New("conf: state_keeper_db_path must not be empty")

// BatchExecutorConfig configures one batch executor instance: where its
// local storage snapshot lives, where to refresh it from, and the policy
// knobs the VM Driver consults while running a batch.
type BatchExecutorConfig struct {
	// StateKeeperDBPath is the local path of the mdbx store the Storage
	// View is seeded from. It is refreshed from Pool once at batch
	// construction and never written to again for the life of the batch.
	StateKeeperDBPath string `json:"state_keeper_db_path" yaml:"state_keeper_db_path"`

	// Pool is a handle to the upstream database used only once, to refresh
	// the local snapshot before the batch starts. Not (de)serialized.
	Pool kv.RoDB `json:"-" yaml:"-"`

	// MaxAllowedTxGasLimit is the upper bound on a single transaction's gas
	// limit; transactions above it are rejected before reaching the VM.
	MaxAllowedTxGasLimit uint64 `json:"max_allowed_tx_gas_limit" yaml:"max_allowed_tx_gas_limit"`

	// SaveCallTraces attaches a call tracer to every transaction of a batch
	// whose BatchEnv.CollectCallTraces is also set; with either unset, no
	// trace is collected.
	SaveCallTraces bool `json:"save_call_traces" yaml:"save_call_traces"`

	// UploadWitnessInputsToGCS, when set, makes finish_batch capture the
	// witness block state from the Storage View.
	UploadWitnessInputsToGCS bool `json:"upload_witness_inputs_to_gcs" yaml:"upload_witness_inputs_to_gcs"`
}

// DefaultBatchExecutorConfig returns a BatchExecutorConfig with conservative
// defaults; StateKeeperDBPath and Pool must still be supplied by the caller.
func DefaultBatchExecutorConfig() BatchExecutorConfig {
	return BatchExecutorConfig{
		MaxAllowedTxGasLimit:     4_000_000_000,
		SaveCallTraces:           false,
		UploadWitnessInputsToGCS: false,
	}
}

// Validate checks the configuration, filling in defaults for unset numeric
// fields the way LoggerConfig.Validate does for logging.
func (c *BatchExecutorConfig) Validate() error {
	if c.StateKeeperDBPath == "" {
		return errEmptyStateKeeperDBPath
	}
	if c.MaxAllowedTxGasLimit == 0 {
		c.MaxAllowedTxGasLimit = 4_000_000_000
	}
	return nil
}
