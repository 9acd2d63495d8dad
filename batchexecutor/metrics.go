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
	"fmt"
	"time"

	prometheus "github.com/n42blockchain/batchexecutor/common/metrics"
)

var (
	// commandResponseTime is keyed by command label: execute_tx,
	// start_next_miniblock, rollback_last_tx, finish_batch.
	commandResponseTime = map[string]*prometheus.Histogram{
		"execute_tx":           prometheus.GetOrCreateHistogram("state_keeper_batch_executor_command_response_time{command=\"execute_tx\"}"),
		"start_next_miniblock": prometheus.GetOrCreateHistogram("state_keeper_batch_executor_command_response_time{command=\"start_next_miniblock\"}"),
		"rollback_last_tx":     prometheus.GetOrCreateHistogram("state_keeper_batch_executor_command_response_time{command=\"rollback_last_tx\"}"),
		"finish_batch":         prometheus.GetOrCreateHistogram("state_keeper_batch_executor_command_response_time{command=\"finish_batch\"}"),
	}

	computationalGasPerNanosecond = prometheus.GetOrCreateHistogram("state_keeper_computational_gas_per_nanosecond")
	failedTxGasLimitPerNanosecond = prometheus.GetOrCreateHistogram("state_keeper_failed_tx_gas_limit_per_nanosecond")

	processedTxsTotal   = prometheus.GetOrCreateCounter("server_processed_txs{stage=\"state_keeper\"}", false)
	processedL1TxsTotal = prometheus.GetOrCreateCounter("server_processed_l1_txs{stage=\"state_keeper\"}", false)
	processedL2TxsTotal = prometheus.GetOrCreateCounter("server_processed_l2_txs{stage=\"state_keeper\"}", false)

	storageReadDuration  = prometheus.GetOrCreateHistogram("state_keeper_batch_storage_interaction_duration{interaction=\"get_value\"}")
	storageWriteDuration = prometheus.GetOrCreateHistogram("state_keeper_batch_storage_interaction_duration{interaction=\"set_value\"}")
)

// txExecutionStageHistogram returns (creating on first use) the per-stage
// VM timing histogram for the named stage of execute_tx: execution,
// tx_rollback, dryrun_make_snapshot, dryrun_execute_block_tip,
// dryrun_get_execution_metrics, dryrun_rollback_to_the_latest_snapshot,
// dryrun_rollback.
func txExecutionStageHistogram(stage string) *prometheus.Histogram {
	return prometheus.GetOrCreateHistogram(fmt.Sprintf("server_state_keeper_tx_execution_time{stage=%q}", stage))
}

func recordCommandResponseTime(command string, start time.Time) {
	if h, ok := commandResponseTime[command]; ok {
		h.UpdateDuration(start)
	}
}

func recordProcessedTx(tx Transaction) {
	processedTxsTotal.Inc()
	if tx.IsL1 {
		processedL1TxsTotal.Inc()
	} else {
		processedL2TxsTotal.Inc()
	}
}
