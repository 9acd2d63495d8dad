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

// gasCountFromTxAndMetrics attributes L1 gas to a single transaction's
// execution: the pubdata it published, plus its share of computational
// gas. Used for the per-transaction metrics half of a Success outcome.
func gasCountFromTxAndMetrics(tx Transaction, m ExecutionMetrics) uint64 {
	return m.PubdataPublished + m.ComputationalGasUsed
}

// gasCountFromMetrics attributes L1 gas to a block-tip dry run, which has
// no owning transaction: it sums the same published pubdata and
// computational gas as gasCountFromTxAndMetrics.
func gasCountFromMetrics(m ExecutionMetrics) uint64 {
	return m.PubdataPublished + m.ComputationalGasUsed
}

// executionMetricsForCriteria builds the criteria-facing metrics bundle for
// one execution result, attributing L1 gas via the tx-aware helper when a
// transaction is available (a real execute_tx result) or the tx-less one
// (the block-tip dry run).
func executionMetricsForCriteria(tx *Transaction, result ExecutionResult) ExecutionMetricsForCriteria {
	var l1Gas uint64
	if tx != nil {
		l1Gas = gasCountFromTxAndMetrics(*tx, result.Metrics)
	} else {
		l1Gas = gasCountFromMetrics(result.Metrics)
	}
	return ExecutionMetricsForCriteria{
		L1Gas:     l1Gas,
		Execution: result.Metrics,
	}
}
