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

// Package prometheus is a thin wrapper around VictoriaMetrics/metrics that
// gives the rest of the module a stable, mock-free metrics surface. The
// package name intentionally does not match its import path component
// ("metrics"); callers import it as github.com/n42blockchain/batchexecutor/common/metrics
// and use it as prometheus.GetOrCreateCounter/GetOrCreateHistogram.
package prometheus

import (
	"sync/atomic"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
)

// Counter is either a monotonic counter or a settable gauge, depending on
// how it was created.
type Counter struct {
	isGauge bool
	val     uint64
	c       *vm.Counter
}

// GetOrCreateCounter returns the named counter, creating it on first use.
// When isGauge is true the metric is exported as a gauge backed by an
// atomic value that Set/Inc/Dec mutate directly, matching call sites that
// track a point-in-time quantity (e.g. the current chain head) rather than
// a monotonically increasing count.
func GetOrCreateCounter(name string, isGauge bool) *Counter {
	c := &Counter{isGauge: isGauge}
	if isGauge {
		vm.GetOrCreateGauge(name, func() float64 {
			return float64(atomic.LoadUint64(&c.val))
		})
		return c
	}
	c.c = vm.GetOrCreateCounter(name)
	return c
}

func (c *Counter) Inc() {
	if c.isGauge {
		atomic.AddUint64(&c.val, 1)
		return
	}
	c.c.Inc()
}

func (c *Counter) Dec() {
	if c.isGauge {
		atomic.AddUint64(&c.val, ^uint64(0))
	}
}

func (c *Counter) Add(n uint64) {
	if c.isGauge {
		atomic.AddUint64(&c.val, n)
		return
	}
	c.c.Add(int(n))
}

func (c *Counter) Set(v uint64) {
	if c.isGauge {
		atomic.StoreUint64(&c.val, v)
	}
}

func (c *Counter) Get() uint64 {
	if c.isGauge {
		return atomic.LoadUint64(&c.val)
	}
	return c.c.Get()
}

// Histogram wraps a VictoriaMetrics histogram.
type Histogram struct {
	h *vm.Histogram
}

// GetOrCreateHistogram returns the named histogram, creating it on first use.
func GetOrCreateHistogram(name string) *Histogram {
	return &Histogram{h: vm.GetOrCreateHistogram(name)}
}

// Update records a single observation.
func (h *Histogram) Update(v float64) {
	h.h.Update(v)
}

// UpdateDuration records the elapsed time since start, in seconds.
func (h *Histogram) UpdateDuration(start time.Time) {
	h.h.UpdateDuration(start)
}
