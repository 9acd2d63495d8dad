// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package prometheus

import (
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	c := GetOrCreateCounter("test_counter_basic", false)
	c.Inc()
	c.Add(4)
	if got := c.Get(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestGaugeCounter(t *testing.T) {
	g := GetOrCreateCounter("test_gauge_basic", true)
	g.Set(10)
	if got := g.Get(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	g.Inc()
	if got := g.Get(); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
	g.Dec()
	if got := g.Get(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestHistogram(t *testing.T) {
	h := GetOrCreateHistogram("test_histogram_basic")
	h.Update(1.5)
	h.UpdateDuration(time.Now().Add(-time.Millisecond))
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	a := GetOrCreateCounter("test_counter_idempotent", false)
	b := GetOrCreateCounter("test_counter_idempotent", false)
	a.Inc()
	if got := b.Get(); got != 1 {
		t.Errorf("expected counters with the same name to share state, got %d", got)
	}
}
