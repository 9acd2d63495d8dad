// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.

package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestTxRejectionErrors verifies the transaction-level rejection sentinels.
func TestTxRejectionErrors(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrTooBigGasLimit, "too big gas limit"},
		{ErrBootloaderOutOfGas, "bootloader out of gas"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.expected {
			t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
		}
	}
}

// TestProtocolViolationErrors verifies the fatal/protocol-violation sentinels.
func TestProtocolViolationErrors(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrSnapshotStackDepth, "snapshot stack depth invariant violated"},
		{ErrNoCompressionFailed, "no-compression retry failed"},
		{ErrBlockTipNotFinal, "block tip execution did not finalize cleanly"},
		{ErrBatchNotSuccessful, "finished batch block tip result is not successful"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.expected {
			t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
		}
	}
}

// TestInfrastructureErrors verifies the channel/shutdown sentinels.
func TestInfrastructureErrors(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{ErrDriverGone, "batch executor driver is gone"},
		{ErrBatchFinished, "batch executor has already finished"},
		{ErrSnapshotRefresh, "failed to refresh storage snapshot"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.expected {
			t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
		}
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if result := Wrap(nil, "context"); result != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("wrap error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := Wrap(original, "context message")

		expected := "context message: original error"
		if wrapped.Error() != expected {
			t.Errorf("Expected '%s', got '%s'", expected, wrapped.Error())
		}
		if !errors.Is(wrapped, original) {
			t.Error("Wrapped error should unwrap to original")
		}
	})
}

func TestWrapf(t *testing.T) {
	t.Run("wrapf nil error", func(t *testing.T) {
		if result := Wrapf(nil, "context %d", 123); result != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})

	t.Run("wrapf error with formatted context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := Wrapf(original, "context %d %s", 123, "test")

		expected := "context 123 test: original error"
		if wrapped.Error() != expected {
			t.Errorf("Expected '%s', got '%s'", expected, wrapped.Error())
		}
		if !errors.Is(wrapped, original) {
			t.Error("Wrapped error should unwrap to original")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("is same error", func(t *testing.T) {
		if !Is(ErrTooBigGasLimit, ErrTooBigGasLimit) {
			t.Error("Is should return true for same error")
		}
	})

	t.Run("is different error", func(t *testing.T) {
		if Is(ErrTooBigGasLimit, ErrBootloaderOutOfGas) {
			t.Error("Is should return false for different errors")
		}
	})

	t.Run("is wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("wrapped: %w", ErrTooBigGasLimit)
		if !Is(wrapped, ErrTooBigGasLimit) {
			t.Error("Is should return true for wrapped error")
		}
	})

	t.Run("is nil error", func(t *testing.T) {
		if Is(nil, ErrTooBigGasLimit) {
			t.Error("Is(nil, err) should return false")
		}
	})
}

type customError struct {
	Code    int
	Message string
}

func (e *customError) Error() string {
	return e.Message
}

func TestAs(t *testing.T) {
	t.Run("as matching type", func(t *testing.T) {
		original := &customError{Code: 404, Message: "not found"}
		wrapped := fmt.Errorf("wrapped: %w", original)

		var target *customError
		if !As(wrapped, &target) {
			t.Error("As should return true for matching type")
		}
		if target.Code != 404 {
			t.Errorf("Expected Code 404, got %d", target.Code)
		}
	})

	t.Run("as non-matching type", func(t *testing.T) {
		err := errors.New("simple error")
		var target *customError
		if As(err, &target) {
			t.Error("As should return false for non-matching type")
		}
	})
}

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Error("New should return non-nil error")
	}
	if err.Error() != "test error" {
		t.Errorf("Expected 'test error', got '%s'", err.Error())
	}
}

func TestErrorf(t *testing.T) {
	t.Run("simple format", func(t *testing.T) {
		err := Errorf("error %d", 123)
		if err.Error() != "error 123" {
			t.Errorf("Expected 'error 123', got '%s'", err.Error())
		}
	})

	t.Run("wrap with errorf", func(t *testing.T) {
		original := ErrTooBigGasLimit
		wrapped := Errorf("wrapped: %w", original)
		if !errors.Is(wrapped, original) {
			t.Error("Errorf with %w should wrap error")
		}
	})
}

func TestErrorUniqueness(t *testing.T) {
	allErrors := []error{
		ErrTooBigGasLimit,
		ErrBootloaderOutOfGas,
		ErrSnapshotStackDepth,
		ErrNoCompressionFailed,
		ErrBlockTipNotFinal,
		ErrBatchNotSuccessful,
		ErrDriverGone,
		ErrBatchFinished,
		ErrSnapshotRefresh,
	}

	seen := make(map[string]bool)
	for _, err := range allErrors {
		msg := err.Error()
		if seen[msg] {
			t.Errorf("Duplicate error message: %s", msg)
		}
		seen[msg] = true
	}
}
