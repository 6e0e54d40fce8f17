package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, Timeout: time.Minute})
	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("call %d unexpectedly blocked: %v", i, err)
		}
		b.Record(errBoom)
	}
	if b.CurrentState() != StateOpen {
		t.Fatalf("state = %v, want open", b.CurrentState())
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("Allow = %v, want ErrOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 3})
	b.Record(errBoom)
	b.Record(errBoom)
	b.Record(nil)
	b.Record(errBoom)
	b.Record(errBoom)
	if b.CurrentState() != StateClosed {
		t.Fatalf("state = %v, want closed", b.CurrentState())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})
	b.Record(errBoom)
	if b.CurrentState() != StateOpen {
		t.Fatalf("state = %v, want open", b.CurrentState())
	}
	time.Sleep(20 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe blocked after timeout: %v", err)
	}
	if b.CurrentState() != StateHalfOpen {
		t.Fatalf("state = %v, want half_open", b.CurrentState())
	}
	b.Record(nil)
	b.Record(nil)
	if b.CurrentState() != StateClosed {
		t.Fatalf("state = %v, want closed", b.CurrentState())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	transitions := 0
	b := New(Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond, OnStateChange: func(from, to State) {
		transitions++
	}})
	b.Record(errBoom)
	time.Sleep(20 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe blocked: %v", err)
	}
	b.Record(errBoom)
	if b.CurrentState() != StateOpen {
		t.Fatalf("state = %v, want open", b.CurrentState())
	}
	if transitions != 3 {
		t.Errorf("transitions = %d, want 3 (closed->open->half_open->open)", transitions)
	}
}
