package risk

import "testing"

func TestCircuitBreaker_StableTicksDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(5, 0.01, 20, 0.02)
	for i := uint64(0); i < 5; i++ {
		if trip, _ := cb.OnTick(1, i, 100); trip {
			t.Fatalf("did not expect trip on stable prices")
		}
	}
}

func TestCircuitBreaker_ShortWindowTrip(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	cb.OnTick(1, 0, 100)
	cb.OnTick(1, 1, 100)
	trip, window := cb.OnTick(1, 2, 102)
	if !trip || window != "short" {
		t.Fatalf("expected short-window trip, got tripped=%v window=%q", trip, window)
	}
}

func TestCircuitBreaker_AllowReflectsLastTick(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	cb.OnTick(1, 0, 100)
	cb.OnTick(1, 1, 100)
	cb.OnTick(1, 2, 102)
	if err := cb.Allow(1); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen after a trip, got %v", err)
	}
}

func TestCircuitBreaker_UntrippedInstrumentIsAllowed(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	if err := cb.Allow(42); err != nil {
		t.Fatalf("expected no error for an instrument with no history, got %v", err)
	}
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.warnings = append(l.warnings, msg)
}

func TestCircuitBreaker_LogsOnTrip(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	logger := &recordingLogger{}
	cb.SetLogger(logger)

	cb.OnTick(1, 0, 100)
	cb.OnTick(1, 1, 100)
	cb.OnTick(1, 2, 102)

	if len(logger.warnings) != 1 {
		t.Fatalf("expected exactly one trip warning, got %v", logger.warnings)
	}
}

func TestCircuitBreaker_NilLoggerIsSilent(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	cb.OnTick(1, 0, 100)
	cb.OnTick(1, 1, 100)
	if trip, _ := cb.OnTick(1, 2, 102); !trip {
		t.Fatalf("expected trip to still be reported with no logger attached")
	}
}

func TestMultiGuard_FirstRejectionWins(t *testing.T) {
	cb := NewCircuitBreaker(3, 0.01, 20, 0.05)
	cb.OnTick(1, 0, 100)
	cb.OnTick(1, 1, 100)
	cb.OnTick(1, 2, 105)
	mg := MultiGuard{Guards: []Guard{cb}}
	if err := mg.Allow(1); err == nil {
		t.Fatalf("expected MultiGuard to propagate circuit breaker rejection")
	}
}
