package stackmon

import (
	"testing"
	"time"

	"github.com/bft-labs/procbus/pkg/log"
)

func TestStartStop(t *testing.T) {
	m := New(Config{SampleInterval: 5 * time.Millisecond, FlushEvery: 2}, log.NewNoopLogger())
	m.Start()
	time.Sleep(25 * time.Millisecond)
	m.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(DefaultConfig(), log.NewNoopLogger())
	m.Start()
	m.Stop()
	m.Stop()
}

func TestStartIsIdempotent(t *testing.T) {
	m := New(Config{SampleInterval: 5 * time.Millisecond}, log.NewNoopLogger())
	m.Start()
	m.Start()
	m.Stop()
}

func TestDefaultsApplied(t *testing.T) {
	m := New(Config{}, log.NewNoopLogger())
	if m.cfg.SampleInterval != time.Second {
		t.Fatalf("expected default sample interval, got %v", m.cfg.SampleInterval)
	}
	if m.cfg.FlushEvery != 30 {
		t.Fatalf("expected default flush count, got %d", m.cfg.FlushEvery)
	}
	if m.cfg.BufferSize != 64<<10 {
		t.Fatalf("expected default buffer size, got %d", m.cfg.BufferSize)
	}
}
