package queue

import (
	"testing"
	"time"
)

func TestFIFOOrder(t *testing.T) {
	q := New(10)
	for i := 0; i < 5; i++ {
		q.Put(i)
	}
	for i := 0; i < 5; i++ {
		if got := q.Get(); got != i {
			t.Fatalf("expected %d, got %v", i, got)
		}
	}
}

func TestTryPutFull(t *testing.T) {
	q := New(2)
	if !q.TryPut("a") || !q.TryPut("b") {
		t.Fatal("expected TryPut to succeed below capacity")
	}
	if q.TryPut("c") {
		t.Fatal("expected TryPut to fail at capacity")
	}
	if !q.Full() {
		t.Fatal("expected queue to report full")
	}
}

func TestGetTimeoutEmpty(t *testing.T) {
	q := New(1)
	start := time.Now()
	_, ok := q.GetTimeout(20 * time.Millisecond)
	if ok {
		t.Fatal("expected timeout on empty queue")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("GetTimeout returned before the deadline")
	}
}

func TestGetBlocksUntilPut(t *testing.T) {
	q := New(1)
	done := make(chan interface{})
	go func() { done <- q.Get() }()

	select {
	case <-done:
		t.Fatal("Get returned before a message was available")
	case <-time.After(20 * time.Millisecond):
	}

	q.Put("late")
	select {
	case msg := <-done:
		if msg != "late" {
			t.Fatalf("expected %q, got %v", "late", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not observe the message")
	}
}

func TestDropOldest(t *testing.T) {
	q := New(3)
	q.Put(1)
	q.Put(2)
	q.Put(3)

	if !q.DropOldest() {
		t.Fatal("expected DropOldest to discard a message")
	}
	if got := q.Get(); got != 2 {
		t.Fatalf("expected oldest remaining message 2, got %v", got)
	}

	for q.DropOldest() {
	}
	if !q.Empty() {
		t.Fatal("expected empty queue after draining")
	}
	if q.DropOldest() {
		t.Fatal("expected DropOldest to report empty queue")
	}
}

func TestDefaultCapacity(t *testing.T) {
	q := New(0)
	if q.Cap() != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, q.Cap())
	}
}
