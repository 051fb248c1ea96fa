package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/procbus/pkg/notify"
	"github.com/bft-labs/procbus/pkg/queue"
	"github.com/bft-labs/procbus/pkg/stackmon"
)

func TestFreeResourcesDrainsDeclaredQueues(t *testing.T) {
	in := queue.New(10)
	outA := queue.New(10)
	outB := queue.New(10)

	p := New("worker",
		map[string]*queue.Queue{"in": in},
		map[string][]*queue.Queue{"out": {outA, outB}},
		nil,
		WithQueuesToClear("in", "out"),
	)

	in.Put("a")
	in.Put("b")
	outA.Put("c")
	outB.Put("d")

	p.FreeResources()

	assert.True(t, in.Empty())
	assert.True(t, outA.Empty())
	assert.True(t, outB.Empty())
}

func TestDrainIsIdempotent(t *testing.T) {
	in := queue.New(10)
	p := New("worker",
		map[string]*queue.Queue{"in": in},
		nil,
		nil,
		WithQueuesToClear("in"),
	)

	p.ClearQueues()
	p.ClearQueues()
	assert.True(t, in.Empty())
}

func TestCloseHookRunsOnce(t *testing.T) {
	p := New("worker", nil, nil, nil)

	calls := 0
	p.SetCloseHook(func() { calls++ })

	p.FreeResources()
	p.FreeResources()
	assert.Equal(t, 1, calls)
}

func TestFreeResourcesStopsMonitor(t *testing.T) {
	p := New("worker", nil, nil, nil,
		WithMonitoring(stackmon.Config{SampleInterval: 5 * time.Millisecond, FlushEvery: 2}),
	)

	time.Sleep(15 * time.Millisecond)
	p.FreeResources()
	// A second teardown must not panic or block on the stopped monitor.
	p.FreeResources()
}

func TestQueuesToClearAccessors(t *testing.T) {
	p := New("worker", nil, nil, nil, WithQueuesToClear("a"))
	p.AddQueuesToClear("b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, p.QueuesToClear())
}

// recordingNotifier captures heartbeat messages for assertions.
type recordingNotifier struct {
	got chan notify.Message
}

func (r *recordingNotifier) Notify(ctx context.Context, msg notify.Message) error {
	r.got <- msg
	return nil
}

func TestHeartbeatDoesNotBlockCaller(t *testing.T) {
	rec := &recordingNotifier{got: make(chan notify.Message, 1)}
	p := New("worker", nil, nil, nil, WithNotifier(rec))

	start := time.Now()
	p.Heartbeat("alive")
	require.Less(t, time.Since(start), 50*time.Millisecond)

	select {
	case msg := <-rec.got:
		assert.Equal(t, "worker", msg.Process)
		assert.Equal(t, "alive", msg.Text)
		assert.False(t, msg.SentAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("heartbeat was never delivered")
	}
}

func TestHeartbeatWithDefaultNotifier(t *testing.T) {
	p := New("worker", nil, nil, nil)
	// Must not panic with the default discard notifier.
	p.Heartbeat("alive")
}
