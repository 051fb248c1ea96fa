package stackmon

import (
	"hash/fnv"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/procbus/pkg/log"
)

// Config holds stack monitor settings.
type Config struct {
	// SampleInterval is the delay between stack samples.
	// Default: 1 second.
	SampleInterval time.Duration

	// FlushEvery is the number of samples collected before the digest is
	// logged and the batch reset. Default: 30.
	FlushEvery int

	// BufferSize is the size of the buffer handed to runtime.Stack.
	// Default: 64KB.
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleInterval: time.Second,
		FlushEvery:     30,
		BufferSize:     64 << 10,
	}
}

// Monitor periodically samples the stacks of all goroutines and logs a
// digest of the distinct stacks seen in each batch. It is a diagnostic
// aid for processes that appear wedged: the digest shows where the
// process spends its blocking time.
//
// A Monitor belongs to exactly one process instance. Start runs the
// sampling goroutine; Stop terminates it and is safe to call more than
// once.
type Monitor struct {
	cfg    Config
	logger log.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// New creates a stack monitor.
func New(cfg Config, logger log.Logger) *Monitor {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 30
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64 << 10
	}
	return &Monitor{
		cfg:    cfg,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine. Subsequent calls are
// no-ops.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.started.Store(true)
		go m.loop()
	})
}

// Stop terminates sampling and waits for the goroutine to exit.
// Subsequent calls are no-ops.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
	})
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	buf := make([]byte, m.cfg.BufferSize)
	seen := make(map[uint64]string)
	samples := 0

	for {
		select {
		case <-m.stop:
			if samples > 0 {
				m.flush(seen, samples)
			}
			return

		case <-ticker.C:
			n := runtime.Stack(buf, true)
			dump := string(buf[:n])
			seen[stackHash(dump)] = dump
			samples++

			if samples >= m.cfg.FlushEvery {
				m.flush(seen, samples)
				seen = make(map[uint64]string)
				samples = 0
			}
		}
	}
}

// flush logs the batch digest and each distinct stack dump.
func (m *Monitor) flush(seen map[uint64]string, samples int) {
	m.logger.Info("stack sample digest",
		log.Int("samples", samples),
		log.Int("distinct_stacks", len(seen)),
	)
	for _, dump := range seen {
		m.logger.Debug("sampled stacks", log.String("dump", dump))
	}
}

func stackHash(dump string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(dump))
	return h.Sum64()
}
