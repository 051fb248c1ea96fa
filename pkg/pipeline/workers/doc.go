// Package workers ships a few ready-made pipeline workers: a stub that
// only proves liveness, a relay that forwards messages between channels,
// and a state writer that mirrors a status channel into shared state.
// They double as reference implementations for writing custom workers.
package workers
