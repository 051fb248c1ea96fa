// Package stackmon provides an optional background stack sampler for
// pipeline processes.
//
// When monitoring is enabled at process construction, the sampler starts
// immediately and is stopped exactly once during teardown. Sampling and
// logging stay entirely inside this package; the messaging core only
// starts and stops it.
package stackmon
