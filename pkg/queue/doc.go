// Package queue implements the bounded FIFO queues that connect processes
// in a pipeline.
//
// Queues are created by whoever wires the pipeline (see pkg/pipeline) and
// handed to processes at construction; the messaging core itself never
// creates or destroys them. Each queue carries arbitrary payloads and
// guarantees FIFO order between its single writer role and single reader
// role.
package queue
