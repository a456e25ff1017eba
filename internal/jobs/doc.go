// Package jobs implements the asynchronous conversion pipeline: typed job
// messages, the per-kind handlers, and the batch consumer that drives the
// retry, backoff, and dead-letter state machine under at-least-once
// delivery.
package jobs
