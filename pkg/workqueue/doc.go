// Package workqueue runs tasks with bounded parallelism and collects their
// failures.
//
// A Queue is reusable across phases: enqueue a batch, Join, inspect or drain
// the collected errors, then enqueue the next batch. DrainExceptions returns
// and clears the errors, which lets a caller attribute failures to the phase
// that produced them.
package workqueue
