// Package task manages background job queuing, processing, and lifecycle.
//
// A job is persisted as PENDING before it is handed to the worker pool, so a
// full in-memory queue or a restart never loses it: the pending sweeper picks
// it up later. Workers claim a job with a conditional PENDING to PROCESSING
// update before running its Body, then record SUCCESS or FAILURE.
// The Scheduler enqueues recurring jobs on a fixed cadence.
package task
