// Package queue implements the memo-processing job queue: an in-memory
// FIFO drained by a single worker that classifies each memo, persists the
// accepted drafts, and publishes the outcome to the job's terminal state.
package queue
