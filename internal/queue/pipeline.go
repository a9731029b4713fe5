package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"memoflow/internal/classify"
	"memoflow/internal/domain"
	"memoflow/internal/events"
	"memoflow/internal/persist"
)

// Common errors returned by the pipeline.
var (
	ErrPipelineClosed = errors.New("pipeline is shut down")
	ErrJobNotFound    = errors.New("job not found")

	ErrNilAgent     = errors.New("agent cannot be nil")
	ErrNilPersister = errors.New("persister cannot be nil")
	ErrNilTagSource = errors.New("tag source cannot be nil")
)

// Config holds the pipeline's collaborators. Agent, Persister, and Tags are
// required; the rest are optional.
type Config struct {
	// Agent classifies memo content into task drafts.
	Agent classify.Agent

	// Persister commits accepted drafts as Draft-status records.
	Persister persist.Persister

	// Tags supplies the existing tag universe for tag resolution.
	Tags persist.TagSource

	// Audit, when set, records each completed job's outcome.
	Audit persist.AuditLog

	// Emitter, when set, publishes completion events to subscribers.
	Emitter events.Emitter

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics, when set, instruments the queue.
	Metrics *Metrics
}

// Pipeline is the explicit handle around the memo job queue. It is created
// once at application startup, passed to callers, started, and drained on
// teardown; there is no implicit global instance.
//
// Enqueue appends to an unbounded in-memory FIFO and never blocks. A single
// dedicated worker drains the queue strictly in arrival order, so at most
// one classifier invocation is in flight at any instant.
type Pipeline struct {
	agent     classify.Agent
	persister persist.Persister
	tags      persist.TagSource
	audit     persist.AuditLog
	emitter   events.Emitter
	logger    *slog.Logger
	metrics   *Metrics

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*memoJob
	jobs    map[uuid.UUID]*memoJob
	closed  bool
	started bool

	wg sync.WaitGroup
}

// New creates a pipeline from the given configuration.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Agent == nil {
		return nil, ErrNilAgent
	}
	if cfg.Persister == nil {
		return nil, ErrNilPersister
	}
	if cfg.Tags == nil {
		return nil, ErrNilTagSource
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		agent:     cfg.Agent,
		persister: cfg.Persister,
		tags:      cfg.Tags,
		audit:     cfg.Audit,
		emitter:   cfg.Emitter,
		logger:    logger.With("component", "memo_pipeline"),
		metrics:   cfg.Metrics,
		jobs:      make(map[uuid.UUID]*memoJob),
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Start launches the worker goroutine. Jobs enqueued before Start simply
// wait in the queue.
func (p *Pipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	p.wg.Add(1)
	go p.worker()
}

// Enqueue accepts a memo snapshot for processing and returns the freshly
// allocated job ID immediately. It never blocks: the job is appended to the
// tail of the in-memory queue regardless of how many jobs are ahead of it.
// Returns ErrPipelineClosed after Shutdown has begun.
func (p *Pipeline) Enqueue(ctx context.Context, memo domain.MemoSnapshot) (uuid.UUID, error) {
	if err := memo.Validate(); err != nil {
		return uuid.Nil, err
	}

	job := &memoJob{
		id:         uuid.New(),
		memo:       memo,
		status:     JobStatusPending,
		enqueuedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return uuid.Nil, ErrPipelineClosed
	}
	p.jobs[job.id] = job
	p.pending = append(p.pending, job)
	p.cond.Signal()
	queueLen := len(p.pending)
	p.mu.Unlock()

	p.metrics.jobEnqueued()
	p.logger.Debug("job enqueued",
		"job_id", job.id,
		"memo_id", memo.MemoID,
		"queue_len", queueLen)
	return job.id, nil
}

// Poll returns the current state of a job. Polling a terminal job returns
// the identical, already-computed result on every call.
func (p *Pipeline) Poll(jobID uuid.UUID) (JobSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	job, ok := p.jobs[jobID]
	if !ok {
		return JobSnapshot{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job.snapshot(), nil
}

// Cancel removes a job from the queue if it is still pending and reports
// whether it won the race. Pending jobs have no side effects yet, so this
// is always safe; running and terminal jobs are left untouched.
func (p *Pipeline) Cancel(jobID uuid.UUID) (bool, error) {
	p.mu.Lock()
	job, ok := p.jobs[jobID]
	if !ok {
		p.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.status != JobStatusPending {
		p.mu.Unlock()
		return false, nil
	}

	for i, queued := range p.pending {
		if queued.id == jobID {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			break
		}
	}
	p.terminateLocked(job, JobStatusFailed, &JobResult{
		FailureNote: "cancelled before processing",
	})
	snap := job.snapshot()
	p.mu.Unlock()

	p.metrics.jobDequeued()
	p.metrics.jobCompleted(JobStatusFailed, 0)
	p.publish(snap)
	p.logger.Info("job cancelled", "job_id", jobID)
	return true, nil
}

// Shutdown stops intake, lets the in-flight job finish, and fails any jobs
// still pending with a shutdown note. The wait for the in-flight job is
// bounded by ctx.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown interrupted with a job still in flight: %w", ctx.Err())
	}

	// The worker has exited; fail whatever it did not drain.
	p.mu.Lock()
	undrained := p.pending
	p.pending = nil
	var snaps []JobSnapshot
	for _, job := range undrained {
		p.terminateLocked(job, JobStatusFailed, &JobResult{
			FailureNote: "pipeline shut down before processing",
		})
		snaps = append(snaps, job.snapshot())
	}
	p.mu.Unlock()

	for _, snap := range snaps {
		p.metrics.jobDequeued()
		p.metrics.jobCompleted(JobStatusFailed, 0)
		p.publish(snap)
	}

	p.logger.Info("pipeline shut down", "undrained_jobs", len(snaps))
	return nil
}

// worker drains the queue one job at a time, in arrival order. Job N+1's
// classifier invocation never starts before job N terminates.
func (p *Pipeline) worker() {
	defer p.wg.Done()

	p.logger.Debug("worker started")

	for {
		p.mu.Lock()
		for len(p.pending) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			p.logger.Debug("worker stopping")
			return
		}

		job := p.pending[0]
		p.pending = p.pending[1:]
		job.status = JobStatusRunning
		p.mu.Unlock()

		p.metrics.jobDequeued()
		p.process(job)
	}
}

// process runs one job to its terminal state. Classifier errors and panics
// are converted into a FAILED job with a fallback result; they never crash
// the worker loop or propagate to the caller.
func (p *Pipeline) process(job *memoJob) {
	ctx := context.Background()
	logger := p.logger.With("job_id", job.id, "memo_id", job.memo.MemoID)
	started := time.Now()

	logger.Info("processing job")

	result, err := p.classify(ctx, job.memo)
	if err != nil {
		logger.Error("classification failed", "error", err)
		p.finish(job, JobStatusFailed, &JobResult{
			FailureNote: fmt.Sprintf("classification failed: %v", err),
		}, started)
		return
	}

	universe, err := p.tags.ListTags(ctx)
	if err != nil {
		// Degrades to dropping all tag mentions; tags are never guessed.
		logger.Warn("tag listing failed, resolving against empty universe", "error", err)
		universe = nil
	}

	clean := classify.Sanitize(result, universe)
	applied := persist.Apply(ctx, logger, p.persister, job.memo.MemoID, clean)

	jobResult := &JobResult{
		SuggestedMemoStatus: clean.SuggestedMemoStatus,
		Persistence:         applied,
	}

	logger.Info("job completed",
		"drafts", len(applied.Outcomes),
		"failed_drafts", applied.FailedCount(),
		"multistep", clean.Multistep())

	// Audit is written before the job turns terminal so a poll that observes
	// the terminal state never races the log entry.
	p.recordAudit(ctx, logger, job, applied)
	p.finish(job, JobStatusSucceeded, jobResult, started)
}

// classify invokes the agent exactly once, converting panics into errors.
// Jobs are never retried automatically; at most one attempt each.
func (p *Pipeline) classify(
	ctx context.Context,
	memo domain.MemoSnapshot,
) (result *domain.ClassificationResult, err error) {
	p.metrics.agentCallStarted()
	defer p.metrics.agentCallFinished()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: classifier panic: %v", classify.ErrClassificationFailed, r)
		}
	}()

	result, err = p.agent.Classify(ctx, memo)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: classifier returned no result", classify.ErrInvalidResponse)
	}
	return result, nil
}

// finish moves a job to its terminal state and publishes the completion.
func (p *Pipeline) finish(job *memoJob, status JobStatus, result *JobResult, started time.Time) {
	p.mu.Lock()
	p.terminateLocked(job, status, result)
	snap := job.snapshot()
	p.mu.Unlock()

	p.metrics.jobCompleted(status, time.Since(started))
	p.publish(snap)
}

// terminateLocked sets the terminal state. Caller holds p.mu. The result is
// set if and only if the status is terminal; this is the only place a
// result is ever assigned.
func (p *Pipeline) terminateLocked(job *memoJob, status JobStatus, result *JobResult) {
	now := time.Now().UTC()
	job.status = status
	job.completedAt = &now
	job.result = result
}

// publish emits a completion event to subscribers, best effort.
func (p *Pipeline) publish(snap JobSnapshot) {
	if p.emitter == nil {
		return
	}

	event, err := events.NewJobCompletedEvent(snap.JobID, string(snap.Status), snap)
	if err != nil {
		p.logger.Error("failed to build completion event", "error", err, "job_id", snap.JobID)
		return
	}
	if err := p.emitter.EmitEvent(context.Background(), event); err != nil {
		p.logger.Error("completion event handler failed", "error", err, "job_id", snap.JobID)
	}
}

// recordAudit writes the analysis log entry for a completed job, best
// effort: audit failures are logged, never surfaced into the job state.
func (p *Pipeline) recordAudit(
	ctx context.Context,
	logger *slog.Logger,
	job *memoJob,
	applied *persist.ApplyResult,
) {
	if p.audit == nil {
		return
	}

	entry := persist.AuditEntry{
		JobID:     job.id,
		MemoID:    job.memo.MemoID,
		Project:   applied.Project,
		CreatedAt: time.Now().UTC(),
	}
	for _, outcome := range applied.Outcomes {
		if outcome.Succeeded() {
			entry.Items = append(entry.Items, persist.AuditItem{
				TaskID: outcome.TaskID,
				Route:  outcome.Draft.Route,
			})
		}
	}

	if err := p.audit.RecordOutcome(ctx, entry); err != nil {
		logger.Error("failed to record audit entry", "error", err)
	}
}
