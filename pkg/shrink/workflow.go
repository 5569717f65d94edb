// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/clock"

	"github.com/elastic/timeseries-optimizer/pkg/config"
	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	"github.com/elastic/timeseries-optimizer/pkg/utils/metrics"
	"github.com/elastic/timeseries-optimizer/pkg/utils/retry"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

// maxRelocationAttempts bounds the number of relocation requests per job: a timed out relocation is
// requested once more before the job fails.
const maxRelocationAttempts = 2

// Options tune the shrink workflow.
type Options struct {
	// ShrunkIndexSuffix is appended to the source index name to name the shrunk index.
	ShrunkIndexSuffix string
	// RelocationTimeout bounds each relocation attempt.
	RelocationTimeout             time.Duration
	RelocationPollInitialInterval time.Duration
	RelocationPollMaxInterval     time.Duration
	// VerificationTimeout bounds the wait for the shrunk index to become available.
	VerificationTimeout time.Duration
	// RollbackOnCancel removes the write block of the source index when a job is cancelled.
	RollbackOnCancel bool
}

// OptionsFromConfig extracts the workflow options from the process configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ShrunkIndexSuffix:             cfg.ShrunkIndexSuffix,
		RelocationTimeout:             cfg.RelocationTimeout,
		RelocationPollInitialInterval: cfg.RelocationPollInitialInterval,
		RelocationPollMaxInterval:     cfg.RelocationPollMaxInterval,
		VerificationTimeout:           cfg.VerificationTimeout,
		RollbackOnCancel:              cfg.RollbackOnCancel,
	}
}

func (o Options) withDefaults() Options {
	if o.ShrunkIndexSuffix == "" {
		o.ShrunkIndexSuffix = config.DefaultShrunkIndexSuffix
	}
	if o.RelocationTimeout <= 0 {
		o.RelocationTimeout = config.DefaultRelocationTimeout
	}
	if o.RelocationPollInitialInterval <= 0 {
		o.RelocationPollInitialInterval = config.DefaultRelocationPollInitialInterval
	}
	if o.RelocationPollMaxInterval < o.RelocationPollInitialInterval {
		o.RelocationPollMaxInterval = o.RelocationPollInitialInterval
	}
	if o.VerificationTimeout <= 0 {
		o.VerificationTimeout = config.DefaultVerificationTimeout
	}
	return o
}

func (o Options) pollBackoff() wait.Backoff {
	return wait.Backoff{
		Duration: o.RelocationPollInitialInterval,
		Factor:   2,
		Jitter:   0.1,
		Steps:    math.MaxInt32,
		Cap:      o.RelocationPollMaxInterval,
	}
}

// Workflow drives a single index through locking, relocation, shrink and verification.
// A Workflow holds no per-job state and can run several jobs concurrently.
type Workflow struct {
	client esclient.IndexAdmin
	opts   Options
	clock  clock.PassiveClock
}

func NewWorkflow(c esclient.IndexAdmin, opts Options, clk clock.PassiveClock) *Workflow {
	return &Workflow{
		client: c,
		opts:   opts.withDefaults(),
		clock:  clk,
	}
}

type step struct {
	state State
	run   func(ctx context.Context, job *ShrinkJob) error
}

// Run executes the job until it reaches a terminal state and returns the error that failed or cancelled it.
// Cancellation of ctx is honored until the shrink call is issued. From then on the job runs to completion
// or failure regardless of ctx.
func (w *Workflow) Run(ctx context.Context, job *ShrinkJob) error {
	log := jobLogger(ctx, job)
	job.StartedAt = w.clock.Now()
	metrics.JobsInProgress.WithLabelValues(string(job.State)).Inc()
	log.Info("Starting shrink", "node.id", job.TargetNodeID, "target_index.name", job.TargetIndexName)

	steps := []step{
		{state: StateLocking, run: w.lock},
		{state: StateRelocating, run: w.relocate},
		{state: StateShrinking, run: w.shrink},
		{state: StateVerifying, run: w.verify},
	}
	for _, s := range steps {
		if job.State.isCancellable() && ctx.Err() != nil {
			return w.cancel(ctx, job, NewError(Cancelled, context.Cause(ctx), "shrink of %s cancelled before %s", job.IndexName, s.state))
		}
		w.transition(ctx, job, s.state)

		stepCtx := ctx
		if !s.state.isCancellable() {
			stepCtx = context.WithoutCancel(ctx)
		}
		stepCtx, end := tracing.StartSpan(stepCtx, strings.ToLower(string(s.state)))
		err := s.run(stepCtx, job)
		end()

		if err != nil {
			if IsKind(err, Cancelled) {
				return w.cancel(ctx, job, err)
			}
			return w.fail(ctx, job, err)
		}
	}
	w.finish(ctx, job, StateCompleted, nil)
	return nil
}

func (w *Workflow) lock(ctx context.Context, job *ShrinkJob) error {
	if err := w.client.SetIndexReadOnly(ctx, job.IndexName); err != nil {
		return clusterError(ctx, err, "failed to block writes on %s", job.IndexName)
	}
	job.locked = true
	return nil
}

func (w *Workflow) relocate(ctx context.Context, job *ShrinkJob) error {
	log := jobLogger(ctx, job)
	for {
		job.RelocationAttempts++
		metrics.RelocationAttemptsTotal.WithLabelValues().Inc()
		if err := w.client.RequestShardRelocation(ctx, job.IndexName, job.TargetNodeID); err != nil {
			return clusterError(ctx, err, "failed to request relocation of %s to node %s", job.IndexName, job.TargetNodeID)
		}

		err := retry.Poll(ctx, w.opts.pollBackoff(), w.opts.RelocationTimeout, func(ctx context.Context) (bool, error) {
			status, err := w.client.GetRelocationStatus(ctx, job.IndexName, job.TargetNodeID)
			if err != nil {
				return false, err
			}
			log.V(1).Info("Relocation status",
				"primaries", status.Primaries, "on_target", status.OnTarget, "relocating", status.Relocating)
			return status.Done, nil
		})
		switch {
		case err == nil:
			return nil
		case retry.IsTimeoutReached(err) && job.RelocationAttempts < maxRelocationAttempts:
			log.Info("Relocation timed out, requesting it again",
				"timeout", w.opts.RelocationTimeout, "attempt", job.RelocationAttempts)
		case retry.IsTimeoutReached(err):
			return NewError(RelocationTimeout, err, "primaries of %s not relocated to node %s after %d attempts",
				job.IndexName, job.TargetNodeID, job.RelocationAttempts)
		default:
			return clusterError(ctx, err, "failed to retrieve relocation status of %s", job.IndexName)
		}
	}
}

func (w *Workflow) shrink(ctx context.Context, job *ShrinkJob) error {
	if err := w.client.ShrinkIndex(ctx, job.IndexName, job.TargetIndexName); err != nil {
		return NewError(ShrinkFailed, err, "failed to shrink %s into %s", job.IndexName, job.TargetIndexName)
	}
	return nil
}

func (w *Workflow) verify(ctx context.Context, job *ShrinkJob) error {
	exists, err := w.client.IndexExists(ctx, job.TargetIndexName)
	if err != nil {
		return NewError(VerificationFailed, err, "failed to check existence of %s", job.TargetIndexName)
	}
	if !exists {
		return NewError(VerificationFailed, nil, "shrunk index %s does not exist", job.TargetIndexName)
	}

	var last esclient.HealthStatus
	err = retry.Poll(ctx, w.opts.pollBackoff(), w.opts.VerificationTimeout, func(ctx context.Context) (bool, error) {
		health, err := w.client.GetIndexHealth(ctx, job.TargetIndexName)
		if err != nil {
			return false, err
		}
		last = health.Status
		return health.Status.IsAvailable(), nil
	})
	if err != nil {
		return NewError(VerificationFailed, err, "shrunk index %s is not available, last health %q", job.TargetIndexName, last)
	}
	return nil
}

func (w *Workflow) transition(ctx context.Context, job *ShrinkJob, state State) {
	metrics.JobsInProgress.WithLabelValues(string(job.State)).Dec()
	metrics.JobsInProgress.WithLabelValues(string(state)).Inc()
	jobLogger(ctx, job).V(1).Info("Shrink state transition", "from", job.State, "to", state)
	job.State = state
}

func (w *Workflow) fail(ctx context.Context, job *ShrinkJob, err error) error {
	jobLogger(ctx, job).Error(err, "Shrink failed", "state", job.State, "error.kind", KindOf(err))
	tracing.CaptureError(ctx, err)
	w.finish(ctx, job, StateFailed, err)
	return err
}

func (w *Workflow) cancel(ctx context.Context, job *ShrinkJob, err error) error {
	log := jobLogger(ctx, job)
	switch {
	case job.locked && w.opts.RollbackOnCancel:
		if rollbackErr := w.client.SetIndexWritable(context.WithoutCancel(ctx), job.IndexName); rollbackErr != nil {
			log.Error(rollbackErr, "Failed to remove the write block after cancellation")
		} else {
			log.Info("Removed the write block after cancellation")
		}
	case job.locked:
		log.Info("Shrink cancelled, the source index is left read-only")
	}
	w.finish(ctx, job, StateCancelled, err)
	return err
}

func (w *Workflow) finish(ctx context.Context, job *ShrinkJob, state State, err error) {
	metrics.JobsInProgress.WithLabelValues(string(job.State)).Dec()
	job.State = state
	job.LastError = err
	job.FinishedAt = w.clock.Now()

	outcome := string(job.Outcome())
	metrics.ShrinkJobsTotal.WithLabelValues(outcome).Inc()
	metrics.ShrinkJobDuration.WithLabelValues(outcome).Observe(job.Duration().Seconds())
	jobLogger(ctx, job).Info("Shrink finished", "state", state, "duration", job.Duration(), "relocation_attempts", job.RelocationAttempts)
}

func jobLogger(ctx context.Context, job *ShrinkJob) logr.Logger {
	return tracing.LoggerFromContext(ctx).WithName("shrink-workflow").WithValues(
		"job.id", job.ID.String(),
		"index.name", job.IndexName,
	)
}
