// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"

	"k8s.io/utils/clock"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	"github.com/elastic/timeseries-optimizer/pkg/utils/metrics"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

// ClusterClient is the subset of the Elasticsearch client used to shrink indices.
type ClusterClient interface {
	esclient.NodesStatsGetter
	esclient.IndexAdmin
}

// Orchestrator shrinks single indices or date ranges of daily indices.
type Orchestrator struct {
	client   ClusterClient
	selector *NodeSelector
	workflow *Workflow
}

func NewOrchestrator(c ClusterClient, opts Options, clk clock.PassiveClock) *Orchestrator {
	return &Orchestrator{
		client:   c,
		selector: NewNodeSelector(c),
		workflow: NewWorkflow(c, opts, clk),
	}
}

// Shrink shrinks one existing index onto the data node with the most free space.
// The returned job is nil if the shrink could not start.
func (o *Orchestrator) Shrink(ctx context.Context, indexName string) (*ShrinkJob, error) {
	exists, err := o.client.IndexExists(ctx, indexName)
	if err != nil {
		return nil, clusterError(ctx, err, "failed to check existence of %s", indexName)
	}
	if !exists {
		return nil, NewError(IndexAbsent, nil, "index %s does not exist", indexName)
	}
	target, err := o.selector.SelectTargetNode(ctx)
	if err != nil {
		return nil, err
	}
	job := NewJob(indexName, o.workflow.opts.ShrunkIndexSuffix, target)
	return job, o.workflow.Run(ctx, job)
}

// Execute shrinks the daily indices of the plan one after the other, onto a single target node selected
// once for the whole batch. A failed day does not stop the batch. Once ctx is cancelled the remaining
// days are recorded as cancelled without any cluster call.
func (o *Orchestrator) Execute(ctx context.Context, plan BatchPlan) BatchResult {
	log := tracing.LoggerFromContext(ctx).WithName("batch").WithValues("index.prefix", plan.IndexPrefix)
	if len(plan.DailyJobs) == 0 {
		return BatchResult{}
	}

	target, err := o.selector.SelectTargetNode(ctx)
	if err != nil {
		log.Error(err, "Cannot select a shrink target node for the batch")
		return BatchResult{Failed: true, Err: err}
	}

	result := BatchResult{Results: make([]DayResult, 0, len(plan.DailyJobs))}
	for _, day := range plan.DailyJobs {
		dayResult := o.executeDay(ctx, day, target)
		if dayResult.Outcome == OutcomeFailed || dayResult.Outcome == OutcomeCancelled {
			result.Failed = true
		}
		result.Results = append(result.Results, dayResult)
	}
	log.Info("Batch finished",
		"days", len(result.Results),
		"succeeded", result.Count(OutcomeSucceeded),
		"skipped", result.Count(OutcomeSkipped),
		"failed", result.Count(OutcomeFailed),
		"cancelled", result.Count(OutcomeCancelled),
	)
	return result
}

func (o *Orchestrator) executeDay(ctx context.Context, day DailyIndex, target ClusterNode) DayResult {
	result := DayResult{Date: day.Date, IndexName: day.IndexName}
	if ctx.Err() != nil {
		result.Outcome = OutcomeCancelled
		result.Err = NewError(Cancelled, context.Cause(ctx), "batch cancelled before %s", day.IndexName)
		metrics.ShrinkJobsTotal.WithLabelValues(string(OutcomeCancelled)).Inc()
		return result
	}

	exists, err := o.client.IndexExists(ctx, day.IndexName)
	if err != nil {
		err := clusterError(ctx, err, "failed to check existence of %s", day.IndexName)
		result.Outcome = OutcomeFailed
		if IsKind(err, Cancelled) {
			result.Outcome = OutcomeCancelled
		}
		result.Err = err
		metrics.ShrinkJobsTotal.WithLabelValues(string(result.Outcome)).Inc()
		return result
	}
	if !exists {
		tracing.LoggerFromContext(ctx).WithName("batch").Info("Index does not exist, skipping", "index.name", day.IndexName)
		result.Outcome = OutcomeSkipped
		metrics.ShrinkJobsTotal.WithLabelValues(string(OutcomeSkipped)).Inc()
		return result
	}

	job := NewJob(day.IndexName, o.workflow.opts.ShrunkIndexSuffix, target)
	result.Job = job
	result.Err = o.workflow.Run(ctx, job)
	result.Outcome = job.Outcome()
	return result
}
