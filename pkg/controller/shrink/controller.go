// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"strings"

	"go.elastic.co/apm/v2"
	"k8s.io/utils/clock"

	shrinkv1 "github.com/elastic/timeseries-optimizer/pkg/apis/shrink/v1"
	core "github.com/elastic/timeseries-optimizer/pkg/shrink"
	"github.com/elastic/timeseries-optimizer/pkg/shrink/validation"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

const name = "shrink-controller"

// Orchestrator runs shrink jobs against the cluster.
type Orchestrator interface {
	Shrink(ctx context.Context, indexName string) (*core.ShrinkJob, error)
	Execute(ctx context.Context, plan core.BatchPlan) core.BatchResult
}

var _ Orchestrator = &core.Orchestrator{}

// Controller validates shrink requests, runs them and reports their result in the API response envelope.
type Controller struct {
	orchestrator Orchestrator
	clock        clock.PassiveClock
	tracer       *apm.Tracer
}

// NewController returns a Controller. tracer may be nil if tracing is disabled.
func NewController(o Orchestrator, clk clock.PassiveClock, tracer *apm.Tracer) *Controller {
	return &Controller{
		orchestrator: o,
		clock:        clk,
		tracer:       tracer,
	}
}

// Shrink shrinks a single index. Invalid requests fail without any call to the cluster.
func (c *Controller) Shrink(ctx context.Context, req *shrinkv1.ShrinkRequest) shrinkv1.Response[shrinkv1.ShrinkResponse] {
	ctx, end := tracing.StartOperation(ctx, c.tracer, "shrink", tracing.TxTypeRequest)
	defer end()
	log := tracing.LoggerFromContext(ctx).WithName(name)

	if errs := validation.ValidateShrinkRequest(req); len(errs) > 0 {
		log.V(1).Info("Rejecting invalid shrink request", "errors", errs.ToAggregate().Error())
		return shrinkv1.NewFailedResponse[shrinkv1.ShrinkResponse](nil, shrinkv1.NewValidationError(errs))
	}

	indexName := strings.TrimSpace(req.IndexName)
	job, err := c.orchestrator.Shrink(ctx, indexName)
	body := newShrinkResponse(indexName, job)
	if err != nil {
		return shrinkv1.NewFailedResponse(&body, err)
	}
	return shrinkv1.NewResponse(body)
}

// ShrinkByDate shrinks the daily indices of a date range. Invalid requests fail without any call to the cluster.
// Failures of single days are reported in the per day results and in the overall failed flag of the body and of
// the operation. The operation only carries an error when the batch could not start.
func (c *Controller) ShrinkByDate(ctx context.Context, req *shrinkv1.ShrinkByDateRequest) shrinkv1.Response[shrinkv1.ShrinkByDateResponse] {
	ctx, end := tracing.StartOperation(ctx, c.tracer, "shrink-by-date", tracing.TxTypeRequest)
	defer end()
	log := tracing.LoggerFromContext(ctx).WithName(name)

	dates, errs := validation.ValidateShrinkByDateRequest(req, c.clock)
	if len(errs) > 0 {
		log.V(1).Info("Rejecting invalid shrink by date request", "errors", errs.ToAggregate().Error())
		return shrinkv1.NewFailedResponse[shrinkv1.ShrinkByDateResponse](nil, shrinkv1.NewValidationError(errs))
	}

	plan := core.Plan(strings.TrimSpace(req.IndexPrefix), dates.Start, dates.End)
	log.Info("Shrinking daily indices", "index.prefix", plan.IndexPrefix, "days", len(plan.DailyJobs))
	result := c.orchestrator.Execute(ctx, plan)

	body := newShrinkByDateResponse(result)
	if result.Err != nil {
		return shrinkv1.NewFailedResponse(&body, result.Err)
	}
	if result.Failed {
		log.Error(result.Summary(), "Some daily indices were not shrunk", "index.prefix", plan.IndexPrefix)
	}
	return shrinkv1.Response[shrinkv1.ShrinkByDateResponse]{
		Body:      &body,
		Operation: shrinkv1.Operation{Failed: result.Failed},
	}
}

func newShrinkResponse(indexName string, job *core.ShrinkJob) shrinkv1.ShrinkResponse {
	resp := shrinkv1.ShrinkResponse{IndexName: indexName}
	if job == nil {
		return resp
	}
	resp.Succeeded = job.State == core.StateCompleted
	resp.JobID = job.ID.String()
	resp.TargetIndexName = job.TargetIndexName
	resp.TargetNodeID = job.TargetNodeID
	resp.State = string(job.State)
	resp.RelocationAttempts = job.RelocationAttempts
	resp.DurationSeconds = job.Duration().Seconds()
	return resp
}

func newShrinkByDateResponse(result core.BatchResult) shrinkv1.ShrinkByDateResponse {
	resp := shrinkv1.ShrinkByDateResponse{
		PerDayResults: make([]shrinkv1.DayResult, 0, len(result.Results)),
		OverallFailed: result.Failed,
	}
	for _, day := range result.Results {
		dayResult := shrinkv1.DayResult{
			Date:      day.Date.Format(shrinkv1.DateLayout),
			IndexName: day.IndexName,
			Outcome:   string(day.Outcome),
			Error:     shrinkv1.NewErrorDescriptor(day.Err),
		}
		if day.Job != nil {
			dayResult.TargetIndexName = day.Job.TargetIndexName
			resp.TargetNodeID = day.Job.TargetNodeID
		}
		resp.PerDayResults = append(resp.PerDayResults, dayResult)
	}
	return resp
}
