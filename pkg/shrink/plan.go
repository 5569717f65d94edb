// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// IndexDateLayout is the date format of daily index names.
const IndexDateLayout = "2006.01.02"

// Outcome is the result of the shrink of one index.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeSkipped is recorded in batch mode when the daily index does not exist.
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// DailyIndex is one day of a batch plan.
type DailyIndex struct {
	Date      time.Time
	IndexName string
}

// BatchPlan lists the daily indices of a date range in ascending date order.
type BatchPlan struct {
	IndexPrefix string
	StartDate   time.Time
	EndDate     time.Time
	DailyJobs   []DailyIndex
}

// DailyIndexName returns the name of the index holding the documents of the given day.
func DailyIndexName(prefix string, date time.Time) string {
	return prefix + "-" + date.UTC().Format(IndexDateLayout)
}

// Plan enumerates the days from start to end, both included. Dates are truncated to the UTC calendar day.
// An empty plan is returned if end is before start.
func Plan(prefix string, start, end time.Time) BatchPlan {
	start, end = truncateToDay(start), truncateToDay(end)
	plan := BatchPlan{
		IndexPrefix: prefix,
		StartDate:   start,
		EndDate:     end,
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		plan.DailyJobs = append(plan.DailyJobs, DailyIndex{
			Date:      day,
			IndexName: DailyIndexName(prefix, day),
		})
	}
	return plan
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayResult is the outcome of one day of a batch.
type DayResult struct {
	Date      time.Time
	IndexName string
	Outcome   Outcome
	// Job is nil if no shrink was attempted for the day.
	Job *ShrinkJob
	Err error
}

// BatchResult mirrors a BatchPlan with the outcome of every day.
type BatchResult struct {
	Results []DayResult
	// Failed is true if any day failed or was cancelled, or if the batch could not start.
	Failed bool
	// Err is set when the batch could not start, in which case Results is empty.
	Err error
}

// Summary combines the errors of the batch into one error, nil if nothing failed.
func (r BatchResult) Summary() error {
	var errs error
	if r.Err != nil {
		errs = multierror.Append(errs, r.Err)
	}
	for _, day := range r.Results {
		if day.Err != nil {
			errs = multierror.Append(errs, day.Err)
		}
	}
	return errs
}

// Count returns the number of days with the given outcome.
func (r BatchResult) Count(outcome Outcome) int {
	n := 0
	for _, day := range r.Results {
		if day.Outcome == outcome {
			n++
		}
	}
	return n
}
