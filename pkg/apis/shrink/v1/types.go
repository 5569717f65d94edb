// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package v1

// DateLayout is the format of the dates of a ShrinkByDateRequest.
const DateLayout = "2006-01-02"

// ShrinkRequest asks for the shrink of a single index.
type ShrinkRequest struct {
	IndexName string `json:"indexName"`
}

// ShrinkByDateRequest asks for the shrink of the daily indices <prefix>-yyyy.MM.dd between two dates, both included.
type ShrinkByDateRequest struct {
	IndexPrefix string `json:"indexPrefix"`
	// StartDate is formatted as yyyy-MM-dd.
	StartDate string `json:"startDate"`
	// EndDate is formatted as yyyy-MM-dd.
	EndDate string `json:"endDate"`
}

// ShrinkResponse is the result of a ShrinkRequest.
type ShrinkResponse struct {
	Succeeded       bool   `json:"succeeded"`
	JobID           string `json:"jobId,omitempty"`
	IndexName       string `json:"indexName"`
	TargetIndexName string `json:"targetIndexName,omitempty"`
	TargetNodeID    string `json:"targetNodeId,omitempty"`
	// State is the last state of the shrink workflow.
	State              string  `json:"state,omitempty"`
	RelocationAttempts int     `json:"relocationAttempts,omitempty"`
	DurationSeconds    float64 `json:"durationSeconds,omitempty"`
}

// DayResult is the result of the shrink of one daily index.
type DayResult struct {
	Date      string `json:"date"`
	IndexName string `json:"indexName"`
	// Outcome is one of succeeded, skipped, failed or cancelled.
	Outcome         string           `json:"outcome"`
	TargetIndexName string           `json:"targetIndexName,omitempty"`
	Error           *ErrorDescriptor `json:"error,omitempty"`
}

// ShrinkByDateResponse is the result of a ShrinkByDateRequest, with one entry per day in ascending date order.
type ShrinkByDateResponse struct {
	PerDayResults []DayResult `json:"perDayResults"`
	OverallFailed bool        `json:"overallFailed"`
	TargetNodeID  string      `json:"targetNodeId,omitempty"`
}

// Operation reports whether the call failed as a whole.
type Operation struct {
	Failed bool             `json:"failed"`
	Error  *ErrorDescriptor `json:"error,omitempty"`
}

// Response is the envelope of every API response.
type Response[T any] struct {
	Body      *T        `json:"body,omitempty"`
	Operation Operation `json:"operation"`
}

// NewResponse wraps a successful body.
func NewResponse[T any](body T) Response[T] {
	return Response[T]{Body: &body}
}

// NewFailedResponse wraps a body, which may be nil, with the error that failed the operation.
func NewFailedResponse[T any](body *T, err error) Response[T] {
	return Response[T]{
		Body: body,
		Operation: Operation{
			Failed: true,
			Error:  NewErrorDescriptor(err),
		},
	}
}
