// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"time"

	"github.com/google/uuid"
)

// State is a step of the shrink workflow.
type State string

const (
	StatePending    State = "Pending"
	StateLocking    State = "Locking"
	StateRelocating State = "Relocating"
	StateShrinking  State = "Shrinking"
	StateVerifying  State = "Verifying"
	StateCompleted  State = "Completed"
	StateFailed     State = "Failed"
	StateCancelled  State = "Cancelled"
)

// IsTerminal returns true for states the workflow never leaves.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// isCancellable returns true while no irreversible cluster call has been issued.
func (s State) isCancellable() bool {
	return s == StatePending || s == StateLocking || s == StateRelocating
}

// ShrinkJob is the shrink of one index onto one node. It only lives for the duration of the call
// that created it.
type ShrinkJob struct {
	ID              uuid.UUID
	IndexName       string
	TargetIndexName string
	TargetNodeID    string
	State           State
	// RelocationAttempts is the number of relocation requests issued for the index.
	RelocationAttempts int
	LastError          error
	StartedAt          time.Time
	FinishedAt         time.Time

	// locked is true once the write block of the source index was set by this job.
	locked bool
}

// NewJob returns a pending job shrinking indexName into indexName+suffix on the given node.
func NewJob(indexName, suffix string, target ClusterNode) *ShrinkJob {
	return &ShrinkJob{
		ID:              uuid.New(),
		IndexName:       indexName,
		TargetIndexName: indexName + suffix,
		TargetNodeID:    target.ID,
		State:           StatePending,
	}
}

// Duration is the time spent between the start of the job and its terminal state.
func (j *ShrinkJob) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Outcome maps the state of a finished job to its outcome.
func (j *ShrinkJob) Outcome() Outcome {
	switch j.State {
	case StateCompleted:
		return OutcomeSucceeded
	case StateCancelled:
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
