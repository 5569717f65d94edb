// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"errors"
	"fmt"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
)

// Kind classifies shrink failures.
type Kind string

const (
	// ValidationError is bad input, always fixable by the caller and never retried.
	ValidationError Kind = "ValidationError"
	// ClusterUnreachable is a transient network, timeout or decoding failure. The whole operation can be retried.
	ClusterUnreachable Kind = "ClusterUnreachable"
	// NoDataNodeAvailable means the cluster has no node with the data role.
	NoDataNodeAvailable Kind = "NoDataNodeAvailable"
	// RelocationTimeout means the primaries did not reach the target node in time, twice.
	RelocationTimeout Kind = "RelocationTimeout"
	// ShrinkFailed is a failure of the shrink call itself. It requires operator intervention.
	ShrinkFailed Kind = "ShrinkFailed"
	// VerificationFailed means the shrunk index is missing or did not become available in time.
	VerificationFailed Kind = "VerificationFailed"
	// Cancelled means the caller gave up before the shrink call was issued.
	Cancelled Kind = "Cancelled"
	// IndexAbsent means the source index does not exist.
	IndexAbsent Kind = "IndexAbsent"
)

// Error is a failure of the shrink orchestration. Causes are only attached at construction
// so a chain of errors is always finite.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// NewError returns an error of the given kind wrapping cause, which may be nil.
func NewError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause.Error())
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the kind of the outermost shrink error in the chain of err, or an empty kind.
func KindOf(err error) Kind {
	var shrinkErr *Error
	if errors.As(err, &shrinkErr) {
		return shrinkErr.Kind
	}
	return ""
}

// IsKind returns true if err is a shrink error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// clusterError classifies an error returned by a cluster call made before the shrink call.
// Missing indices are reported as IndexAbsent, caller cancellation as Cancelled and anything else
// as ClusterUnreachable, since nothing irreversible happened yet.
func clusterError(ctx context.Context, err error, format string, args ...any) *Error {
	switch {
	case ctx.Err() != nil:
		return NewError(Cancelled, context.Cause(ctx), format, args...)
	case esclient.IsNotFound(err):
		return NewError(IndexAbsent, err, format, args...)
	default:
		return NewError(ClusterUnreachable, err, format, args...)
	}
}
