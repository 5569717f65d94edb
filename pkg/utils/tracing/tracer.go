// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package tracing

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.elastic.co/apm/v2"

	"github.com/elastic/timeseries-optimizer/pkg/about"
	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

const (
	SpanTypeApp string = "app"
	// TxTypeRequest is the transaction type of API and CLI orchestration calls.
	TxTypeRequest string = "request"
)

var log = ulog.Log.WithName("tracing")

// NewTracer returns a new APM tracer with the logger in log configured.
// Endpoint, token etc are read from the standard ELASTIC_APM_* environment variables.
func NewTracer(serviceName string) *apm.Tracer {
	build := about.GetBuildInfo()
	tracer, err := apm.NewTracer(serviceName, build.VersionString())
	if err != nil {
		// don't fail the application because tracing fails
		log.Error(err, "failed to created tracer for "+serviceName)
		return nil
	}
	tracer.SetLogger(NewLogAdapter(log))
	return tracer
}

// NewTransaction starts a new transaction and returns a child of ctx carrying it.
// A nil tracer means tracing is turned off.
func NewTransaction(ctx context.Context, t *apm.Tracer, name, txType string) (*apm.Transaction, context.Context) {
	if t == nil {
		return nil, ctx
	}
	tx := t.StartTransaction(name, txType)
	return tx, apm.ContextWithTransaction(ctx, tx)
}

// StartOperation starts a span named name when ctx already carries a transaction, such as one started by the
// HTTP instrumentation, and a new transaction otherwise. The returned function ends what was started.
func StartOperation(ctx context.Context, t *apm.Tracer, name, txType string) (context.Context, func()) {
	if apm.TransactionFromContext(ctx) != nil {
		return StartSpan(ctx, name)
	}
	tx, ctx := NewTransaction(ctx, t, name, txType)
	return ctx, func() { EndTransaction(tx) }
}

// EndTransaction nil safe version of APM agents tx.End()
func EndTransaction(tx *apm.Transaction) {
	if tx != nil {
		tx.End()
	}
}

// StartSpan starts a span named name if ctx carries a transaction. Returns the updated context and
// a function that, when run, closes the span.
func StartSpan(ctx context.Context, name string) (context.Context, func()) {
	if apm.TransactionFromContext(ctx) == nil {
		// no transaction in the context implicates disabled tracing
		return ctx, func() {}
	}
	span, newCtx := apm.StartSpan(ctx, name, SpanTypeApp)
	return newCtx, span.End
}

// CaptureError wraps APM agent func of the same name and auto-sends, returning the original error.
func CaptureError(ctx context.Context, err error) error {
	if ctx != nil && err != nil {
		if capturedErr := apm.CaptureError(ctx, err); capturedErr != nil {
			capturedErr.Send()
		}
	}
	return err
}

// NewLogAdapter returns an implementation of the log interface expected by the APM agent.
func NewLogAdapter(log logr.Logger) apm.Logger {
	return &logAdapter{log: log}
}

type logAdapter struct {
	log logr.Logger
}

func (l *logAdapter) Errorf(format string, args ...any) {
	l.log.Error(errors.Errorf(format, args...), "")
}

func (l *logAdapter) Warningf(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Debugf(format string, args ...any) {
	l.log.V(1).Info(fmt.Sprintf(format, args...))
}

var _ apm.Logger = &logAdapter{}

// TraceContextKV returns logger key-values for the current trace context.
func TraceContextKV(ctx context.Context) []any {
	tx := apm.TransactionFromContext(ctx)
	if tx == nil {
		return nil
	}

	traceCtx := tx.TraceContext()
	fields := []any{"trace.id", traceCtx.Trace, "transaction.id", traceCtx.Span}

	if span := apm.SpanFromContext(ctx); span != nil {
		fields = append(fields, "span.id", span.TraceContext().Span)
	}

	return fields
}

// LoggerFromContext returns a logger from the context with tracing information added.
func LoggerFromContext(ctx context.Context) logr.Logger {
	return ulog.FromContext(ctx).WithValues(TraceContextKV(ctx)...)
}
