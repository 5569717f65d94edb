// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	namespace       = "timeseries_optimizer"
	shrinkSubsystem = "shrink"

	OutcomeLabel = "outcome"
	StateLabel   = "state"
)

var (
	// ShrinkJobsTotal counts finished shrink jobs by outcome (succeeded, skipped, failed, cancelled).
	ShrinkJobsTotal = registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: shrinkSubsystem,
		Name:      "jobs_total",
		Help:      "Total number of shrink jobs by outcome",
	}, []string{OutcomeLabel}))

	// ShrinkJobDuration observes the wall time of finished shrink jobs.
	ShrinkJobDuration = registerHistogram(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: shrinkSubsystem,
		Name:      "job_duration_seconds",
		Help:      "Duration of shrink jobs from locking to a terminal state",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600},
	}, []string{OutcomeLabel}))

	// RelocationAttemptsTotal counts shard relocation requests issued to the cluster.
	RelocationAttemptsTotal = registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: shrinkSubsystem,
		Name:      "relocation_attempts_total",
		Help:      "Total number of shard relocation requests",
	}, nil))

	// JobsInProgress reports the number of running shrink jobs per workflow state.
	JobsInProgress = registerGauge(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: shrinkSubsystem,
		Name:      "jobs_in_progress",
		Help:      "Number of shrink jobs currently in a given workflow state",
	}, []string{StateLabel}))
)

// Handler serves the metrics registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(crmetrics.Registry, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](collector T) T {
	err := crmetrics.Registry.Register(collector)
	if err != nil {
		existsErr := new(prometheus.AlreadyRegisteredError)
		if errors.As(err, existsErr) {
			return existsErr.ExistingCollector.(T) //nolint:forcetypeassert
		}

		panic(fmt.Errorf("failed to register collector: %w", err))
	}

	return collector
}

func registerGauge(gauge *prometheus.GaugeVec) *prometheus.GaugeVec {
	return register(gauge)
}

func registerCounter(counter *prometheus.CounterVec) *prometheus.CounterVec {
	return register(counter)
}

func registerHistogram(histogram *prometheus.HistogramVec) *prometheus.HistogramVec {
	return register(histogram)
}
