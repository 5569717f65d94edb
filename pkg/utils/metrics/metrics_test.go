// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterReturnsExistingCollector(t *testing.T) {
	again := registerCounter(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: shrinkSubsystem,
		Name:      "jobs_total",
		Help:      "Total number of shrink jobs by outcome",
	}, []string{OutcomeLabel}))
	assert.Same(t, ShrinkJobsTotal, again)
}

func TestHandler(t *testing.T) {
	ShrinkJobsTotal.WithLabelValues("succeeded").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(ShrinkJobsTotal.WithLabelValues("succeeded")), float64(1))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "timeseries_optimizer_shrink_jobs_total"))
}
