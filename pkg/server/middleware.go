// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

// requestLogger stores a logger carrying the request id in the request context and logs every completed request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		logger := log.WithValues("http.request.id", middleware.GetReqID(r.Context()))
		logger = logger.WithValues(tracing.TraceContextKV(r.Context())...)

		defer func() {
			logger.V(1).Info("Request completed",
				"http.request.method", r.Method,
				"url.path", r.URL.Path,
				"http.response.status_code", ww.Status(),
				"http.response.body.bytes", ww.BytesWritten(),
				"event.duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ulog.IntoContext(r.Context(), logger)))
	})
}
