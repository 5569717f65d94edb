// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"

	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

var log = ulog.Log.WithName("elasticsearch-client")

// esLogger implements elastictransport.Logger using the logr logging infrastructure
type esLogger struct{}

var (
	_ elastictransport.Logger = &esLogger{}
)

// LogRoundTrip should not modify the request or response, except for consuming and closing the body.
// Implementations have to check for nil values in request and response.
func (l *esLogger) LogRoundTrip(
	req *http.Request, res *http.Response, err error, _ time.Time, dur time.Duration,
) error {
	if req == nil {
		return nil
	}
	params := []any{
		"event.duration", dur,
		"url.scheme", req.URL.Scheme,
		"url.domain", req.URL.Hostname(),
		"url.port", req.URL.Port(),
		"url.path", req.URL.Path,
		"url.query", req.URL.RawQuery,
		"http.request.method", req.Method,
	}
	if res != nil {
		params = append(params, "http.response.status_code", res.StatusCode)
	}
	if err != nil {
		log.Error(err, "Elasticsearch HTTP request failed", params...)
		return nil
	}
	log.V(1).Info("Elasticsearch HTTP request", params...)
	return nil
}

// RequestBodyEnabled makes the client pass a copy of request body to the logger.
func (l *esLogger) RequestBodyEnabled() bool {
	return false
}

// ResponseBodyEnabled makes the client pass a copy of response body to the logger.
func (l *esLogger) ResponseBodyEnabled() bool {
	return false
}
