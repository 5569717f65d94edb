// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

// APIError is a non 2xx response from the Elasticsearch API
type APIError struct {
	StatusCode    int
	ErrorResponse ErrorResponse
}

// newAPIError converts an HTTP response into an API error, attempting to parse the body to include the details about the error.
func newAPIError(ctx context.Context, response *esapi.Response) error {
	log := ulog.FromContext(ctx)
	apiError := &APIError{
		StatusCode: response.StatusCode,
	}
	if response.Body == nil {
		return apiError
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		// We were not able to read the body, log this I/O error and return the API error with the status.
		log.Error(err, "Cannot read Elasticsearch error response body")
		return apiError
	}
	// Reset the response body to the original unread state so that callers can read it again.
	response.Body = io.NopCloser(bytes.NewBuffer(body))

	if len(body) == 0 {
		return apiError
	}
	var errorResponse ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil {
		// Only log at the debug level since it is expected to not be able to parse all types of errors.
		log.V(1).Info("Unexpected Elasticsearch error response", "http.response.body.content", string(body))
		return apiError
	}
	apiError.ErrorResponse = errorResponse
	return apiError
}

// Error implements the error interface.
func (a *APIError) Error() string {
	reason := "unknown"
	if a.ErrorResponse.Error.Reason != "" {
		reason = a.ErrorResponse.Error.Reason
	}
	if a.ErrorResponse.Error.Type != "" {
		return fmt.Sprintf("%d %s: %s: %s", a.StatusCode, http.StatusText(a.StatusCode), a.ErrorResponse.Error.Type, reason)
	}
	return fmt.Sprintf("%d %s: %s", a.StatusCode, http.StatusText(a.StatusCode), reason)
}

// IsNotFound checks whether the error was an HTTP 404 error.
func IsNotFound(err error) bool {
	return isHTTPError(err, http.StatusNotFound)
}

// IsAPIError checks whether Elasticsearch answered the request, as opposed to a transport failure.
func IsAPIError(err error) bool {
	apiErr := new(APIError)
	return errors.As(err, &apiErr)
}

func isHTTPError(err error, statusCode int) bool {
	apiErr := new(APIError)
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
