// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"io"
	"net/http"
	"strings"
)

const mockEndpoint = "http://example.com"

type RoundTripFunc func(req *http.Request) *http.Response

// RoundTrip answers with the response built by f. Responses are marked as coming from Elasticsearch
// so that they pass the product check of the official client.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	res := f(req)
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	res.Header.Set("X-Elastic-Product", "Elasticsearch")
	if res.Body == nil {
		res.Body = http.NoBody
	}
	return res, nil
}

// NewMockClient returns a client sending every request to fn.
func NewMockClient(fn RoundTripFunc) Client {
	return NewMockClientWithUser(UserAuth{}, fn)
}

// NewMockClientWithUser returns a client authenticating as u and sending every request to fn.
func NewMockClientWithUser(u UserAuth, fn RoundTripFunc) Client {
	es, err := newOfficialClient(mockEndpoint, u, fn)
	if err != nil {
		// the configuration is static, this cannot fail
		panic(err)
	}
	return &defaultClient{
		es:             es,
		endpoint:       mockEndpoint,
		requestTimeout: DefaultReqTimeout,
	}
}

func NewMockResponse(statusCode int, r *http.Request, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    r,
	}
}
