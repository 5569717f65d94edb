// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client/test_fixtures"
)

// requestRecorder collects the method, path and body of every request sent through the mock client.
type requestRecorder struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func recordingRoundTrip(t *testing.T, rec *requestRecorder, statusCode int, responseBody string) RoundTripFunc {
	t.Helper()
	return func(req *http.Request) *http.Response {
		rec.method = req.Method
		rec.path = req.URL.Path
		rec.query = req.URL.RawQuery
		if req.Body != nil {
			data, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			if len(data) > 0 {
				require.NoError(t, json.Unmarshal(data, &rec.body))
			}
		}
		return NewMockResponse(statusCode, req, responseBody)
	}
}

func TestClientSendsExpectedRequests(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c Client) error
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name:       "block writes",
			call:       func(c Client) error { return c.SetIndexReadOnly(context.Background(), "logs-2024.01.02") },
			wantMethod: http.MethodPut,
			wantPath:   "/logs-2024.01.02/_settings",
			wantBody:   map[string]any{"index.blocks.write": true},
		},
		{
			name:       "remove write block",
			call:       func(c Client) error { return c.SetIndexWritable(context.Background(), "logs-2024.01.02") },
			wantMethod: http.MethodPut,
			wantPath:   "/logs-2024.01.02/_settings",
			wantBody:   map[string]any{"index.blocks.write": nil},
		},
		{
			name: "require allocation on a node",
			call: func(c Client) error {
				return c.RequestShardRelocation(context.Background(), "logs-2024.01.02", "8DqGuLtrSNyMfE2EfKNDgg")
			},
			wantMethod: http.MethodPut,
			wantPath:   "/logs-2024.01.02/_settings",
			wantBody:   map[string]any{"index.routing.allocation.require._id": "8DqGuLtrSNyMfE2EfKNDgg"},
		},
		{
			name: "shrink",
			call: func(c Client) error {
				return c.ShrinkIndex(context.Background(), "logs-2024.01.02", "logs-2024.01.02-shrink")
			},
			wantMethod: http.MethodPut,
			wantPath:   "/logs-2024.01.02/_shrink/logs-2024.01.02-shrink",
			wantBody: map[string]any{
				"settings": map[string]any{
					"index.number_of_shards":               float64(1),
					"index.routing.allocation.require._id": nil,
					"index.blocks.write":                   nil,
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &requestRecorder{}
			c := NewMockClient(recordingRoundTrip(t, rec, 200, `{"acknowledged":true}`))
			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.wantMethod, rec.method)
			assert.Equal(t, tt.wantPath, rec.path)
			if diff := deep.Equal(rec.body, tt.wantBody); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestClientGetNodesStats(t *testing.T) {
	rec := &requestRecorder{}
	c := NewMockClient(recordingRoundTrip(t, rec, 200, fixtures.NodesStatsSample))
	stats, err := c.GetNodesStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/_nodes/stats/fs", rec.path)

	require.Len(t, stats.Nodes, 3)
	master := stats.Nodes["iXqjbgPYThO-6S7reL5_HA"]
	assert.False(t, master.IsDataNode())
	data1 := stats.Nodes["8DqGuLtrSNyMfE2EfKNDgg"]
	assert.True(t, data1.IsDataNode())
	assert.Equal(t, "data-1", data1.Name)
	assert.Equal(t, int64(64424509440), data1.FreeInBytes())
}

func TestClientGetRelocationStatus(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     RelocationStatus
	}{
		{
			name:     "relocation in progress",
			response: fixtures.RelocatingShards,
			want:     RelocationStatus{Done: false, Primaries: 2, OnTarget: 1, Relocating: 1},
		},
		{
			name:     "relocation done",
			response: fixtures.RelocatedShards,
			want:     RelocationStatus{Done: true, Primaries: 2, OnTarget: 2},
		},
		{
			name:     "no shards",
			response: fixtures.NoShards,
			want:     RelocationStatus{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &requestRecorder{}
			c := NewMockClient(recordingRoundTrip(t, rec, 200, tt.response))
			got, err := c.GetRelocationStatus(context.Background(), "logs-2024.01.02", "8DqGuLtrSNyMfE2EfKNDgg")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "/_cat/shards/logs-2024.01.02", rec.path)
			assert.Contains(t, rec.query, "format=json")
		})
	}
}

func TestClientIndexExists(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       bool
		wantErr    bool
	}{
		{name: "index exists", statusCode: 200, want: true},
		{name: "index does not exist", statusCode: 404, want: false},
		{name: "server error", statusCode: 500, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &requestRecorder{}
			c := NewMockClient(recordingRoundTrip(t, rec, tt.statusCode, ""))
			got, err := c.IndexExists(context.Background(), "logs-2024.01.02")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsAPIError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, http.MethodHead, rec.method)
			assert.Equal(t, "/logs-2024.01.02", rec.path)
		})
	}
}

func TestClientGetIndexHealth(t *testing.T) {
	rec := &requestRecorder{}
	c := NewMockClient(recordingRoundTrip(t, rec, 200, fixtures.IndexHealthSample))
	health, err := c.GetIndexHealth(context.Background(), "logs-2024.01.02-shrink")
	require.NoError(t, err)
	assert.Equal(t, "/_cluster/health/logs-2024.01.02-shrink", rec.path)
	assert.Equal(t, HealthYellow, health.Status)
	assert.True(t, health.Status.IsAvailable())
	assert.Equal(t, 1, health.UnassignedShards)
}

func TestClientGetClusterInfo(t *testing.T) {
	rec := &requestRecorder{}
	c := NewMockClientWithUser(UserAuth{Name: "elastic", Password: "changeme"}, func(req *http.Request) *http.Response {
		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "elastic", user)
		assert.Equal(t, "changeme", pass)
		return recordingRoundTrip(t, rec, 200, fixtures.InfoSample)(req)
	})
	info, err := c.GetClusterInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "timeseries", info.ClusterName)
	assert.Equal(t, "8.15.1", info.Version.Number)
}

func TestClientAPIErrors(t *testing.T) {
	c := NewMockClient(func(req *http.Request) *http.Response {
		return NewMockResponse(400, req, fixtures.ShrinkErrorSample)
	})
	err := c.ShrinkIndex(context.Background(), "logs-2024.01.02", "logs-2024.01.02-shrink")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "illegal_state_exception", apiErr.ErrorResponse.Error.Type)
	assert.True(t, IsAPIError(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "elasticsearch client failed to shrink logs-2024.01.02 into logs-2024.01.02-shrink")
	assert.Contains(t, err.Error(), "400 Bad Request: illegal_state_exception")

	c = NewMockClient(func(req *http.Request) *http.Response {
		return NewMockResponse(404, req, fixtures.IndexNotFoundSample)
	})
	_, err = c.GetRelocationStatus(context.Background(), "logs-2024.01.03", "node")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "no body",
			err:  &APIError{StatusCode: 503},
			want: "503 Service Unavailable: unknown",
		},
		{
			name: "typed error",
			err: func() *APIError {
				e := &APIError{StatusCode: 409}
				e.ErrorResponse.Error.Type = "resource_already_exists_exception"
				e.ErrorResponse.Error.Reason = "index [logs-2024.01.02-shrink] already exists"
				return e
			}(),
			want: "409 Conflict: resource_already_exists_exception: index [logs-2024.01.02-shrink] already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
