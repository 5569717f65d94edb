// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
)

var catShardsColumns = []string{"index", "shard", "prirep", "state", "id", "node"}

type defaultClient struct {
	es             *elasticsearch.Client
	transport      *http.Transport
	endpoint       string
	requestTimeout time.Duration
}

var _ Client = &defaultClient{}

// Close idle connections in the underlying http client.
// Should be called once this client is not used anymore.
func (c *defaultClient) Close() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

type apiCall func(ctx context.Context) (*esapi.Response, error)

type responseHandler func(ctx context.Context, response *esapi.Response) error

// defaultResponseHandler returns Elasticsearch API-level error responses as errors.
func defaultResponseHandler(ctx context.Context, response *esapi.Response) error {
	if response.IsError() {
		return newAPIError(ctx, response)
	}
	return nil
}

// decodeJSON returns the API error in the response if it is an error or decodes the response body into v.
func decodeJSON(v any) responseHandler {
	return func(ctx context.Context, response *esapi.Response) error {
		if response.IsError() {
			return newAPIError(ctx, response)
		}
		return json.NewDecoder(response.Body).Decode(v)
	}
}

// perform runs call bounded by the request timeout and passes the response to handler.
// The response body is always closed before returning.
func (c *defaultClient) perform(ctx context.Context, operation string, call apiCall, handler responseHandler) error {
	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = DefaultReqTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := call(ctx)
	if err != nil {
		return errors.Wrapf(err, "elasticsearch client failed to %s", operation)
	}
	if response.Body != nil {
		defer response.Body.Close()
	}
	if handler == nil {
		handler = defaultResponseHandler
	}
	if err := handler(ctx, response); err != nil {
		return errors.Wrapf(err, "elasticsearch client failed to %s", operation)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func (c *defaultClient) GetClusterInfo(ctx context.Context) (Info, error) {
	var info Info
	err := c.perform(ctx, "get cluster info", func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Info(c.es.Info.WithContext(ctx))
	}, decodeJSON(&info))
	return info, err
}

func (c *defaultClient) GetNodesStats(ctx context.Context) (NodesStats, error) {
	var stats NodesStats
	err := c.perform(ctx, "get nodes stats", func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Nodes.Stats(
			c.es.Nodes.Stats.WithContext(ctx),
			c.es.Nodes.Stats.WithMetric("fs"),
		)
	}, decodeJSON(&stats))
	return stats, err
}

func (c *defaultClient) putIndexSettings(ctx context.Context, operation, index string, settings any) error {
	body, err := jsonBody(settings)
	if err != nil {
		return err
	}
	return c.perform(ctx, operation, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.PutSettings(
			body,
			c.es.Indices.PutSettings.WithContext(ctx),
			c.es.Indices.PutSettings.WithIndex(index),
		)
	}, nil)
}

func (c *defaultClient) SetIndexReadOnly(ctx context.Context, index string) error {
	blocked := true
	return c.putIndexSettings(ctx, "block writes on "+index, index, WriteBlockSettings{BlocksWrite: &blocked})
}

func (c *defaultClient) SetIndexWritable(ctx context.Context, index string) error {
	return c.putIndexSettings(ctx, "remove write block on "+index, index, WriteBlockSettings{})
}

func (c *defaultClient) RequestShardRelocation(ctx context.Context, index, nodeID string) error {
	return c.putIndexSettings(ctx, "require allocation of "+index, index, AllocationRequireSettings{RequireID: &nodeID})
}

func (c *defaultClient) getShards(ctx context.Context, index string) (Shards, error) {
	var shards Shards
	err := c.perform(ctx, "list shards of "+index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Cat.Shards(
			c.es.Cat.Shards.WithContext(ctx),
			c.es.Cat.Shards.WithIndex(index),
			c.es.Cat.Shards.WithFormat("json"),
			c.es.Cat.Shards.WithH(catShardsColumns...),
		)
	}, decodeJSON(&shards))
	return shards, err
}

func (c *defaultClient) GetRelocationStatus(ctx context.Context, index, nodeID string) (RelocationStatus, error) {
	shards, err := c.getShards(ctx, index)
	if err != nil {
		return RelocationStatus{}, err
	}
	return shards.RelocationStatus(nodeID), nil
}

func (c *defaultClient) ShrinkIndex(ctx context.Context, source, target string) error {
	body, err := jsonBody(ShrinkRequest{Settings: ShrinkSettings{NumberOfShards: 1}})
	if err != nil {
		return err
	}
	return c.perform(ctx, "shrink "+source+" into "+target, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Shrink(
			source,
			target,
			c.es.Indices.Shrink.WithContext(ctx),
			c.es.Indices.Shrink.WithBody(body),
		)
	}, nil)
}

func (c *defaultClient) IndexExists(ctx context.Context, index string) (bool, error) {
	var exists bool
	err := c.perform(ctx, "check existence of "+index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Indices.Exists(
			[]string{index},
			c.es.Indices.Exists.WithContext(ctx),
		)
	}, func(ctx context.Context, response *esapi.Response) error {
		switch {
		case response.StatusCode == http.StatusNotFound:
			exists = false
			return nil
		case response.IsError():
			return newAPIError(ctx, response)
		default:
			exists = true
			return nil
		}
	})
	return exists, err
}

func (c *defaultClient) GetIndexHealth(ctx context.Context, index string) (Health, error) {
	var health Health
	err := c.perform(ctx, "get health of "+index, func(ctx context.Context) (*esapi.Response, error) {
		return c.es.Cluster.Health(
			c.es.Cluster.Health.WithContext(ctx),
			c.es.Cluster.Health.WithIndex(index),
		)
	}, decodeJSON(&health))
	return health, err
}
