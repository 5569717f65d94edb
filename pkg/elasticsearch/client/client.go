// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.elastic.co/apm/module/apmelasticsearch/v2"

	"github.com/elastic/timeseries-optimizer/pkg/config"
)

// DefaultReqTimeout is the default timeout used when performing HTTP calls against Elasticsearch
const DefaultReqTimeout = config.DefaultRequestTimeout

// UserAuth is authentication information for the Elasticsearch client.
type UserAuth struct {
	Name     string
	Password string
}

// NodesStatsGetter captures the Elasticsearch API calls needed to pick a shrink target node.
type NodesStatsGetter interface {
	// GetNodesStats calls the _nodes/stats/fs api to return a map(nodeID -> NodeStats)
	GetNodesStats(ctx context.Context) (NodesStats, error)
}

// IndexAdmin captures the index administration calls of the shrink workflow.
type IndexAdmin interface {
	// SetIndexReadOnly blocks write operations on the index.
	SetIndexReadOnly(ctx context.Context, index string) error
	// SetIndexWritable removes the write block set by SetIndexReadOnly.
	SetIndexWritable(ctx context.Context, index string) error
	// RequestShardRelocation requires all shards of the index to be allocated on the given node.
	RequestShardRelocation(ctx context.Context, index, nodeID string) error
	// GetRelocationStatus reports whether every primary shard of the index is started on the given node.
	GetRelocationStatus(ctx context.Context, index, nodeID string) (RelocationStatus, error)
	// ShrinkIndex shrinks source into a new single shard index named target.
	ShrinkIndex(ctx context.Context, source, target string) error
	// IndexExists returns true if the index exists, false if Elasticsearch answers with a 404.
	IndexExists(ctx context.Context, index string) (bool, error)
	// GetIndexHealth calls the _cluster/health api for a single index.
	GetIndexHealth(ctx context.Context, index string) (Health, error)
}

// Client captures the information needed to interact with an Elasticsearch cluster via HTTP
type Client interface {
	NodesStatsGetter
	IndexAdmin
	// Close idle connections in the underlying http client.
	Close()
	// GetClusterInfo get the cluster information at /
	GetClusterInfo(ctx context.Context) (Info, error)
}

// NewElasticsearchClient creates a new client for the cluster described in cfg.
// The request timeout in cfg bounds every call made through the client.
func NewElasticsearchClient(cfg config.Config) (Client, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.Elasticsearch.InsecureSkipVerify, //nolint:gosec
	}
	if cfg.Elasticsearch.CAFile != "" {
		pem, err := os.ReadFile(cfg.Elasticsearch.CAFile)
		if err != nil {
			return nil, fmt.Errorf("while reading Elasticsearch CA file: %w", err)
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no PEM certificate found in %s", cfg.Elasticsearch.CAFile)
		}
		tlsConfig.RootCAs = certPool
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConfig,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	es, err := newOfficialClient(
		cfg.Elasticsearch.URL,
		UserAuth{Name: cfg.Elasticsearch.Username, Password: cfg.Elasticsearch.Password},
		apmelasticsearch.WrapRoundTripper(transport),
	)
	if err != nil {
		return nil, err
	}
	return &defaultClient{
		es:             es,
		transport:      transport,
		endpoint:       cfg.Elasticsearch.URL,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

func newOfficialClient(url string, auth UserAuth, transport http.RoundTripper) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  auth.Name,
		Password:  auth.Password,
		Transport: transport,
		Logger:    &esLogger{},
		// retries are decided by the shrink workflow, never by the transport
		DisableRetry: true,
	})
}
