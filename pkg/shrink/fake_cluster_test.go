// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
)

var (
	errConnRefused = errors.New("dial tcp 10.0.0.1:9200: connect: connection refused")
	fakeNow        = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

func fakeClock() *clocktesting.FakePassiveClock {
	return clocktesting.NewFakePassiveClock(fakeNow)
}

// testOptions polls every millisecond and gives up after a few dozen milliseconds.
func testOptions() Options {
	return Options{
		ShrunkIndexSuffix:             "-shrink",
		RelocationTimeout:             30 * time.Millisecond,
		RelocationPollInitialInterval: time.Millisecond,
		RelocationPollMaxInterval:     2 * time.Millisecond,
		VerificationTimeout:           30 * time.Millisecond,
	}
}

// fakeCluster is an in-memory cluster counting the calls made to each method.
type fakeCluster struct {
	mu sync.Mutex

	nodes    esclient.NodesStats
	nodesErr error
	// indices are the existing indices, true if the index is read-only.
	indices map[string]bool
	// relocatedAfter is the number of relocation requests after which the relocation is reported done.
	// Zero means relocation never completes.
	relocatedAfter int
	relocRequests  int
	lockErr        error
	statusErr      error
	shrinkErrs     map[string]error
	existsErr      error
	health         esclient.HealthStatus

	// hooks run before the fake answers, with the fake unlocked
	onRelocationStatus func()
	onShrink           func()

	calls map[string]int
}

func newFakeCluster(indices ...string) *fakeCluster {
	f := &fakeCluster{
		nodes:          nodesStats(node{id: "data-0", roles: []string{"data"}, free: []int64{100}}),
		indices:        map[string]bool{},
		relocatedAfter: 1,
		shrinkErrs:     map[string]error{},
		health:         esclient.HealthGreen,
		calls:          map[string]int{},
	}
	for _, index := range indices {
		f.indices[index] = false
	}
	return f
}

type node struct {
	id    string
	roles []string
	free  []int64
}

func nodesStats(nodes ...node) esclient.NodesStats {
	stats := esclient.NodesStats{Nodes: map[string]esclient.NodeStats{}}
	for _, n := range nodes {
		ns := esclient.NodeStats{Name: n.id, Roles: n.roles}
		for i, free := range n.free {
			ns.FS.Data = append(ns.FS.Data, esclient.DataPathStats{Path: fmt.Sprintf("/data/%d", i), FreeInBytes: free})
		}
		stats.Nodes[n.id] = ns
	}
	return stats
}

func (f *fakeCluster) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeCluster) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeCluster) IsReadOnly(index string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indices[index]
}

func (f *fakeCluster) Exists(index string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.indices[index]
	return exists
}

func (f *fakeCluster) GetNodesStats(_ context.Context) (esclient.NodesStats, error) {
	f.count("GetNodesStats")
	return f.nodes, f.nodesErr
}

func (f *fakeCluster) SetIndexReadOnly(_ context.Context, index string) error {
	f.count("SetIndexReadOnly")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return f.lockErr
	}
	if _, exists := f.indices[index]; !exists {
		return &esclient.APIError{StatusCode: 404}
	}
	f.indices[index] = true
	return nil
}

func (f *fakeCluster) SetIndexWritable(_ context.Context, index string) error {
	f.count("SetIndexWritable")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indices[index] = false
	return nil
}

func (f *fakeCluster) RequestShardRelocation(_ context.Context, _, _ string) error {
	f.count("RequestShardRelocation")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relocRequests++
	return nil
}

func (f *fakeCluster) GetRelocationStatus(ctx context.Context, _, _ string) (esclient.RelocationStatus, error) {
	f.count("GetRelocationStatus")
	if f.onRelocationStatus != nil {
		f.onRelocationStatus()
	}
	if ctx.Err() != nil {
		return esclient.RelocationStatus{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return esclient.RelocationStatus{}, f.statusErr
	}
	done := f.relocatedAfter > 0 && f.relocRequests >= f.relocatedAfter
	if done {
		return esclient.RelocationStatus{Done: true, Primaries: 3, OnTarget: 3}, nil
	}
	return esclient.RelocationStatus{Primaries: 3, OnTarget: 1, Relocating: 2}, nil
}

func (f *fakeCluster) ShrinkIndex(_ context.Context, source, target string) error {
	f.count("ShrinkIndex")
	if f.onShrink != nil {
		f.onShrink()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.shrinkErrs[source]; err != nil {
		return err
	}
	f.indices[target] = false
	return nil
}

func (f *fakeCluster) IndexExists(_ context.Context, index string) (bool, error) {
	f.count("IndexExists")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, exists := f.indices[index]
	return exists, nil
}

func (f *fakeCluster) GetIndexHealth(_ context.Context, _ string) (esclient.Health, error) {
	f.count("GetIndexHealth")
	f.mu.Lock()
	defer f.mu.Unlock()
	return esclient.Health{Status: f.health}, nil
}

var _ ClusterClient = &fakeCluster{}
