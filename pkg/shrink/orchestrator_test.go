// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
)

func TestOrchestrator_Shrink(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(c *fakeCluster)
		index          string
		wantKind       Kind
		wantJob        bool
		wantStatsCalls int
	}{
		{
			name:           "shrinks an existing index",
			index:          testIndex,
			wantJob:        true,
			wantStatsCalls: 1,
		},
		{
			name:     "absent index fails before node selection",
			index:    "logs-2024.01.03",
			wantKind: IndexAbsent,
		},
		{
			name:     "existence check fails",
			index:    testIndex,
			setup:    func(c *fakeCluster) { c.existsErr = errConnRefused },
			wantKind: ClusterUnreachable,
		},
		{
			name:  "no data node",
			index: testIndex,
			setup: func(c *fakeCluster) {
				c.nodes = nodesStats(node{id: "master", roles: []string{"master"}, free: []int64{10}})
			},
			wantKind:       NoDataNodeAvailable,
			wantStatsCalls: 1,
		},
		{
			name:           "shrink failure is reported with the job",
			index:          testIndex,
			setup:          func(c *fakeCluster) { c.shrinkErrs[testIndex] = &esclient.APIError{StatusCode: 400} },
			wantKind:       ShrinkFailed,
			wantJob:        true,
			wantStatsCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := newFakeCluster(testIndex)
			if tt.setup != nil {
				tt.setup(cluster)
			}
			job, err := NewOrchestrator(cluster, testOptions(), fakeClock()).Shrink(context.Background(), tt.index)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, StateCompleted, job.State)
				assert.Equal(t, "data-0", job.TargetNodeID)
				assert.Equal(t, testIndex+"-shrink", job.TargetIndexName)
			}
			assert.Equal(t, tt.wantJob, job != nil)
			assert.Equal(t, tt.wantStatsCalls, cluster.Calls("GetNodesStats"))
		})
	}
}

func TestOrchestrator_Execute(t *testing.T) {
	plan := Plan("logs", date(2024, 1, 1), date(2024, 1, 3))

	t.Run("a failed day does not stop the batch", func(t *testing.T) {
		cluster := newFakeCluster("logs-2024.01.01", "logs-2024.01.02", "logs-2024.01.03")
		cluster.shrinkErrs["logs-2024.01.02"] = &esclient.APIError{StatusCode: 400}

		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(context.Background(), plan)

		require.NoError(t, result.Err)
		assert.True(t, result.Failed)
		assert.Equal(t, []Outcome{OutcomeSucceeded, OutcomeFailed, OutcomeSucceeded}, outcomes(result))
		assert.Equal(t, ShrinkFailed, KindOf(result.Results[1].Err))
		assert.Equal(t, 1, cluster.Calls("GetNodesStats"))
		assert.Equal(t, 3, cluster.Calls("ShrinkIndex"))
		for i, day := range result.Results {
			assert.Equal(t, plan.DailyJobs[i].IndexName, day.IndexName)
			assert.Equal(t, plan.DailyJobs[i].Date, day.Date)
		}
	})

	t.Run("absent days are skipped", func(t *testing.T) {
		cluster := newFakeCluster("logs-2024.01.01", "logs-2024.01.03")

		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(context.Background(), plan)

		assert.False(t, result.Failed)
		assert.Equal(t, []Outcome{OutcomeSucceeded, OutcomeSkipped, OutcomeSucceeded}, outcomes(result))
		assert.Nil(t, result.Results[1].Job)
		assert.NoError(t, result.Summary())
		assert.Equal(t, 1, cluster.Calls("GetNodesStats"))
		assert.Equal(t, 2, cluster.Calls("ShrinkIndex"))
	})

	t.Run("every job targets the node selected for the batch", func(t *testing.T) {
		cluster := newFakeCluster("logs-2024.01.01", "logs-2024.01.02", "logs-2024.01.03")
		cluster.nodes = nodesStats(
			node{id: "small", roles: []string{"data"}, free: []int64{1}},
			node{id: "large", roles: []string{"data"}, free: []int64{1000}},
		)

		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(context.Background(), plan)

		for _, day := range result.Results {
			require.NotNil(t, day.Job)
			assert.Equal(t, "large", day.Job.TargetNodeID)
		}
	})

	t.Run("node selection failure fails the batch without results", func(t *testing.T) {
		cluster := newFakeCluster("logs-2024.01.01")
		cluster.nodesErr = errConnRefused

		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(context.Background(), plan)

		assert.True(t, result.Failed)
		assert.Equal(t, ClusterUnreachable, KindOf(result.Err))
		assert.Empty(t, result.Results)
		assert.Equal(t, 0, cluster.Calls("IndexExists"))
	})

	t.Run("remaining days are cancelled", func(t *testing.T) {
		cluster := newFakeCluster("logs-2024.01.01", "logs-2024.01.02", "logs-2024.01.03")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cluster.onShrink = cancel

		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(ctx, plan)

		assert.True(t, result.Failed)
		assert.Equal(t, []Outcome{OutcomeSucceeded, OutcomeCancelled, OutcomeCancelled}, outcomes(result))
		assert.Equal(t, Cancelled, KindOf(result.Results[2].Err))
		assert.Equal(t, 1, cluster.Calls("ShrinkIndex"))
		assert.False(t, cluster.IsReadOnly("logs-2024.01.02"))
	})

	t.Run("empty plan", func(t *testing.T) {
		cluster := newFakeCluster()
		result := NewOrchestrator(cluster, testOptions(), fakeClock()).Execute(context.Background(), BatchPlan{})
		assert.False(t, result.Failed)
		assert.Equal(t, 0, cluster.Calls("GetNodesStats"))
	})
}

func outcomes(result BatchResult) []Outcome {
	var out []Outcome
	for _, day := range result.Results {
		out = append(out, day.Outcome)
	}
	return out
}
