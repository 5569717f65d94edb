// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"

	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

// ClusterNode is a node of the cluster as seen by one target selection.
type ClusterNode struct {
	ID         string
	Name       string
	IsDataNode bool
	// FreeBytes is the free space summed over all data paths of the node.
	FreeBytes int64
}

// NodeSelector picks the data node with the most free disk space as shrink target.
// Node statistics are fetched again on every selection.
type NodeSelector struct {
	client esclient.NodesStatsGetter
}

func NewNodeSelector(c esclient.NodesStatsGetter) *NodeSelector {
	return &NodeSelector{client: c}
}

// SelectTargetNode returns the data node with the most free space. Among several nodes with the same
// free space, any of them can be returned.
func (s *NodeSelector) SelectTargetNode(ctx context.Context) (ClusterNode, error) {
	ctx, end := tracing.StartSpan(ctx, "select_target_node")
	defer end()

	stats, err := s.client.GetNodesStats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ClusterNode{}, NewError(Cancelled, context.Cause(ctx), "node selection interrupted")
		}
		return ClusterNode{}, NewError(ClusterUnreachable, err, "failed to retrieve nodes stats")
	}

	target, found := maxFreeDataNode(clusterNodes(stats))
	if !found {
		return ClusterNode{}, NewError(NoDataNodeAvailable, nil, "no node with the %q role among %d nodes", esclient.DataRole, len(stats.Nodes))
	}
	tracing.LoggerFromContext(ctx).WithName("node-selector").V(1).Info("Selected shrink target node",
		"node.id", target.ID, "node.name", target.Name, "node.free_bytes", target.FreeBytes)
	return target, nil
}

func clusterNodes(stats esclient.NodesStats) []ClusterNode {
	nodes := make([]ClusterNode, 0, len(stats.Nodes))
	for id, n := range stats.Nodes {
		nodes = append(nodes, ClusterNode{
			ID:         id,
			Name:       n.Name,
			IsDataNode: n.IsDataNode(),
			FreeBytes:  n.FreeInBytes(),
		})
	}
	return nodes
}

func maxFreeDataNode(nodes []ClusterNode) (ClusterNode, bool) {
	var target ClusterNode
	found := false
	for _, n := range nodes {
		if !n.IsDataNode {
			continue
		}
		if !found || n.FreeBytes > target.FreeBytes {
			target = n
			found = true
		}
	}
	return target, found
}
