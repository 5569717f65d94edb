// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package client

import (
	"slices"
)

// Info represents the response from /
type Info struct {
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// HealthStatus is the health of a cluster or an index.
type HealthStatus string

const (
	HealthRed    HealthStatus = "red"
	HealthYellow HealthStatus = "yellow"
	HealthGreen  HealthStatus = "green"
)

// IsAvailable is true if all primary shards are assigned.
func (s HealthStatus) IsAvailable() bool {
	return s == HealthGreen || s == HealthYellow
}

// Health represents the response from _cluster/health
type Health struct {
	ClusterName         string       `json:"cluster_name"`
	Status              HealthStatus `json:"status"`
	TimedOut            bool         `json:"timed_out"`
	NumberOfNodes       int          `json:"number_of_nodes"`
	NumberOfDataNodes   int          `json:"number_of_data_nodes"`
	ActivePrimaryShards int          `json:"active_primary_shards"`
	ActiveShards        int          `json:"active_shards"`
	RelocatingShards    int          `json:"relocating_shards"`
	InitializingShards  int          `json:"initializing_shards"`
	UnassignedShards    int          `json:"unassigned_shards"`
}

// DataRole is the node role of nodes holding shard data.
const DataRole = "data"

// NodesStats partially models the response from a request to /_nodes/stats/fs
type NodesStats struct {
	Nodes map[string]NodeStats `json:"nodes"`
}

// NodeStats partially models an Elasticsearch node retrieved from /_nodes/stats/fs
type NodeStats struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	FS    struct {
		Data []DataPathStats `json:"data"`
	} `json:"fs"`
}

// DataPathStats is the file system usage of one data path of a node.
type DataPathStats struct {
	Path             string `json:"path"`
	TotalInBytes     int64  `json:"total_in_bytes"`
	FreeInBytes      int64  `json:"free_in_bytes"`
	AvailableInBytes int64  `json:"available_in_bytes"`
}

// IsDataNode is true if the node has the data role.
func (n NodeStats) IsDataNode() bool {
	return slices.Contains(n.Roles, DataRole)
}

// FreeInBytes sums the free space of every data path of the node.
func (n NodeStats) FreeInBytes() int64 {
	var free int64
	for _, data := range n.FS.Data {
		free += data.FreeInBytes
	}
	return free
}

// These are possible shard states
const (
	STARTED      = "STARTED"
	INITIALIZING = "INITIALIZING"
	RELOCATING   = "RELOCATING"
	UNASSIGNED   = "UNASSIGNED"
)

// ShardType is the type of a shard copy as reported by _cat/shards.
type ShardType string

const (
	Primary ShardType = "p"
	Replica ShardType = "r"
)

// Shards contains the shards of an index as reported by _cat/shards
type Shards []Shard

// Shard partially models a shard copy retrieved from _cat/shards
type Shard struct {
	Index string `json:"index"`
	Shard string `json:"shard"`
	State string `json:"state"`
	// NodeID is the id of the node the shard is allocated to, empty if unassigned.
	NodeID   string    `json:"id"`
	NodeName string    `json:"node"`
	Type     ShardType `json:"prirep"`
}

// IsPrimary is true if the shard copy is the primary.
func (s Shard) IsPrimary() bool {
	return s.Type == Primary
}

// IsRelocating is true if the shard is relocating to another node.
func (s Shard) IsRelocating() bool {
	return s.State == RELOCATING
}

// IsStarted is true if the shard is started on its current node.
func (s Shard) IsStarted() bool {
	return s.State == STARTED
}

// RelocationStatus summarizes the progress of moving the primaries of an index to one node.
type RelocationStatus struct {
	// Done is true when every primary shard is started on the target node.
	Done       bool
	Primaries  int
	OnTarget   int
	Relocating int
}

// RelocationStatus computes the relocation progress of the shards towards nodeID.
func (s Shards) RelocationStatus(nodeID string) RelocationStatus {
	var status RelocationStatus
	for _, shard := range s {
		if !shard.IsPrimary() {
			continue
		}
		status.Primaries++
		if shard.IsRelocating() {
			status.Relocating++
			continue
		}
		if shard.IsStarted() && shard.NodeID == nodeID {
			status.OnTarget++
		}
	}
	status.Done = status.Primaries > 0 && status.OnTarget == status.Primaries
	return status
}

// WriteBlockSettings toggles the write block of an index. A nil value removes the setting.
type WriteBlockSettings struct {
	BlocksWrite *bool `json:"index.blocks.write"`
}

// AllocationRequireSettings pins the shards of an index to the node with the given id.
type AllocationRequireSettings struct {
	RequireID *string `json:"index.routing.allocation.require._id"`
}

// ShrinkRequest is the body of a _shrink request.
type ShrinkRequest struct {
	Settings ShrinkSettings `json:"settings"`
}

// ShrinkSettings are the settings of the shrunk index. The allocation requirement and the write block
// copied from the source index are removed.
type ShrinkSettings struct {
	NumberOfShards int     `json:"index.number_of_shards"`
	RequireID      *string `json:"index.routing.allocation.require._id"`
	BlocksWrite    *bool   `json:"index.blocks.write"`
}

// ErrorResponse is a Elasticsearch error response.
type ErrorResponse struct {
	Status int `json:"status"`
	Error  struct {
		CausedBy struct {
			Reason string `json:"reason"`
			Type   string `json:"type"`
		} `json:"caused_by"`
		Reason    string `json:"reason"`
		Type      string `json:"type"`
		RootCause []struct {
			Reason string `json:"reason"`
			Type   string `json:"type"`
		} `json:"root_cause"`
	} `json:"error"`
}
