// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package fixtures

const (
	// RelocatingShards is a _cat/shards listing of an index whose primaries are moving to 8DqGuLtrSNyMfE2EfKNDgg.
	RelocatingShards = `[
  {"index": "logs-2024.01.02", "shard": "0", "prirep": "p", "state": "STARTED", "id": "8DqGuLtrSNyMfE2EfKNDgg", "node": "data-1"},
  {"index": "logs-2024.01.02", "shard": "1", "prirep": "p", "state": "RELOCATING", "id": "Rt-o5-ZBQaq-Nkhhy0p7JA", "node": "data-0 -> 10.0.0.3 8DqGuLtrSNyMfE2EfKNDgg data-1"},
  {"index": "logs-2024.01.02", "shard": "0", "prirep": "r", "state": "UNASSIGNED", "id": null, "node": null},
  {"index": "logs-2024.01.02", "shard": "1", "prirep": "r", "state": "UNASSIGNED", "id": null, "node": null}
]`

	// RelocatedShards is the same index once every primary has reached 8DqGuLtrSNyMfE2EfKNDgg.
	RelocatedShards = `[
  {"index": "logs-2024.01.02", "shard": "0", "prirep": "p", "state": "STARTED", "id": "8DqGuLtrSNyMfE2EfKNDgg", "node": "data-1"},
  {"index": "logs-2024.01.02", "shard": "1", "prirep": "p", "state": "STARTED", "id": "8DqGuLtrSNyMfE2EfKNDgg", "node": "data-1"},
  {"index": "logs-2024.01.02", "shard": "0", "prirep": "r", "state": "UNASSIGNED", "id": null, "node": null},
  {"index": "logs-2024.01.02", "shard": "1", "prirep": "r", "state": "UNASSIGNED", "id": null, "node": null}
]`

	NoShards = `[]`
)
