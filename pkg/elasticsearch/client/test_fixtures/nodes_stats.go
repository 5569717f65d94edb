// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package fixtures

const (
	// NodesStatsSample has one master-only node and two data nodes, the second one with two data paths.
	NodesStatsSample = `
{
  "_nodes": {
    "total": 3,
    "successful": 3,
    "failed": 0
  },
  "cluster_name": "timeseries",
  "nodes": {
    "iXqjbgPYThO-6S7reL5_HA": {
      "timestamp": 1697700000000,
      "name": "master-0",
      "transport_address": "10.0.0.1:9300",
      "host": "10.0.0.1",
      "ip": "10.0.0.1:9300",
      "roles": ["master"],
      "fs": {
        "timestamp": 1697700000000,
        "total": {
          "total_in_bytes": 10737418240,
          "free_in_bytes": 9663676416,
          "available_in_bytes": 9663676416
        },
        "data": [
          {
            "path": "/usr/share/elasticsearch/data/nodes/0",
            "mount": "/usr/share/elasticsearch/data (/dev/sda1)",
            "type": "ext4",
            "total_in_bytes": 10737418240,
            "free_in_bytes": 9663676416,
            "available_in_bytes": 9663676416
          }
        ]
      }
    },
    "Rt-o5-ZBQaq-Nkhhy0p7JA": {
      "timestamp": 1697700000000,
      "name": "data-0",
      "transport_address": "10.0.0.2:9300",
      "host": "10.0.0.2",
      "ip": "10.0.0.2:9300",
      "roles": ["data", "ingest"],
      "fs": {
        "timestamp": 1697700000000,
        "total": {
          "total_in_bytes": 107374182400,
          "free_in_bytes": 53687091200,
          "available_in_bytes": 53687091200
        },
        "data": [
          {
            "path": "/usr/share/elasticsearch/data/nodes/0",
            "mount": "/usr/share/elasticsearch/data (/dev/sdb1)",
            "type": "ext4",
            "total_in_bytes": 107374182400,
            "free_in_bytes": 53687091200,
            "available_in_bytes": 53687091200
          }
        ]
      }
    },
    "8DqGuLtrSNyMfE2EfKNDgg": {
      "timestamp": 1697700000000,
      "name": "data-1",
      "transport_address": "10.0.0.3:9300",
      "host": "10.0.0.3",
      "ip": "10.0.0.3:9300",
      "roles": ["data", "master", "ingest"],
      "fs": {
        "timestamp": 1697700000000,
        "total": {
          "total_in_bytes": 214748364800,
          "free_in_bytes": 64424509440,
          "available_in_bytes": 64424509440
        },
        "data": [
          {
            "path": "/data/a",
            "mount": "/data/a (/dev/sdc1)",
            "type": "ext4",
            "total_in_bytes": 107374182400,
            "free_in_bytes": 32212254720,
            "available_in_bytes": 32212254720
          },
          {
            "path": "/data/b",
            "mount": "/data/b (/dev/sdd1)",
            "type": "ext4",
            "total_in_bytes": 107374182400,
            "free_in_bytes": 32212254720,
            "available_in_bytes": 32212254720
          }
        ]
      }
    }
  }
}
`
)
