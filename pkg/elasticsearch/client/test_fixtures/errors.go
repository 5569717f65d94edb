// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package fixtures

const (
	ShrinkErrorSample = `
{
  "error": {
    "root_cause": [
      {
        "type": "illegal_state_exception",
        "reason": "index logs-2024.01.02 must be read-only to resize index. use \"index.blocks.write=true\""
      }
    ],
    "type": "illegal_state_exception",
    "reason": "index logs-2024.01.02 must be read-only to resize index. use \"index.blocks.write=true\""
  },
  "status": 400
}
`
	IndexNotFoundSample = `
{
  "error": {
    "root_cause": [
      {
        "type": "index_not_found_exception",
        "reason": "no such index [logs-2024.01.03]"
      }
    ],
    "type": "index_not_found_exception",
    "reason": "no such index [logs-2024.01.03]"
  },
  "status": 404
}
`
)
