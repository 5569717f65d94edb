// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package dev

// Enabled switches the optimizer to development mode: console logging at debug level and
// a pprof listener next to the API server.
var Enabled = false
