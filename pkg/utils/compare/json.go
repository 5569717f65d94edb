// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package compare

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// JSONEqual compares the JSON representation of have to the expected JSON document want.
func JSONEqual(t *testing.T, want string, have any) {
	t.Helper()

	h, err := json.Marshal(have)
	require.NoError(t, err)

	require.JSONEq(t, want, string(h))
}
