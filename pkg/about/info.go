// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package about

import "fmt"

var (
	// these values are set at build time through ldflags
	version   = "0.0.0"
	buildHash = "00000000"
	buildDate = "1970-01-01T00:00:00Z"
	snapshot  = "true"
)

// BuildInfo contains build metadata information.
type BuildInfo struct {
	Version  string `json:"version"`
	Hash     string `json:"build_hash"`
	Date     string `json:"build_date"`
	Snapshot string `json:"build_snapshot"`
}

// GetBuildInfo returns build metadata information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:  version,
		Hash:     buildHash,
		Date:     buildDate,
		Snapshot: snapshot,
	}
}

// VersionString returns the version followed by the build hash.
func (b BuildInfo) VersionString() string {
	return fmt.Sprintf("%s-%s", b.Version, b.Hash)
}
