// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/elastic/timeseries-optimizer/cmd/serve"
	"github.com/elastic/timeseries-optimizer/cmd/shrink"
	"github.com/elastic/timeseries-optimizer/pkg/about"
	"github.com/elastic/timeseries-optimizer/pkg/dev"
)

func main() {
	buildInfo := about.GetBuildInfo()

	rootCmd := &cobra.Command{
		Use:          "timeseries-optimizer",
		Short:        "Shrinks time series indices of an Elasticsearch cluster to a single primary shard",
		Version:      buildInfo.VersionString(),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serve.Command(), shrink.Command(), shrink.ByDateCommand())

	// development mode is only available as a command line flag to avoid accidentally enabling it
	rootCmd.PersistentFlags().BoolVar(&dev.Enabled, "development", false, "turns on development mode")
	_ = rootCmd.PersistentFlags().MarkHidden("development")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
