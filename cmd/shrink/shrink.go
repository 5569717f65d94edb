// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/elastic/timeseries-optimizer/cmd/setup"
	shrinkv1 "github.com/elastic/timeseries-optimizer/pkg/apis/shrink/v1"
	"github.com/elastic/timeseries-optimizer/pkg/config"
	shrinkctl "github.com/elastic/timeseries-optimizer/pkg/controller/shrink"
	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

const (
	indexFlag       = "index"
	indexPrefixFlag = "index-prefix"
	startDateFlag   = "start-date"
	endDateFlag     = "end-date"
	outputFlag      = "output"

	outputJSON = "json"
	outputYAML = "yaml"
)

// ErrOperationFailed is returned when the shrink operation reports a failure. The response has already been printed.
var ErrOperationFailed = errors.New("shrink operation failed")

// Command returns the cobra command shrinking a single index.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shrink",
		Short:   "Shrink a single index to one primary shard",
		Example: "  timeseries-optimizer shrink --elasticsearch-url https://localhost:9200 --index logs-2024.01.01",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, _ := cmd.Flags().GetString(indexFlag)
			return run(cmd, func(ctx context.Context, c *shrinkctl.Controller) (any, bool) {
				resp := c.Shrink(ctx, &shrinkv1.ShrinkRequest{IndexName: index})
				return resp, resp.Operation.Failed
			})
		},
	}
	bindFlags(cmd.Flags())
	cmd.Flags().String(indexFlag, "", "Name of the index to shrink")
	return cmd
}

// ByDateCommand returns the cobra command shrinking the daily indices of a date range.
func ByDateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shrink-by-date",
		Short:   "Shrink the daily indices <prefix>-YYYY.MM.DD of a past date range",
		Example: "  timeseries-optimizer shrink-by-date --index-prefix logs --start-date 2024-01-01 --end-date 2024-01-07",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := byDateRequest(cmd.Flags())
			return run(cmd, func(ctx context.Context, c *shrinkctl.Controller) (any, bool) {
				resp := c.ShrinkByDate(ctx, req)
				return resp, resp.Operation.Failed
			})
		},
	}
	bindFlags(cmd.Flags())
	cmd.Flags().String(indexPrefixFlag, "", "Prefix of the daily indices to shrink")
	cmd.Flags().String(startDateFlag, "", "First day to shrink, formatted as YYYY-MM-DD")
	cmd.Flags().String(endDateFlag, "", "Last day to shrink, formatted as YYYY-MM-DD")
	return cmd
}

func bindFlags(flags *pflag.FlagSet) {
	config.BindClusterFlags(flags)
	flags.StringP(outputFlag, "o", outputJSON, "Output format of the response, json or yaml")
}

func byDateRequest(flags *pflag.FlagSet) *shrinkv1.ShrinkByDateRequest {
	prefix, _ := flags.GetString(indexPrefixFlag)
	start, _ := flags.GetString(startDateFlag)
	end, _ := flags.GetString(endDateFlag)
	return &shrinkv1.ShrinkByDateRequest{IndexPrefix: prefix, StartDate: start, EndDate: end}
}

type operation func(ctx context.Context, c *shrinkctl.Controller) (response any, failed bool)

func run(cmd *cobra.Command, op operation) error {
	output, _ := cmd.Flags().GetString(outputFlag)
	if output != outputJSON && output != outputYAML {
		return fmt.Errorf("unsupported output format %q, expected %s or %s", output, outputJSON, outputYAML)
	}

	cfg, tracer, err := setup.Load(cmd)
	if err != nil {
		return err
	}
	if tracer != nil {
		defer tracer.Close()
	}

	controller, esClient, err := shrinkctl.NewControllerFromConfig(cfg, tracer)
	if err != nil {
		ulog.Log.Error(err, "Cannot create the Elasticsearch client")
		return err
	}
	defer esClient.Close()

	resp, failed := op(signals.SetupSignalHandler(), controller)
	if err := writeResponse(os.Stdout, output, resp); err != nil {
		return err
	}
	if failed {
		return ErrOperationFailed
	}
	return nil
}

func writeResponse(w io.Writer, output string, v any) error {
	if output == outputYAML {
		return printYAML(w, v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML goes through the JSON representation to keep the API field names.
func printYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
