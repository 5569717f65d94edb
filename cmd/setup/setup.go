// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package setup builds the configuration, logger and tracer shared by all commands.
package setup

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.elastic.co/apm/v2"

	"github.com/elastic/timeseries-optimizer/pkg/config"
	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

// ServiceName identifies the process in logs and traces.
const ServiceName = ulog.EcsServiceType

// Load reads the configuration of cmd from its flags, the environment and the optional config file,
// then initializes the global logger. The returned tracer is nil unless tracing is enabled.
func Load(cmd *cobra.Command) (config.Config, *apm.Tracer, error) {
	v := viper.New()
	if err := config.InitViper(v, cmd.Flags()); err != nil {
		ulog.InitLogger()
		return config.Config{}, nil, err
	}
	cfg, err := config.FromViper(v)

	var tracer *apm.Tracer
	if cfg.EnableTracing {
		tracer = tracing.NewTracer(ServiceName)
	}
	ulog.InitLogger(ulog.WithVerbosity(cfg.LogVerbosity), ulog.WithTracer(tracer))
	if err != nil {
		ulog.Log.Error(err, "Invalid configuration")
		return cfg, tracer, err
	}
	return cfg, tracer, nil
}
