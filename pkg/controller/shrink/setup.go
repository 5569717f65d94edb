// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package shrink

import (
	"go.elastic.co/apm/v2"
	"k8s.io/utils/clock"

	"github.com/elastic/timeseries-optimizer/pkg/config"
	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	core "github.com/elastic/timeseries-optimizer/pkg/shrink"
)

// NewControllerFromConfig wires a Controller to the cluster described in cfg.
// The returned client must be closed by the caller.
func NewControllerFromConfig(cfg config.Config, tracer *apm.Tracer) (*Controller, esclient.Client, error) {
	c, err := esclient.NewElasticsearchClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	orchestrator := core.NewOrchestrator(c, core.OptionsFromConfig(cfg), clock.RealClock{})
	return NewController(orchestrator, clock.RealClock{}, tracer), c, nil
}
