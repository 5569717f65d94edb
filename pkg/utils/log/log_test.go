// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package log

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/elastic/timeseries-optimizer/pkg/dev"
)

func Test_determineLogLevel(t *testing.T) {
	intPtr := func(i int) *int { return &i }
	tests := []struct {
		name      string
		verbosity *int
		devMode   bool
		want      zapcore.Level
	}{
		{name: "default is info", want: zapcore.InfoLevel},
		{name: "development defaults to debug", devMode: true, want: zapcore.DebugLevel},
		{name: "verbosity 1 is debug", verbosity: intPtr(1), want: zapcore.DebugLevel},
		{name: "verbosity -1 is warn", verbosity: intPtr(-1), want: zapcore.WarnLevel},
		{name: "verbosity -2 is error", verbosity: intPtr(-2), want: zapcore.ErrorLevel},
		{name: "explicit verbosity wins over development mode", verbosity: intPtr(0), devMode: true, want: zapcore.InfoLevel},
		{name: "out of range verbosity falls back to info", verbosity: intPtr(-5), want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev.Enabled = tt.devMode
			defer func() { dev.Enabled = false }()
			assert.Equal(t, tt.want, determineLogLevel(tt.verbosity).Level())
		})
	}
}

func TestFromContext(t *testing.T) {
	logger := logr.Discard().WithName("test")
	ctx := IntoContext(context.Background(), logger)
	assert.Equal(t, logger, FromContext(ctx))
}

func Test_newEncoder(t *testing.T) {
	tests := []struct {
		name       string
		devMode    bool
		wantFields []string
	}{
		{name: "production logs ECS fields", wantFields: []string{"service.type", "ecs.version"}},
		{name: "development logs no ECS fields", devMode: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev.Enabled = tt.devMode
			defer func() { dev.Enabled = false }()
			encoder, fields := newEncoder()
			assert.NotNil(t, encoder)
			keys := make([]string, 0, len(fields))
			for _, f := range fields {
				keys = append(keys, f.Key)
			}
			assert.ElementsMatch(t, tt.wantFields, keys)
		})
	}
}
