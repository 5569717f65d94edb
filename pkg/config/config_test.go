// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindClusterFlags(flags)
	BindServerFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, InitViper(v, newFlagSet(t, "--elasticsearch-url=http://localhost:9200")))
	cfg, err := FromViper(v)
	require.NoError(t, err)

	want := Default()
	want.Elasticsearch.URL = "http://localhost:9200"
	assert.Equal(t, want, cfg)
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("TSO_ELASTICSEARCH_URL", "https://es.example.com:9200")
	t.Setenv("TSO_RELOCATION_TIMEOUT", "5m")
	t.Setenv("TSO_ROLLBACK_ON_CANCEL", "true")

	v := viper.New()
	require.NoError(t, InitViper(v, newFlagSet(t)))
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "https://es.example.com:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, 5*time.Minute, cfg.RelocationTimeout)
	assert.True(t, cfg.RollbackOnCancel)
}

func TestFromViper_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
elasticsearch-url: http://es:9200
elasticsearch-username: elastic
shrunk-index-suffix: -small
`), 0o600))

	v := viper.New()
	require.NoError(t, InitViper(v, newFlagSet(t, "--config="+path)))
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "http://es:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "elastic", cfg.Elasticsearch.Username)
	assert.Equal(t, "-small", cfg.ShrunkIndexSuffix)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Elasticsearch.URL = "http://localhost:9200"
		return cfg
	}
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:       "missing url",
			mutate:     func(c *Config) { c.Elasticsearch.URL = "" },
			wantFields: []string{ElasticsearchURLFlag},
		},
		{
			name:       "relative url",
			mutate:     func(c *Config) { c.Elasticsearch.URL = "localhost" },
			wantFields: []string{ElasticsearchURLFlag},
		},
		{
			name: "zero timeouts",
			mutate: func(c *Config) {
				c.RequestTimeout = 0
				c.VerificationTimeout = -time.Second
			},
			wantFields: []string{RequestTimeoutFlag, VerificationTimeoutFlag},
		},
		{
			name: "max poll interval below initial",
			mutate: func(c *Config) {
				c.RelocationPollInitialInterval = time.Minute
				c.RelocationPollMaxInterval = time.Second
			},
			wantFields: []string{RelocationPollMaxIntervalFlag},
		},
		{
			name:       "empty suffix",
			mutate:     func(c *Config) { c.ShrunkIndexSuffix = "" },
			wantFields: []string{ShrunkIndexSuffixFlag},
		},
		{
			name:       "invalid metrics port",
			mutate:     func(c *Config) { c.MetricsPort = 70000 },
			wantFields: []string{MetricsPortFlag},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			errs := cfg.Validate()
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
