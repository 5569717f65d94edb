// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

const (
	ConfigFlag                          = "config"
	DebugHTTPListenFlag                 = "debug-http-listen"
	ElasticsearchCAFileFlag             = "elasticsearch-ca-file"
	ElasticsearchInsecureSkipVerifyFlag = "elasticsearch-insecure-skip-verify"
	ElasticsearchPasswordFlag           = "elasticsearch-password"
	ElasticsearchURLFlag                = "elasticsearch-url"
	ElasticsearchUsernameFlag           = "elasticsearch-username"
	EnableTracingFlag                   = "enable-tracing"
	HTTPListenFlag                      = "http-listen"
	MetricsPortFlag                     = "metrics-port"
	RelocationPollInitialIntervalFlag   = "relocation-poll-initial-interval"
	RelocationPollMaxIntervalFlag       = "relocation-poll-max-interval"
	RelocationTimeoutFlag               = "relocation-timeout"
	RequestTimeoutFlag                  = "request-timeout"
	RollbackOnCancelFlag                = "rollback-on-cancel"
	ShrunkIndexSuffixFlag               = "shrunk-index-suffix"
	VerificationTimeoutFlag             = "verification-timeout"

	// EnvPrefix is prepended to flag names to form environment variable names, e.g. TSO_ELASTICSEARCH_URL.
	EnvPrefix = "TSO"
)
