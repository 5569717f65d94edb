// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/validation/field"

	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

const (
	DefaultRequestTimeout                = 30 * time.Second
	DefaultRelocationTimeout             = 30 * time.Minute
	DefaultRelocationPollInitialInterval = 2 * time.Second
	DefaultRelocationPollMaxInterval     = 30 * time.Second
	DefaultVerificationTimeout           = 5 * time.Minute
	DefaultShrunkIndexSuffix             = "-shrink"
	DefaultHTTPListen                    = ":8080"
	DefaultDebugHTTPListen               = "localhost:6060"
)

// Elasticsearch holds the connection settings of the target cluster.
type Elasticsearch struct {
	URL                string
	Username           string
	Password           string
	CAFile             string
	InsecureSkipVerify bool
}

// Config is the process configuration. It is built once at start up and passed by value afterwards.
type Config struct {
	Elasticsearch Elasticsearch
	// RequestTimeout bounds every single call made to the cluster.
	RequestTimeout time.Duration
	// RelocationTimeout bounds one relocation attempt, polling included.
	RelocationTimeout             time.Duration
	RelocationPollInitialInterval time.Duration
	RelocationPollMaxInterval     time.Duration
	VerificationTimeout           time.Duration
	ShrunkIndexSuffix             string
	RollbackOnCancel              bool

	HTTPListen      string
	DebugHTTPListen string
	MetricsPort     int
	EnableTracing   bool
	LogVerbosity    int
}

// Default returns a Config with every optional setting at its default value.
func Default() Config {
	return Config{
		RequestTimeout:                DefaultRequestTimeout,
		RelocationTimeout:             DefaultRelocationTimeout,
		RelocationPollInitialInterval: DefaultRelocationPollInitialInterval,
		RelocationPollMaxInterval:     DefaultRelocationPollMaxInterval,
		VerificationTimeout:           DefaultVerificationTimeout,
		ShrunkIndexSuffix:             DefaultShrunkIndexSuffix,
		HTTPListen:                    DefaultHTTPListen,
		DebugHTTPListen:               DefaultDebugHTTPListen,
	}
}

// BindClusterFlags registers the flags shared by every command talking to the cluster.
func BindClusterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String(ConfigFlag, "", "Path to a YAML file holding any of the flags below")
	flags.String(ElasticsearchURLFlag, "", "URL of the Elasticsearch cluster, e.g. https://localhost:9200")
	flags.String(ElasticsearchUsernameFlag, "", "Username used to authenticate against Elasticsearch")
	flags.String(ElasticsearchPasswordFlag, "", "Password used to authenticate against Elasticsearch")
	flags.String(ElasticsearchCAFileFlag, "", "Path to a PEM encoded CA bundle used to verify the Elasticsearch certificate")
	flags.Bool(ElasticsearchInsecureSkipVerifyFlag, false, "Skip verification of the Elasticsearch certificate (development only)")
	flags.Duration(RequestTimeoutFlag, d.RequestTimeout, "Timeout of a single call to Elasticsearch")
	flags.Duration(RelocationTimeoutFlag, d.RelocationTimeout, "Maximum time to wait for shards to relocate to the target node, per attempt")
	flags.Duration(RelocationPollInitialIntervalFlag, d.RelocationPollInitialInterval, "Initial interval between two relocation status checks")
	flags.Duration(RelocationPollMaxIntervalFlag, d.RelocationPollMaxInterval, "Maximum interval between two relocation status checks")
	flags.Duration(VerificationTimeoutFlag, d.VerificationTimeout, "Maximum time to wait for the shrunk index to become healthy")
	flags.String(ShrunkIndexSuffixFlag, d.ShrunkIndexSuffix, "Suffix appended to the source index name to name the shrunk index")
	flags.Bool(RollbackOnCancelFlag, false, "Restore write access on the source index when a shrink is cancelled before shrinking started")
	flags.Bool(EnableTracingFlag, false, "Enable APM tracing. Endpoint, token etc are to be configured via ELASTIC_APM_* environment variables")
	ulog.BindFlags(flags)
}

// BindServerFlags registers the flags of the serve command.
func BindServerFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String(HTTPListenFlag, d.HTTPListen, "Listen address of the API server")
	flags.String(DebugHTTPListenFlag, d.DebugHTTPListen, "Listen address for debug HTTP server (only available in development mode)")
	flags.Int(MetricsPortFlag, 0, "Port to use for exposing metrics on a dedicated listener (0 serves them on the API listener)")
}

// InitViper binds flags and environment variables into v and reads the optional config file.
func InitViper(v *viper.Viper, flags *pflag.FlagSet) error {
	// enable using dashed notation in flags and underscores in env
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	if path := v.GetString(ConfigFlag); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("while reading config file %s: %w", path, err)
		}
	}
	return nil
}

// FromViper builds a Config out of the values known to v and validates it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Elasticsearch: Elasticsearch{
			URL:                v.GetString(ElasticsearchURLFlag),
			Username:           v.GetString(ElasticsearchUsernameFlag),
			Password:           v.GetString(ElasticsearchPasswordFlag),
			CAFile:             v.GetString(ElasticsearchCAFileFlag),
			InsecureSkipVerify: v.GetBool(ElasticsearchInsecureSkipVerifyFlag),
		},
		RequestTimeout:                v.GetDuration(RequestTimeoutFlag),
		RelocationTimeout:             v.GetDuration(RelocationTimeoutFlag),
		RelocationPollInitialInterval: v.GetDuration(RelocationPollInitialIntervalFlag),
		RelocationPollMaxInterval:     v.GetDuration(RelocationPollMaxIntervalFlag),
		VerificationTimeout:           v.GetDuration(VerificationTimeoutFlag),
		ShrunkIndexSuffix:             v.GetString(ShrunkIndexSuffixFlag),
		RollbackOnCancel:              v.GetBool(RollbackOnCancelFlag),
		HTTPListen:                    v.GetString(HTTPListenFlag),
		DebugHTTPListen:               v.GetString(DebugHTTPListenFlag),
		MetricsPort:                   v.GetInt(MetricsPortFlag),
		EnableTracing:                 v.GetBool(EnableTracingFlag),
		LogVerbosity:                  v.GetInt(ulog.FlagName),
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, errs.ToAggregate()
	}
	return cfg, nil
}

// Validate checks the settings needed to talk to the cluster and to run shrink jobs.
func (c Config) Validate() field.ErrorList {
	var errs field.ErrorList
	if c.Elasticsearch.URL == "" {
		errs = append(errs, field.Required(field.NewPath(ElasticsearchURLFlag), "an Elasticsearch URL is required"))
	} else if u, err := url.Parse(c.Elasticsearch.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, field.Invalid(field.NewPath(ElasticsearchURLFlag), c.Elasticsearch.URL, "must be an absolute URL"))
	}
	for _, d := range []struct {
		flag  string
		value time.Duration
	}{
		{RequestTimeoutFlag, c.RequestTimeout},
		{RelocationTimeoutFlag, c.RelocationTimeout},
		{RelocationPollInitialIntervalFlag, c.RelocationPollInitialInterval},
		{RelocationPollMaxIntervalFlag, c.RelocationPollMaxInterval},
		{VerificationTimeoutFlag, c.VerificationTimeout},
	} {
		if d.value <= 0 {
			errs = append(errs, field.Invalid(field.NewPath(d.flag), d.value.String(), "must be a positive duration"))
		}
	}
	if c.RelocationPollMaxInterval < c.RelocationPollInitialInterval {
		errs = append(errs, field.Invalid(field.NewPath(RelocationPollMaxIntervalFlag), c.RelocationPollMaxInterval.String(),
			"must not be lower than "+RelocationPollInitialIntervalFlag))
	}
	if c.ShrunkIndexSuffix == "" {
		errs = append(errs, field.Required(field.NewPath(ShrunkIndexSuffixFlag), "the shrunk index must not reuse the source index name"))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, field.Invalid(field.NewPath(MetricsPortFlag), c.MetricsPort, "must be a valid port or 0"))
	}
	return errs
}
