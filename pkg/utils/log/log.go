// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package log

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"go.elastic.co/apm/module/apmzap/v2"
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	klog "k8s.io/klog/v2"
	crlog "sigs.k8s.io/controller-runtime/pkg/log"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/elastic/timeseries-optimizer/pkg/about"
	"github.com/elastic/timeseries-optimizer/pkg/dev"
)

const (
	EcsVersion = "1.6.0"
	// EcsServiceType is reported as service.type and used as the APM service name.
	EcsServiceType = "timeseries-optimizer"
	FlagName       = "log-verbosity"
)

// Log is the process wide logger. Packages derive their own with Log.WithName.
var Log = crlog.Log

// BindFlags adds the verbosity flag shared by every command.
func BindFlags(flags *pflag.FlagSet) {
	flags.Int(FlagName, 0, "Verbosity level of logs (-2=Error, -1=Warn, 0=Info, >0=Debug)")
}

type logBuilder struct {
	tracer    *apm.Tracer
	verbosity *int
}

// Option configures InitLogger.
type Option func(*logBuilder)

// WithVerbosity sets the verbosity as given by --log-verbosity: -2 logs errors only, -1 adds warnings,
// 0 adds info, 1 adds debug, which includes shrink job state transitions and Elasticsearch round trips.
// Values below -2 are ignored.
func WithVerbosity(verbosity int) Option {
	return func(lb *logBuilder) {
		lb.verbosity = &verbosity
	}
}

// WithTracer correlates log lines with the APM transaction of the shrink request.
func WithTracer(tracer *apm.Tracer) Option {
	return func(lb *logBuilder) {
		lb.tracer = tracer
	}
}

// InitLogger replaces the process wide logger. It also receives what apimachinery and controller-runtime
// report through klog.
func InitLogger(opts ...Option) {
	lb := &logBuilder{}
	for _, opt := range opts {
		opt(lb)
	}
	level := determineLogLevel(lb.verbosity)
	setKlogVerbosity(level.Level())

	logger := newLogger(level, lb.tracer)
	crlog.SetLogger(logger)
	klog.SetLogger(logger.WithName("klog"))
}

// setKlogVerbosity raises the klog verbosity along with levels below debug.
func setKlogVerbosity(level zapcore.Level) {
	if level >= zap.DebugLevel {
		return
	}
	flagset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(flagset)
	_ = flagset.Set("v", strconv.Itoa(int(level)*-1))
}

func newLogger(level zap.AtomicLevel, tracer *apm.Tracer) logr.Logger {
	encoder, fields := newEncoder()
	fields = append(fields, zap.String("service.version", about.GetBuildInfo().VersionString()))
	opts := []zap.Option{zap.Fields(fields...)}
	if tracer != nil {
		opts = append(opts, zap.WrapCore((&apmzap.Core{Tracer: tracer}).WrapCore))
	}

	stackTraceLevel := zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	return crzap.New(func(o *crzap.Options) {
		o.DestWriter = os.Stderr
		o.Development = dev.Enabled
		o.Level = &level
		o.StacktraceLevel = &stackTraceLevel
		o.Encoder = encoder
		o.ZapOpts = opts
	})
}

// newEncoder returns a colored console encoder in development mode, ECS JSON otherwise.
func newEncoder() (zapcore.Encoder, []zap.Field) {
	if dev.Enabled {
		conf := zap.NewDevelopmentEncoderConfig()
		conf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(conf), nil
	}
	conf := zap.NewProductionEncoderConfig()
	conf.MessageKey = "message"
	conf.TimeKey = "@timestamp"
	conf.LevelKey = "log.level"
	conf.NameKey = "log.logger"
	conf.StacktraceKey = "error.stack_trace"
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(conf), []zap.Field{
		zap.String("service.type", EcsServiceType),
		zap.String("ecs.version", EcsVersion),
	}
}

func determineLogLevel(v *int) zap.AtomicLevel {
	switch {
	case v != nil && *v > -3:
		return zap.NewAtomicLevelAt(zapcore.Level(*v * -1))
	case dev.Enabled:
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// FromContext returns the request scoped logger stored in ctx, or Log.
func FromContext(ctx context.Context, keysAndValues ...any) logr.Logger {
	return crlog.FromContext(ctx, keysAndValues...)
}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return crlog.IntoContext(ctx, logger)
}
