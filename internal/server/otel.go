// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// OTLP protocol values, see
// https://opentelemetry.io/docs/languages/sdk-configuration/otlp-exporter/#protocol-configuration
const (
	protocolGRPC         = "grpc"
	protocolHTTPJSON     = "http/json"
	protocolHTTPProtobuf = "http/protobuf"

	otlpProtocolEnv        = "OTEL_EXPORTER_OTLP_PROTOCOL"
	otlpLogsProtocolEnv    = "OTEL_EXPORTER_OTLP_LOGS_PROTOCOL"
	otlpMetricsProtocolEnv = "OTEL_EXPORTER_OTLP_METRICS_PROTOCOL"
	otlpTracesProtocolEnv  = "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"
)

var (
	metricInterval         = 1 * time.Minute
	runtimeMetricsInterval = 15 * time.Second
	traceBatchTimeout      = 5 * time.Second
)

// otlpProtocol resolves the OTLP protocol for a signal, the
// signal-specific env var wins over the generic one.
func otlpProtocol(signalEnv string) string {
	if proto := os.Getenv(signalEnv); proto != "" {
		return proto
	}

	return os.Getenv(otlpProtocolEnv)
}

func isHTTPProtocol(proto string) bool {
	return proto == protocolHTTPJSON || proto == protocolHTTPProtobuf
}

func errMisconfiguredProtocol(signalEnv string) error {
	return fmt.Errorf("unset or misconfigured OTLP transport, please set the %s or %s env var", otlpProtocolEnv, signalEnv)
}

// setupOTelSDK bootstraps the OpenTelemetry pipeline.
// If it does not return an error, make sure to call shutdown for proper cleanup.
func setupOTelSDK(
	ctx context.Context,
	opts *ServeOptions,
) (func(context.Context) error, error) {
	var (
		err           error
		shutdownFuncs []func(context.Context) error
	)

	// shutdown calls cleanup functions registered via shutdownFuncs.
	// The errors from the calls are joined.
	// Each registered cleanup will be invoked once.
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}

		shutdownFuncs = nil

		return err
	}

	// If OTel is not enabled, return early.
	if !opts.OtelEnable {
		return shutdown, err
	}

	// handleErr calls shutdown for cleanup and makes sure that all errors are returned.
	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(newPropagator())

	res, err := newResource(opts)
	if err != nil {
		handleErr(err)

		return shutdown, err
	}

	if opts.OtelEnableTracer {
		tracerProvider, err := newTraceProvider(res, opts)
		if err != nil {
			handleErr(err)

			return shutdown, err
		}

		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	if opts.OtelEnableMetrics {
		meterProvider, err := newMeterProvider(res, opts)
		if err != nil {
			handleErr(err)

			return shutdown, err
		}

		shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
		otel.SetMeterProvider(meterProvider)
	}

	if opts.OtelEnableLogger {
		loggerProvider, err := newLoggerProvider(res, opts)
		if err != nil {
			handleErr(err)

			return shutdown, err
		}

		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)
	}

	return shutdown, err
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTraceProvider(
	res *resource.Resource,
	opts *ServeOptions,
) (*trace.TracerProvider, error) {
	tracerProviderOpts := []trace.TracerProviderOption{
		trace.WithResource(res),
	}

	proto := otlpProtocol(otlpTracesProtocolEnv)

	switch {
	case isHTTPProtocol(proto):
		httpTraceExporter, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		tracerProviderOpts = append(
			tracerProviderOpts,
			trace.WithBatcher(httpTraceExporter, trace.WithBatchTimeout(traceBatchTimeout)),
		)
	case proto == protocolGRPC:
		grpcTraceExporter, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		tracerProviderOpts = append(
			tracerProviderOpts,
			trace.WithBatcher(grpcTraceExporter, trace.WithBatchTimeout(traceBatchTimeout)),
		)
	case !opts.OtelDebug:
		return nil, errMisconfiguredProtocol(otlpTracesProtocolEnv)
	}

	// If debug is enabled, also export traces via stdout.
	if opts.OtelDebug {
		stdTraceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}

		tracerProviderOpts = append(
			tracerProviderOpts,
			trace.WithBatcher(stdTraceExporter, trace.WithBatchTimeout(traceBatchTimeout)),
		)
	}

	return trace.NewTracerProvider(tracerProviderOpts...), nil
}

func newMeterProvider(
	res *resource.Resource,
	opts *ServeOptions,
) (*metric.MeterProvider, error) {
	var exporter metric.Exporter

	metricProviderOpts := []metric.Option{
		metric.WithResource(res),
	}

	proto := otlpProtocol(otlpMetricsProtocolEnv)

	switch {
	case isHTTPProtocol(proto):
		httpMetricExporter, err := otlpmetrichttp.New(
			context.Background(),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		exporter = httpMetricExporter
	case proto == protocolGRPC:
		grpcMetricExporter, err := otlpmetricgrpc.New(
			context.Background(),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		exporter = grpcMetricExporter
	case !opts.OtelDebug:
		return nil, errMisconfiguredProtocol(otlpMetricsProtocolEnv)
	}

	if exporter != nil {
		metricProviderOpts = append(metricProviderOpts, metric.WithReader(
			metric.NewPeriodicReader(exporter,
				metric.WithInterval(metricInterval),
				metric.WithProducer(runtime.NewProducer()),
			)))
	}

	// If debug is enabled, also export metrics via stdout.
	if opts.OtelDebug {
		stdMetricExporter, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}

		metricProviderOpts = append(metricProviderOpts, metric.WithReader(
			metric.NewPeriodicReader(stdMetricExporter,
				metric.WithInterval(metricInterval),
				metric.WithProducer(runtime.NewProducer()),
			)))
	}

	meterProvider := metric.NewMeterProvider(metricProviderOpts...)

	// Start Go runtime metric collection.
	err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(runtimeMetricsInterval))
	if err != nil {
		return nil, err
	}

	return meterProvider, nil
}

func newLoggerProvider(
	res *resource.Resource,
	opts *ServeOptions,
) (*sdklog.LoggerProvider, error) {
	loggerProviderOpts := []sdklog.LoggerProviderOption{
		sdklog.WithResource(res),
	}

	proto := otlpProtocol(otlpLogsProtocolEnv)

	switch {
	case isHTTPProtocol(proto):
		httpLogExporter, err := otlploghttp.New(
			context.Background(),
			otlploghttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		loggerProviderOpts = append(
			loggerProviderOpts,
			sdklog.WithProcessor(sdklog.NewBatchProcessor(httpLogExporter)),
		)
	case proto == protocolGRPC:
		grpcLogExporter, err := otlploggrpc.New(
			context.Background(),
			otlploggrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		loggerProviderOpts = append(
			loggerProviderOpts,
			sdklog.WithProcessor(sdklog.NewBatchProcessor(grpcLogExporter)),
		)
	case !opts.OtelDebug:
		return nil, errMisconfiguredProtocol(otlpLogsProtocolEnv)
	}

	// If debug is enabled, also export logs via stdout.
	if opts.OtelDebug {
		stdLogExporter, err := stdoutlog.New()
		if err != nil {
			return nil, err
		}

		loggerProviderOpts = append(
			loggerProviderOpts,
			sdklog.WithProcessor(sdklog.NewBatchProcessor(stdLogExporter)),
		)
	}

	return sdklog.NewLoggerProvider(loggerProviderOpts...), nil
}

func newResource(opts *ServeOptions) (*resource.Resource, error) {
	hostName, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			resource.Default().SchemaURL(),
			semconv.ServiceNameKey.String(opts.Name),
			semconv.ServiceVersionKey.String(versioninfo.Short()),
			semconv.TelemetrySDKLanguageGo,
			semconv.HostNameKey.String(hostName),
			semconv.ProcessPIDKey.Int64(int64(os.Getpid())),
		),
	)
}
