package tracing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/zipkin"
	openzipkin "github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/reporter"
	zipkinHTTP "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/trace"

	"github.com/ecombi/dashboard/config"
)

var (
	mu             sync.Mutex
	jaegerExporter *jaeger.Exporter
	zipkinReporter reporter.Reporter
	zipkinExporter *zipkin.Exporter
	promExporter   *prometheus.Exporter
)

// InitTracing configures OpenCensus trace and metrics exporters.
// It is a no-op when tracing is disabled.
func InitTracing(cfg *config.TracingConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	switch strings.ToLower(cfg.TraceExporter) {
	case "", "none":
	case "jaeger":
		exp, err := jaeger.NewExporter(jaeger.Options{
			CollectorEndpoint: cfg.JaegerEndpoint,
			Process: jaeger.Process{
				ServiceName: cfg.ServiceName,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create jaeger exporter: %w", err)
		}
		trace.RegisterExporter(exp)
		jaegerExporter = exp
	case "zipkin":
		endpoint, err := openzipkin.NewEndpoint(cfg.ServiceName, "")
		if err != nil {
			return fmt.Errorf("failed to create zipkin endpoint: %w", err)
		}
		zipkinReporter = zipkinHTTP.NewReporter(cfg.ZipkinEndpoint)
		zipkinExporter = zipkin.NewExporter(zipkinReporter, endpoint)
		trace.RegisterExporter(zipkinExporter)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	for _, name := range strings.Split(cfg.MetricsExporter, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "none":
		case "prometheus":
			exp, err := prometheus.NewExporter(prometheus.Options{
				Namespace: metricsNamespace(cfg.ServiceName),
			})
			if err != nil {
				return fmt.Errorf("failed to create prometheus exporter: %w", err)
			}
			promExporter = exp
		default:
			return fmt.Errorf("unsupported metrics exporter: %s", name)
		}
	}

	return nil
}

// MetricsHandler returns the Prometheus scrape handler, or nil when the
// prometheus exporter is not configured
func MetricsHandler() http.Handler {
	mu.Lock()
	defer mu.Unlock()
	if promExporter == nil {
		return nil
	}
	return promExporter
}

// Shutdown flushes pending spans and releases exporter resources
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if jaegerExporter != nil {
		jaegerExporter.Flush()
		trace.UnregisterExporter(jaegerExporter)
		jaegerExporter = nil
	}
	if zipkinExporter != nil {
		trace.UnregisterExporter(zipkinExporter)
		zipkinExporter = nil
	}
	if zipkinReporter != nil {
		err := zipkinReporter.Close()
		zipkinReporter = nil
		if err != nil {
			return fmt.Errorf("failed to close zipkin reporter: %w", err)
		}
	}
	promExporter = nil
	return nil
}

// StartServiceSpan starts a span named "<service>.<method>"
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, service+"."+method)
}

// EndSpan ends the span, recording err as the span status when non-nil
func EndSpan(span *trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
	}
	span.End()
}

// AddAttribute attaches a typed attribute to the span stored in ctx
func AddAttribute(ctx context.Context, key string, value interface{}) {
	span := trace.FromContext(ctx)
	if span == nil {
		return
	}
	switch v := value.(type) {
	case string:
		span.AddAttributes(trace.StringAttribute(key, v))
	case int:
		span.AddAttributes(trace.Int64Attribute(key, int64(v)))
	case int64:
		span.AddAttributes(trace.Int64Attribute(key, v))
	case float64:
		span.AddAttributes(trace.Float64Attribute(key, v))
	case bool:
		span.AddAttributes(trace.BoolAttribute(key, v))
	default:
		span.AddAttributes(trace.StringAttribute(key, fmt.Sprint(v)))
	}
}

// MarkSpanError flags the span stored in ctx as failed
func MarkSpanError(ctx context.Context, err error) {
	span := trace.FromContext(ctx)
	if span == nil || err == nil {
		return
	}
	span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
}

func metricsNamespace(serviceName string) string {
	ns := strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(strings.ToLower(serviceName))
	if ns == "" {
		return "dashboard"
	}
	return ns
}
