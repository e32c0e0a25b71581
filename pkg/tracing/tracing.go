// Package tracing installs the tracers used by the services: OpenCensus
// spans, emitted by the Pub/Sub client, are exported to Zipkin, and
// OpenTracing spans, emitted by the eventhorizon tracing middlewares, are
// reported to Jaeger.
package tracing

import (
	"fmt"
	"io"

	"contrib.go.opencensus.io/exporter/zipkin"
	"github.com/cockroachdb/errors"
	"github.com/opentracing/opentracing-go"
	openzipkin "github.com/openzipkin/zipkin-go"
	zipkinHTTP "github.com/openzipkin/zipkin-go/reporter/http"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.opencensus.io/trace"
)

// ZipkinEndpoint returns the span collection URL of the Zipkin at host.
func ZipkinEndpoint(host string) string {
	return fmt.Sprintf("http://%s:9411/api/v2/spans", host)
}

// JaegerAgent returns the UDP address of the Jaeger agent at host.
func JaegerAgent(host string) string {
	return fmt.Sprintf("%s:6831", host)
}

// InitOpenCensus exports every OpenCensus span of the process to Zipkin.
func InitOpenCensus(host, service string) error {
	localEndpoint, err := openzipkin.NewEndpoint(service, "localhost:0")
	if err != nil {
		return errors.Wrap(err, "could not create zipkin endpoint")
	}
	reporter := zipkinHTTP.NewReporter(ZipkinEndpoint(host))
	trace.RegisterExporter(zipkin.NewExporter(reporter, localEndpoint))
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	return nil
}

// NewTracer sets a Jaeger tracer as the global OpenTracing tracer. The
// returned closer flushes pending spans.
func NewTracer(service, host string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: JaegerAgent(host),
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, errors.Wrap(err, "could not create jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
