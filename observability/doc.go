// Package observability wires OpenTelemetry tracing and metrics into the
// HTTP client.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Every call dispatched by httpclient.Client opens a client span and injects
// the W3C trace context into the outgoing headers.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//	client, err := httpclient.New(cfg, httpclient.WithMetrics(metrics))
package observability
