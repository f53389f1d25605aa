// Package observability wires OpenTelemetry tracing and metrics.
//
//	tp, err := observability.InitTracer(ctx, cfg, observability.ServiceInfo{Name: "guidegen"})
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.step", attribute.String(observability.AttrStepID, "geocode"))
//	err := doStep(ctx)
//	observability.EndSpan(span, err)
//
// Metrics are recorded through Default(), which is a no-op until InitMeter
// installs a provider.
package observability
