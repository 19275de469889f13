// Package observability provides OpenTelemetry tracing and metrics for the
// voice authentication service.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("voicegate"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "speaker.identify")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("voicegate"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewVoiceMetrics(observability.Meter("voicegate"))
//	metrics.RecordLogin(ctx, "accepted", distance, duration)
package observability
