// Package observability reports stream activity to OpenTelemetry.
//
// StreamMetrics and StreamTracer implement stream.Observer and can be
// combined with stream.Observers.
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("through2"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewStreamMetrics(observability.Meter("through2"))
//	tracer := observability.NewStreamTracer(observability.Tracer("through2"))
//	t := through2.New([]stream.Option{
//		stream.WithObserver(stream.Observers(metrics, tracer)),
//	}, fn, nil)
package observability
