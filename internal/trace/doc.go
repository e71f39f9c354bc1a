// Package trace records spans and instant events for solver commands.
//
// Enable it from the CLI:
//
//	solver check --trace=- --trace-level=detail
//
// Tracers: Nop (disabled), StreamTracer (immediate write), RingTracer (last N
// events, dumped on failure) and MultiTracer (fan-out).
//
// Levels map to scopes: phase emits driver and pass spans, detail adds one
// span per trait group, debug adds every compared impl pair. At error level
// only the ring buffer is kept.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
//	defer span.End("")
package trace
