// Package trace provides the tracing subsystem of the spbg generator.
//
// Every generation run reports its stages, the artifacts it writes and the
// types it registers as trace events. Tracing is off unless requested:
//
//	spbg generate --trace=- --trace-level=detail ./model_ert_rtw
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Run boundaries only
//   - LevelPhase: Run and stage boundaries
//   - LevelDetail: Plus one event per artifact
//   - LevelDebug: Plus one event per registered type
//
// # Context Propagation
//
// Tracers travel through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "extract")
//	defer span.End("")
package trace
