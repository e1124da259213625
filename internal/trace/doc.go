// Package trace records what the planner and the local executor are doing.
//
// Events are spans (begin/end pairs) or points, tagged with a scope:
//
//   - ScopeDriver: one CLI command
//   - ScopePass: a pipeline pass (load, order, assemble, execute)
//   - ScopeModule: one SDK module
//   - ScopeCommand: one compiler process
//
// The level decides which scopes are kept. Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "assemble", 0)
//	defer span.End("")
package trace
