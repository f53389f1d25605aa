// Package pipeline runs an ordered list of steps for one generation run
// and reports per-step progress.
//
// Steps execute one at a time on the caller's goroutine. Every mutation of
// the run state (step start, progress report, completion, failure) is
// followed by a synchronous snapshot callback carrying a copy of the state,
// so a transport can stream it without aliasing the orchestrator's data.
// The first failing step aborts the run; later steps stay pending.
//
// # Usage
//
//	stages := []pipeline.Stage{
//	    {Definition: pipeline.Definition{ID: "analyze", Name: "Analyzing prompt"}, Body: analyze},
//	    {Definition: pipeline.Definition{ID: "generate", Name: "Generating guide"}, Body: generate},
//	}
//	result, state, err := pipeline.StartRun(ctx, stages, stream.PublishProgress)
package pipeline
