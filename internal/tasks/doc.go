// Package tasks implements the cache-first analysis pipeline.
//
// The core abstraction is [AnalysisEngine], which coordinates three
// independent, unreliable collaborators for a selected track: the cache
// repository, the AI generator and the video lookup service. Each
// collaborator's failure is isolated:
//
//   - A cache read fault is logged and treated as a miss, never surfaced.
//   - A persistence fault after successful generation is logged and swallowed;
//     the fresh document is still returned.
//   - A video fault degrades to a sentinel state and never aborts the request.
//
// The only terminal failure is the complete absence of an analysis: no cached
// document and no successful generation.
//
// Video lookup and the cache/generation path have no data dependency and run
// concurrently. Bulk precomputation uses a rate-limited worker pool and emits
// progress updates over a channel for non-blocking status reporting.
package tasks
