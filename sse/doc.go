// Package sse streams generation runs to their consumer as Server-Sent
// Events.
//
// Each run gets a Stream. The orchestrator publishes snapshots into it
// without blocking, and the HTTP handler drains it with Serve. Frames are
// JSON objects of the form {"type": ..., "data": ...} written as
// "data: <json>" events; exactly one complete or error frame ends the
// stream.
//
// # Usage
//
//	stream, _ := hub.Open(runID)
//	go run(stream)
//	_ = stream.Serve(c.Request.Context(), c.Writer)
package sse
