// Package api is the HTTP surface of the guide service.
//
//	POST /api/guides/stream   generate a guide, streamed as server-sent events
//	GET  /api/guides          recent guides
//	GET  /api/guides/:id      stored guide
//	GET  /api/runs/:id        latest snapshot of a run
//	POST /api/geocode         resolve one address
//	POST /api/geocode/batch   resolve many addresses
//	GET  /api/weather         advisory for a place and optional stay
//	GET  /api/rate-limits     provider limiter windows
//
// Errors use the errors.ErrorResponse envelope.
package api
