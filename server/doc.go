// Package server provides the HTTP server: Gin mounted on a root mux and
// served with h2c, plus lifecycle wiring as a component.
//
// # Middleware
//
// Applied around every route (server/middleware):
//
//   - Recovery: panic recovery with the standard error envelope
//   - RequestID: X-Request-Id generation and propagation into log context
//   - CORS: cross-origin headers and preflight
//   - BodySizeLimit: request body cap
//   - RequestLogger: request logging by status
//
// RateLimit (per-client fixed window) and Metrics are Gin middleware for
// route groups.
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /alive and /info.
package server
