// Package geocode resolves free-text addresses to coordinates.
//
// A Resolver tries a list of query strategies against a Provider: the
// address as given, then the address followed by a context hint such as
// the destination city. A miss after every strategy is a nil result, not
// an error. Batch resolution isolates items so one bad address never
// fails the batch, and every lookup passes the provider's rate limiter.
package geocode
