// Package bootstrap runs the service lifecycle.
//
// NewApp validates the typed configuration and initializes logging.
// OnConfigure callbacks build the service graph and register components;
// Run starts them in registration order, prints the startup summary,
// waits for SIGINT/SIGTERM and stops them in reverse order.
package bootstrap
