// Package component defines the lifecycle contract of guidegen's
// long-lived parts and a Registry that starts them in order and stops
// them in reverse.
package component
