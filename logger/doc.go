// Package logger provides structured logging for guidegen using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers, and request/run IDs carried through context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("geocode")
//	log.Info("batch resolved", logger.Fields("total", 10, "successful", 7))
package logger
