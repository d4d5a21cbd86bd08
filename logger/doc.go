// Package logger provides structured logging for speechkit using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("conversion")
//	log.Info("decoded", logger.Fields("format", "mp3", "samples", n))
package logger
