// Package logger provides structured logging on top of zerolog.
//
// Streams log their lifecycle at debug level through a component logger
// tagged "stream"; unhandled error events are logged at error level.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("stream")
//	log.Debug("flushed", logger.Fields(logger.FieldStreamID, id))
package logger
