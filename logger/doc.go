// Package logger wraps zerolog with component-tagged structured logging
// and a configurable console or JSON output format.
package logger
