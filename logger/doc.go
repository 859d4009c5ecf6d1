// Package logger provides structured logging for rchttp using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and a small registry of named loggers.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	logger.Register("httpclient", logger.NewWriter(os.Stderr, "debug"))
//	log := logger.Get("httpclient.billing") // falls back to "httpclient"
//	log.Info("request sent", logger.Fields("method", "GET"))
package logger
