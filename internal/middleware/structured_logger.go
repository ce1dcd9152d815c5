// file: internal/middleware/structured_logger.go
package middleware

import (
	"net/http"
	"time"

	"cinehub/internal/contextutils"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig holds configuration for the access log
type LoggingConfig struct {
	SlowRequestThreshold time.Duration
	// SkipPaths are not logged on success, e.g. probes
	SkipPaths []string
}

// DefaultLoggingConfig returns access log defaults
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SlowRequestThreshold: time.Second,
		SkipPaths:            []string{"/health", "/metrics"},
	}
}

// StructuredLogging writes one access log line per request. It must run
// inside RequestID.
func StructuredLogging(config *LoggingConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultLoggingConfig()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := GetRequestStart(r.Context())
			writer := newResponseWriter(w)

			next.ServeHTTP(writer, r)

			if _, ok := skip[r.URL.Path]; ok && writer.status < 400 {
				return
			}

			duration := time.Since(start)
			fields := []zap.Field{
				zap.Int("status", writer.status),
				zap.Duration("duration", duration),
				zap.Int64("response_size", writer.bytesWritten),
			}
			if userID := contextutils.GetUserID(r.Context()); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			level := zapcore.InfoLevel
			switch {
			case writer.status >= 500:
				level = zapcore.ErrorLevel
			case writer.status >= 400 || duration > config.SlowRequestThreshold:
				level = zapcore.WarnLevel
			}

			GetRequestLogger(r.Context()).Check(level, "Request completed").Write(fields...)
		})
	}
}
