package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared by the cli, the api and the ai matcher.
const (
	FieldApp       = "app"
	FieldVersion   = "version"
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldJobID     = "job_id"
)

// pairs turns alternating key/value strings into zap fields. Blank values are
// skipped so optional context never shows up as "".
func pairs(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		value := strings.TrimSpace(kv[i+1])
		if value == "" {
			continue
		}
		fields = append(fields, zap.String(kv[i], value))
	}
	return fields
}

// BaseFields identify the running binary in every entry.
func BaseFields(app, version string) []zap.Field {
	return pairs(FieldApp, app, FieldVersion, version)
}

func AIFields(provider, model string) []zap.Field {
	return pairs(FieldProvider, provider, FieldModel, model)
}

// ForAI returns log tagged with the provider and model. A nil log becomes a nop logger.
func ForAI(log *zap.Logger, provider, model string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(AIFields(provider, model)...)
}

// RequestFields identify an API request in access logs.
func RequestFields(requestID, method, path string) []zap.Field {
	return pairs(FieldRequestID, requestID, FieldMethod, method, FieldPath, path)
}
