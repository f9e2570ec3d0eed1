package observability

import (
	"context"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
)

// PipelineLogger adapts llmhttp.Logger for the verification and ingestion
// use cases. This lets the pipeline orchestrators use the same structured
// logging infrastructure as the LLM HTTP clients.
type PipelineLogger struct {
	logger llmhttp.Logger
}

// NewPipelineLogger creates a new pipeline logger adapter.
func NewPipelineLogger(logger llmhttp.Logger) *PipelineLogger {
	return &PipelineLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
// Delegates to the underlying llmhttp.Logger for consistent structured logging.
func (l *PipelineLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
// Delegates to the underlying llmhttp.Logger for consistent structured logging.
func (l *PipelineLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
