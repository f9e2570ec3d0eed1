package observability_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/adapter/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineLogger(t *testing.T) {
	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	pipelineLogger := observability.NewPipelineLogger(llmLogger)

	require.NotNil(t, pipelineLogger)
}

func TestPipelineLogger_LogWarning(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	pipelineLogger := observability.NewPipelineLogger(llmLogger)

	ctx := context.Background()
	pipelineLogger.LogWarning(ctx, "search query failed", map[string]interface{}{
		"query":    "Intel Q3 2024 profit",
		"provider": "duckduckgo",
		"error":    "connection refused",
	})

	output := buf.String()
	assert.Contains(t, output, "[WARNING]")
	assert.Contains(t, output, "search query failed")
	assert.Contains(t, output, "query=Intel Q3 2024 profit")
	assert.Contains(t, output, "provider=duckduckgo")
	assert.Contains(t, output, "error=connection refused")
}

func TestPipelineLogger_LogInfo(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	pipelineLogger := observability.NewPipelineLogger(llmLogger)

	ctx := context.Background()
	pipelineLogger.LogInfo(ctx, "verification completed", map[string]interface{}{
		"category": "business",
		"verdict":  "true",
		"evidence": 5,
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "verification completed")
	assert.Contains(t, output, "category=business")
	assert.Contains(t, output, "verdict=true")
	assert.Contains(t, output, "evidence=5")
}
