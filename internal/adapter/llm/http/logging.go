package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to
	// include in logs. Responses longer than this are truncated so article
	// bodies and model replies never land in log aggregators whole.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging purposes.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var secretParamPatterns = []string{
	"key",
	"apiKey",
	"api_key",
	"api_secret",
	"api_user",
	"token",
	"access_token",
}

// RedactURLSecrets redacts API credentials from URLs in error messages.
// The Gemini and Sightengine endpoints carry their credentials as query
// parameters, so any error message that embeds a request URL must pass
// through here before being logged or returned to a caller.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?key=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, param := range secretParamPatterns {
		re := regexp.MustCompile(param + `=([^&"\s]+)`)
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}
	return result
}
