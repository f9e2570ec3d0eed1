// Package forensics checks images for AI generation via the Sightengine API.
//
// The adapter never returns an error to the caller: every failure mode maps
// to a heuristics-provider result with nil score fields and a reason, so an
// unconfigured or failing forensics backend degrades instead of breaking the
// verification flow.
package forensics

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bkyoung/claim-verifier/internal/config"
	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	defaultBaseURL       = "https://api.sightengine.com"
	defaultTimeout       = 30 * time.Second
	defaultTamperedAbove = 0.7
	defaultCleanBelow    = 0.3

	genaiModel = "genai"
)

type checkResponse struct {
	Status string `json:"status"`
	Type   *struct {
		AIGenerated *float64 `json:"ai_generated"`
	} `json:"type"`
}

// Sightengine calls the check.json endpoint with the genai model and maps
// the ai_generated score onto a tampering judgment.
type Sightengine struct {
	apiUser       string
	apiSecret     string
	baseURL       string
	tamperedAbove float64
	cleanBelow    float64
	client        *http.Client
}

// New creates a Sightengine adapter from config. Zero thresholds fall back
// to the 0.7/0.3 defaults.
func New(cfg config.ForensicsConfig) *Sightengine {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tamperedAbove := cfg.TamperedAbove
	if tamperedAbove <= 0 {
		tamperedAbove = defaultTamperedAbove
	}
	cleanBelow := cfg.CleanBelow
	if cleanBelow <= 0 {
		cleanBelow = defaultCleanBelow
	}

	return &Sightengine{
		apiUser:       cfg.APIUser,
		apiSecret:     cfg.APISecret,
		baseURL:       baseURL,
		tamperedAbove: tamperedAbove,
		cleanBelow:    cleanBelow,
		client:        &http.Client{Timeout: defaultTimeout},
	}
}

// Configured reports whether API credentials are present.
func (s *Sightengine) Configured() bool {
	return s.apiUser != "" && s.apiSecret != ""
}

// CheckURL verifies an image by URL. Unconfigured credentials short-circuit
// to a heuristics result without any network call.
func (s *Sightengine) CheckURL(ctx context.Context, imageURL string) domain.ImageVerificationResult {
	if !s.Configured() {
		return notConfigured()
	}

	params := url.Values{}
	params.Set("models", genaiModel)
	params.Set("api_user", s.apiUser)
	params.Set("api_secret", s.apiSecret)
	params.Set("url", imageURL)

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/1.0/check.json?%s", s.baseURL, params.Encode()), nil)
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}

	return s.do(req)
}

// CheckBase64 verifies an image supplied as base64 data, with or without a
// data-URL prefix, via a multipart upload.
func (s *Sightengine) CheckBase64(ctx context.Context, imageBase64 string) domain.ImageVerificationResult {
	if !s.Configured() {
		return notConfigured()
	}

	data := imageBase64
	if idx := strings.Index(data, ","); idx >= 0 {
		data = data[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: invalid base64 data: %v", err))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", "image.jpg")
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}
	if _, err := part.Write(raw); err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}
	writer.WriteField("models", genaiModel)
	writer.WriteField("api_user", s.apiUser)
	writer.WriteField("api_secret", s.apiSecret)
	if err := writer.Close(); err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/1.0/check.json", &buf)
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.do(req)
}

func (s *Sightengine) do(req *http.Request) domain.ImageVerificationResult {
	resp, err := s.client.Do(req)
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Sprintf("image verification failed: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return failure(fmt.Sprintf("forensics API error: %d %s", resp.StatusCode, snippet))
	}

	var check checkResponse
	if err := json.Unmarshal(body, &check); err != nil {
		return failure("unexpected response from forensics API; could not read ai_generated score")
	}
	if check.Status != "success" || check.Type == nil || check.Type.AIGenerated == nil {
		result := failure("unexpected response from forensics API; could not read ai_generated score")
		result.Raw = json.RawMessage(body)
		return result
	}

	return s.judge(*check.Type.AIGenerated, json.RawMessage(body))
}

// judge maps the ai_generated score onto the tampering judgment. Scores in
// the gray zone between the two thresholds keep isTampered=false with an
// uncertainty reason.
func (s *Sightengine) judge(score float64, raw any) domain.ImageVerificationResult {
	isTampered := score > s.tamperedAbove

	var reason string
	switch {
	case score > 0.9:
		reason = "Model is highly confident this image is AI-generated (ai_generated > 0.9)."
	case score > s.tamperedAbove:
		reason = fmt.Sprintf("Model indicates this image is likely AI-generated (ai_generated > %.1f).", s.tamperedAbove)
	case score < s.cleanBelow:
		reason = fmt.Sprintf("Model indicates this image is likely not AI-generated (ai_generated < %.1f).", s.cleanBelow)
	default:
		reason = fmt.Sprintf("Model is uncertain whether this image is AI-generated (ai_generated between %.1f and %.1f).", s.cleanBelow, s.tamperedAbove)
	}

	return domain.ImageVerificationResult{
		Provider:       domain.ProviderForensicsAPI,
		IsTampered:     &isTampered,
		TamperingScore: &score,
		Reasons:        []string{reason},
		Raw:            raw,
	}
}

func notConfigured() domain.ImageVerificationResult {
	return domain.ImageVerificationResult{
		Provider: domain.ProviderHeuristic,
		Reasons: []string{
			"Image verification not configured: forensics API credentials are missing.",
		},
	}
}

func failure(reason string) domain.ImageVerificationResult {
	return domain.ImageVerificationResult{
		Provider: domain.ProviderHeuristic,
		Reasons:  []string{reason},
	}
}
