package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bkyoung/claim-verifier/internal/domain"
)

const (
	pdfFetchTimeout = 10 * time.Second
	pdfMaxBytes     = 20 << 20
)

// ErrNoInput is returned when a document request carries neither text nor
// a PDF.
var ErrNoInput = errors.New("text, pdfUrl, or pdfBytes is required")

// Request is one document ingestion request. Exactly one of the fields is
// expected; when several are set, Text wins over PDFBytes over PDFURL.
type Request struct {
	Text     string `json:"text,omitempty"`
	PDFURL   string `json:"pdfUrl,omitempty"`
	PDFBytes string `json:"pdfBytes,omitempty"`
}

// Document is the ingestion result: the raw text that was analyzed and the
// claims extracted from it.
type Document struct {
	RawText string         `json:"rawText"`
	Claims  []domain.Claim `json:"claims"`
}

// Service resolves a document request to text and extracts claims from it.
type Service struct {
	extractor *Extractor
	client    *http.Client
}

// NewService creates a document ingestion service.
func NewService(extractor *Extractor) *Service {
	return &Service{
		extractor: extractor,
		client:    &http.Client{Timeout: pdfFetchTimeout},
	}
}

// Ingest resolves the request to raw text and runs claim extraction.
func (s *Service) Ingest(ctx context.Context, req Request) (Document, error) {
	text, err := s.resolveText(ctx, req)
	if err != nil {
		return Document{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Document{}, ErrNoInput
	}

	claims, err := s.extractor.ExtractClaims(ctx, text)
	if err != nil {
		return Document{}, err
	}
	return Document{RawText: text, Claims: claims}, nil
}

func (s *Service) resolveText(ctx context.Context, req Request) (string, error) {
	switch {
	case strings.TrimSpace(req.Text) != "":
		return req.Text, nil
	case req.PDFBytes != "":
		data := req.PDFBytes
		if idx := strings.Index(data, ","); idx >= 0 {
			data = data[idx+1:]
		}
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("invalid pdfBytes: %w", err)
		}
		return TextFromPDF(raw)
	case req.PDFURL != "":
		return s.fetchPDF(ctx, req.PDFURL)
	default:
		return "", ErrNoInput
	}
}

func (s *Service) fetchPDF(ctx context.Context, pdfURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid pdfUrl: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch PDF: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, pdfMaxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	return TextFromPDF(data)
}
