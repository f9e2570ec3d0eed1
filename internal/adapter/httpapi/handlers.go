package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bkyoung/claim-verifier/internal/adapter/store/sqlite"
	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/extract"
	"github.com/bkyoung/claim-verifier/internal/usecase/ingest"
)

const defaultHistoryLimit = 5

type handlers struct {
	verifier ClaimVerifier
	ingester DocumentIngester
	images   ImageChecker
	history  HistoryStore
	logger   Logger
}

func newHandlers(verifier ClaimVerifier, ingester DocumentIngester, images ImageChecker, history HistoryStore, logger Logger) *handlers {
	return &handlers{
		verifier: verifier,
		ingester: ingester,
		images:   images,
		history:  history,
		logger:   logger,
	}
}

// VerifyClaim runs the verification pipeline for a single claim.
func (h *handlers) VerifyClaim(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	claim := domain.Claim{
		Text:     text,
		Entities: extract.Entities(text),
	}

	result, err := h.verifier.Verify(c.Request.Context(), claim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.saveHistory(c, text, result)

	c.JSON(http.StatusOK, result)
}

// IngestDocument extracts verifiable claims from text or a PDF.
func (h *handlers) IngestDocument(c *gin.Context) {
	var req ingest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := h.ingester.Ingest(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ingest.ErrNoInput) || errors.Is(err, ingest.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// VerifyImage checks an image for AI generation. Provider failures are
// reported in the result body, not as HTTP errors.
func (h *handlers) VerifyImage(c *gin.Context) {
	var req struct {
		ImageURL    string `json:"imageUrl"`
		ImageBase64 string `json:"imageBase64"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var result domain.ImageVerificationResult
	switch {
	case req.ImageURL != "":
		result = h.images.CheckURL(c.Request.Context(), req.ImageURL)
	case req.ImageBase64 != "":
		result = h.images.CheckBase64(c.Request.Context(), req.ImageBase64)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl or imageBase64 is required"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// History lists recent verifications, newest first.
func (h *handlers) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		if n > 0 {
			limit = n
		}
	}

	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"results": []sqlite.Record{}})
		return
	}

	records, err := h.history.RecentVerifications(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []sqlite.Record{}
	}

	c.JSON(http.StatusOK, gin.H{"results": records})
}

func (h *handlers) saveHistory(c *gin.Context, claimText string, result domain.VerificationResult) {
	if h.history == nil {
		return
	}
	if err := h.history.SaveVerification(c.Request.Context(), claimText, result); err != nil && h.logger != nil {
		h.logger.LogWarning(c.Request.Context(), "failed to save verification to history", map[string]interface{}{
			"id":    result.ID,
			"error": err.Error(),
		})
	}
}
