// Package httpapi exposes the verification pipeline over HTTP.
package httpapi

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bkyoung/claim-verifier/internal/adapter/store/sqlite"
	"github.com/bkyoung/claim-verifier/internal/config"
	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/usecase/ingest"
)

// ClaimVerifier runs the full verification pipeline for one claim.
type ClaimVerifier interface {
	Verify(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error)
}

// DocumentIngester turns raw input into verifiable claims.
type DocumentIngester interface {
	Ingest(ctx context.Context, req ingest.Request) (ingest.Document, error)
}

// ImageChecker judges image authenticity. Implementations degrade in-band
// and never return an error.
type ImageChecker interface {
	CheckURL(ctx context.Context, imageURL string) domain.ImageVerificationResult
	CheckBase64(ctx context.Context, imageBase64 string) domain.ImageVerificationResult
}

// HistoryStore persists finished verifications. May be nil when the store
// is disabled.
type HistoryStore interface {
	SaveVerification(ctx context.Context, claimText string, result domain.VerificationResult) error
	RecentVerifications(ctx context.Context, limit int) ([]sqlite.Record, error)
}

// Logger reports handler-level warnings.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// New builds the gin engine with all routes attached.
func New(cfg config.ServerConfig, verifier ClaimVerifier, ingester DocumentIngester, images ImageChecker, history HistoryStore, logger Logger) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, verifier, ingester, images, history, logger)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.ServerConfig, verifier ClaimVerifier, ingester DocumentIngester, images ImageChecker, history HistoryStore, logger Logger) {
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := newHandlers(verifier, ingester, images, history, logger)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/verify-claim", h.VerifyClaim)
		v1.POST("/ingest/document", h.IngestDocument)
		v1.POST("/ingest/image-verify", h.VerifyImage)
		v1.GET("/history", h.History)
	}
}
