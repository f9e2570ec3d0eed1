package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bkyoung/claim-verifier/internal/adapter/classify"
	"github.com/bkyoung/claim-verifier/internal/adapter/cli"
	"github.com/bkyoung/claim-verifier/internal/adapter/fetch"
	"github.com/bkyoung/claim-verifier/internal/adapter/forensics"
	"github.com/bkyoung/claim-verifier/internal/adapter/httpapi"
	"github.com/bkyoung/claim-verifier/internal/adapter/llm/gemini"
	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/adapter/llm/ollama"
	"github.com/bkyoung/claim-verifier/internal/adapter/llm/openai"
	"github.com/bkyoung/claim-verifier/internal/adapter/observability"
	"github.com/bkyoung/claim-verifier/internal/adapter/search"
	"github.com/bkyoung/claim-verifier/internal/adapter/store/sqlite"
	"github.com/bkyoung/claim-verifier/internal/config"
	"github.com/bkyoung/claim-verifier/internal/usecase/ingest"
	"github.com/bkyoung/claim-verifier/internal/usecase/verify"
	"github.com/bkyoung/claim-verifier/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// .env is loaded before config so ${VAR} expansion can see its values
	_ = godotenv.Load()

	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "cv",
		EnvPrefix:   "CV",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	obsLogger := buildLogger(cfg.Observability)

	var pipelineLogger *observability.PipelineLogger
	if obsLogger != nil {
		pipelineLogger = observability.NewPipelineLogger(obsLogger)
	}

	// Interface-typed so a disabled logger stays a true nil
	var verifyLogger verify.Logger
	var ingestLogger ingest.Logger
	var apiLogger httpapi.Logger
	if pipelineLogger != nil {
		verifyLogger = pipelineLogger
		ingestLogger = pipelineLogger
		apiLogger = pipelineLogger
	}

	generator, err := buildGenerator(cfg, obsLogger)
	if err != nil {
		return err
	}

	var zeroShot verify.CategoryClassifier
	if hfCfg, ok := cfg.Providers["huggingface"]; ok && hfCfg.Enabled && hfCfg.APIKey != "" {
		client := classify.NewHTTPClient(hfCfg.APIKey, hfCfg.Model, hfCfg, cfg.HTTP)
		if obsLogger != nil {
			client.SetLogger(obsLogger)
		}
		zeroShot = client
	}

	searcher := search.NewDuckDuckGo(cfg.Search)
	fetcher := fetch.New(cfg.Fetch)
	if obsLogger != nil {
		searcher.SetLogger(obsLogger)
		fetcher.SetLogger(obsLogger)
	}

	strategy, err := buildStrategy(cfg, generator, obsLogger, verifyLogger)
	if err != nil {
		return err
	}

	verifier := verify.NewVerifier(
		verify.NewClassifier(zeroShot, verifyLogger),
		verify.NewQueryGenerator(generator, verifyLogger),
		searcher,
		fetcher,
		strategy,
		verifyLogger,
	)

	ingester := ingest.NewService(ingest.NewExtractor(generator, cfg.Ingest.MaxClaims, ingestLogger))
	images := forensics.New(cfg.Forensics)

	var history httpapi.HistoryStore
	if cfg.Store.Enabled {
		if storeDir := filepath.Dir(cfg.Store.Path); storeDir != "." {
			if err := os.MkdirAll(storeDir, 0755); err != nil {
				log.Printf("warning: failed to create store directory: %v", err)
			}
		}
		limit := cfg.Store.HistoryLimit
		if limit <= 0 {
			limit = 5
		}
		sqliteStore, err := sqlite.NewStore(cfg.Store.Path, limit)
		if err != nil {
			log.Printf("warning: failed to initialize history store: %v", err)
		} else {
			history = sqliteStore
			defer sqliteStore.Close()
		}
	}

	serve := func(ctx context.Context) error {
		engine := httpapi.New(cfg.Server, verifier, ingester, images, history, apiLogger)
		return runServer(ctx, cfg.Server.Addr, engine)
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: verifier,
		Serve:    serve,
		Version:  version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildGenerator selects the text-generation provider for query building,
// claim extraction, and the local verdict strategy.
func buildGenerator(cfg config.Config, obsLogger llmhttp.Logger) (verify.TextGenerator, error) {
	name := cfg.Verification.Generator
	if name == "" {
		name = "ollama"
	}

	providerCfg := cfg.Providers[name]

	switch name {
	case "ollama":
		client := ollama.NewHTTPClient(providerCfg.BaseURL, providerCfg.Model, providerCfg, cfg.HTTP)
		if obsLogger != nil {
			client.SetLogger(obsLogger)
		}
		return client, nil
	case "openai":
		if providerCfg.APIKey == "" {
			return nil, fmt.Errorf("openai generator requires an API key (set OPENAI_API_KEY or providers.openai.apiKey)")
		}
		client := openai.NewClient(providerCfg.APIKey, providerCfg.Model, providerCfg, cfg.HTTP)
		if obsLogger != nil {
			client.SetLogger(obsLogger)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generator %q (expected ollama or openai)", name)
	}
}

// buildStrategy selects the verdict strategy. The grounded strategy needs a
// gemini API key; local works against any text generator.
func buildStrategy(cfg config.Config, generator verify.TextGenerator, obsLogger llmhttp.Logger, verifyLogger verify.Logger) (verify.VerdictStrategy, error) {
	switch cfg.Verification.Strategy {
	case "", "local":
		return verify.NewLocalStrategy(generator, verifyLogger), nil
	case "grounded":
		geminiCfg := cfg.Providers["gemini"]
		if geminiCfg.APIKey == "" {
			return nil, fmt.Errorf("grounded strategy requires a gemini API key (set GEMINI_API_KEY or providers.gemini.apiKey)")
		}
		client := gemini.NewHTTPClient(geminiCfg.APIKey, geminiCfg.Model, geminiCfg, cfg.HTTP)
		if obsLogger != nil {
			client.SetLogger(obsLogger)
		}
		return verify.NewGroundedStrategy(client, verifyLogger), nil
	default:
		return nil, fmt.Errorf("unknown verification strategy %q (expected local or grounded)", cfg.Verification.Strategy)
	}
}

// buildLogger creates the structured logger based on configuration.
func buildLogger(cfg config.ObservabilityConfig) llmhttp.Logger {
	if !cfg.Logging.Enabled {
		return nil
	}

	logLevel := llmhttp.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = llmhttp.LogLevelDebug
	case "error":
		logLevel = llmhttp.LogLevelError
	}

	logFormat := llmhttp.LogFormatHuman
	if cfg.Logging.Format == "json" {
		logFormat = llmhttp.LogFormatJSON
	}

	return llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactAPIKeys)
}

// runServer serves the API until the context is cancelled, then shuts down
// gracefully.
func runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Printf("claim verifier listening on %s", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cv"))
	}
	return paths
}
