package config

// Config represents the full application configuration.
type Config struct {
	Providers     map[string]ProviderConfig `yaml:"providers"`
	HTTP          HTTPConfig                `yaml:"http"`
	Verification  VerificationConfig        `yaml:"verification"`
	Search        SearchConfig              `yaml:"search"`
	Fetch         FetchConfig               `yaml:"fetch"`
	Ingest        IngestConfig              `yaml:"ingest"`
	Forensics     ForensicsConfig           `yaml:"forensics"`
	Store         StoreConfig               `yaml:"store"`
	Server        ServerConfig              `yaml:"server"`
	Observability ObservabilityConfig       `yaml:"observability"`
}

// ProviderConfig configures a single model provider (ollama, gemini,
// openai, huggingface).
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`

	// HTTP overrides (optional, use global HTTP config if not set)
	Timeout        *string `yaml:"timeout,omitempty"`
	MaxRetries     *int    `yaml:"maxRetries,omitempty"`
	InitialBackoff *string `yaml:"initialBackoff,omitempty"`
	MaxBackoff     *string `yaml:"maxBackoff,omitempty"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// VerificationConfig selects the verdict strategy and the generator used
// for query building.
type VerificationConfig struct {
	// Strategy is "local" (search + fetch + local model) or "grounded"
	// (single grounded-search model call).
	Strategy string `yaml:"strategy"`

	// Generator names the provider used for search-query generation,
	// normally "ollama" or "openai".
	Generator string `yaml:"generator"`
}

// SearchConfig configures the web search adapter.
type SearchConfig struct {
	BaseURL     string `yaml:"baseURL"`
	MaxResults  int    `yaml:"maxResults"`
	SiteQueries int    `yaml:"siteQueries"`
}

// FetchConfig configures the content fetcher.
type FetchConfig struct {
	BatchSize         int     `yaml:"batchSize"`
	Timeout           string  `yaml:"timeout"`
	MaxContentChars   int     `yaml:"maxContentChars"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// IngestConfig configures document ingestion and claim extraction.
type IngestConfig struct {
	MaxClaims int `yaml:"maxClaims"`
}

// ForensicsConfig configures the image authenticity adapter. The two
// threshold fields form the configurable tampered/clean split; scores
// between them are the gray zone.
type ForensicsConfig struct {
	APIUser       string  `yaml:"apiUser"`
	APISecret     string  `yaml:"apiSecret"`
	BaseURL       string  `yaml:"baseURL"`
	TamperedAbove float64 `yaml:"tamperedAbove"`
	CleanBelow    float64 `yaml:"cleanBelow"`
}

// StoreConfig configures the verification history store.
type StoreConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	HistoryLimit int    `yaml:"historyLimit"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}
