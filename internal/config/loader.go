package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment variables.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "cv"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "CV"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand environment variables in config values
	cfg = expandEnvVars(cfg)

	return cfg, nil
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings.
func expandEnvVars(cfg Config) Config {
	for name, provider := range cfg.Providers {
		provider.APIKey = expandEnvString(provider.APIKey)
		provider.Model = expandEnvString(provider.Model)
		provider.BaseURL = expandEnvString(provider.BaseURL)

		if provider.Timeout != nil {
			timeout := expandEnvString(*provider.Timeout)
			provider.Timeout = &timeout
		}
		if provider.InitialBackoff != nil {
			backoff := expandEnvString(*provider.InitialBackoff)
			provider.InitialBackoff = &backoff
		}
		if provider.MaxBackoff != nil {
			backoff := expandEnvString(*provider.MaxBackoff)
			provider.MaxBackoff = &backoff
		}

		cfg.Providers[name] = provider
	}

	cfg.HTTP.Timeout = expandEnvString(cfg.HTTP.Timeout)
	cfg.HTTP.InitialBackoff = expandEnvString(cfg.HTTP.InitialBackoff)
	cfg.HTTP.MaxBackoff = expandEnvString(cfg.HTTP.MaxBackoff)

	cfg.Verification.Strategy = expandEnvString(cfg.Verification.Strategy)
	cfg.Verification.Generator = expandEnvString(cfg.Verification.Generator)

	cfg.Search.BaseURL = expandEnvString(cfg.Search.BaseURL)
	cfg.Fetch.Timeout = expandEnvString(cfg.Fetch.Timeout)

	cfg.Forensics.APIUser = expandEnvString(cfg.Forensics.APIUser)
	cfg.Forensics.APISecret = expandEnvString(cfg.Forensics.APISecret)
	cfg.Forensics.BaseURL = expandEnvString(cfg.Forensics.BaseURL)

	cfg.Store.Path = expandEnvString(cfg.Store.Path)

	cfg.Server.Addr = expandEnvString(cfg.Server.Addr)
	cfg.Server.AllowOrigins = expandEnvStringSlice(cfg.Server.AllowOrigins)

	cfg.Observability.Logging.Level = expandEnvString(cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = expandEnvString(cfg.Observability.Logging.Format)

	return cfg
}

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	re := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// expandEnvStringSlice expands environment variables in a slice of strings.
func expandEnvStringSlice(slice []string) []string {
	if len(slice) == 0 {
		return slice
	}
	result := make([]string, len(slice))
	for i, s := range slice {
		result[i] = expandEnvString(s)
	}
	return result
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	// HTTP defaults
	v.SetDefault("http.timeout", "60s")
	v.SetDefault("http.maxRetries", 4)
	v.SetDefault("http.initialBackoff", "1s")
	v.SetDefault("http.maxBackoff", "30s")
	v.SetDefault("http.backoffMultiplier", 2.0)

	// Verification defaults
	v.SetDefault("verification.strategy", "local")
	v.SetDefault("verification.generator", "ollama")

	// Search defaults
	v.SetDefault("search.maxResults", 8)
	v.SetDefault("search.siteQueries", 3)

	// Fetch defaults
	v.SetDefault("fetch.batchSize", 5)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.maxContentChars", 5000)
	v.SetDefault("fetch.requestsPerSecond", 5.0)

	// Ingest defaults
	v.SetDefault("ingest.maxClaims", 3)

	// Forensics defaults: scores above tamperedAbove read as AI-generated,
	// below cleanBelow as authentic, between them as a gray zone.
	v.SetDefault("forensics.tamperedAbove", 0.7)
	v.SetDefault("forensics.cleanBelow", 0.3)

	// Store defaults
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "cv.db")
	v.SetDefault("store.historyLimit", 5)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowOrigins", []string{"http://localhost:3000"})

	// Observability defaults
	v.SetDefault("observability.logging.enabled", true)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "human")
	v.SetDefault("observability.logging.redactAPIKeys", true)
}
