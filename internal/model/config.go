package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete TruthLens configuration.
// Loaded by viper (flags > TRUTHLENS_* env > config file > DefaultConfig).
type Config struct {
	Thresholds      ThresholdConfig    `yaml:"thresholds" mapstructure:"thresholds"`
	Trust           TrustConfig        `yaml:"trust" mapstructure:"trust"`
	RatingRules     []RatingRule       `yaml:"rating_rules" mapstructure:"rating_rules" validate:"dive"`
	Negation        NegationConfig     `yaml:"negation" mapstructure:"negation"`
	ValidationRules []ValidationRule   `yaml:"validation_rules" mapstructure:"validation_rules" validate:"dive"`
	Timeouts        TimeoutConfig      `yaml:"timeouts" mapstructure:"timeouts"`
	Retry           RetryConfig        `yaml:"retry" mapstructure:"retry"`
	HTTP            HTTPConfig         `yaml:"http" mapstructure:"http"`
	FactCheck       FactCheckConfig    `yaml:"factcheck" mapstructure:"factcheck"`
	Wikipedia       WikipediaConfig    `yaml:"wikipedia" mapstructure:"wikipedia"`
	LLM             LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache           CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting    RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server          ServerConfig       `yaml:"server" mapstructure:"server"`
	History         HistoryConfig      `yaml:"history" mapstructure:"history"`
	Logging         LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Concurrency     ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
}

// ThresholdConfig holds the similarity calibration points
type ThresholdConfig struct {
	Acceptance          float64 `yaml:"acceptance" mapstructure:"acceptance" validate:"gte=0,lte=1"`
	Confident           float64 `yaml:"confident" mapstructure:"confident" validate:"gte=0,lte=1,gtefield=Acceptance"`
	SuspiciousCertainty float64 `yaml:"suspicious_certainty" mapstructure:"suspicious_certainty" validate:"gte=0,lte=1"` // 0 disables the suspicious upgrade
}

// TrustConfig holds the trust scores assigned to confident fact-check matches
type TrustConfig struct {
	MatchesTrue     int `yaml:"matches_true" mapstructure:"matches_true" validate:"gte=0,lte=100"`
	MatchesFalse    int `yaml:"matches_false" mapstructure:"matches_false" validate:"gte=0,lte=100"`
	OppositeOfFalse int `yaml:"opposite_of_false" mapstructure:"opposite_of_false" validate:"gte=0,lte=100"`
	OppositeOfTrue  int `yaml:"opposite_of_true" mapstructure:"opposite_of_true" validate:"gte=0,lte=100"`
	Mixed           int `yaml:"mixed" mapstructure:"mixed" validate:"gte=0,lte=100"`
	Unrated         int `yaml:"unrated" mapstructure:"unrated" validate:"gte=0,lte=100"`
}

// RatingRule maps any of its patterns (substring of the lower-cased label) to a verdict
type RatingRule struct {
	Patterns []string `yaml:"patterns" mapstructure:"patterns" validate:"min=1,dive,required"`
	Verdict  Verdict  `yaml:"verdict" mapstructure:"verdict" validate:"oneof=true false suspicious unknown"`
	Trust    int      `yaml:"trust" mapstructure:"trust" validate:"gte=0,lte=100"`
}

// AntonymPair is a curated (positive, negative) phrase pair
type AntonymPair struct {
	Positive string `yaml:"positive" mapstructure:"positive" validate:"required"`
	Negative string `yaml:"negative" mapstructure:"negative" validate:"required"`
}

// NegationConfig holds the opposite-detection tables
type NegationConfig struct {
	AntonymPairs []AntonymPair `yaml:"antonym_pairs" mapstructure:"antonym_pairs" validate:"dive"`
	Tokens       []string      `yaml:"tokens" mapstructure:"tokens"`
}

// ValidationRule upgrades fallback context to a verdict when both term sets are present
type ValidationRule struct {
	Name          string   `yaml:"name" mapstructure:"name" validate:"required"`
	ClaimTerms    []string `yaml:"claim_terms" mapstructure:"claim_terms" validate:"min=1"`
	EvidenceTerms []string `yaml:"evidence_terms" mapstructure:"evidence_terms" validate:"min=1"`
	Verdict       Verdict  `yaml:"verdict" mapstructure:"verdict" validate:"oneof=true false suspicious unknown"`
	Trust         int      `yaml:"trust" mapstructure:"trust" validate:"gte=0,lte=100"`
}

// TimeoutConfig holds the per-branch timeouts of a resolution
type TimeoutConfig struct {
	Primary    time.Duration `yaml:"primary" mapstructure:"primary" validate:"gt=0"`
	Fallback   time.Duration `yaml:"fallback" mapstructure:"fallback" validate:"gt=0"`
	Enrichment time.Duration `yaml:"enrichment" mapstructure:"enrichment" validate:"gt=0"` // Whole enrichment branch, all attempts
}

// RetryConfig is the backoff policy of the enrichment adapter
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	BaseDelay         time.Duration `yaml:"base_delay" mapstructure:"base_delay" validate:"gte=0"`
	Multiplier        float64       `yaml:"multiplier" mapstructure:"multiplier" validate:"gte=1"`
	MaxDelay          time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"gtefield=BaseDelay"`
	MaxJitter         time.Duration `yaml:"max_jitter" mapstructure:"max_jitter" validate:"gte=0"`
	PerAttemptTimeout time.Duration `yaml:"per_attempt_timeout" mapstructure:"per_attempt_timeout" validate:"gt=0"`
}

// HTTPConfig holds settings shared by the source adapters
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// FactCheckConfig configures the Google Fact Check Tools claim search
type FactCheckConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"` // Prefer FACTCHECK_API_KEY
	Language string `yaml:"language" mapstructure:"language"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size" validate:"gte=1,lte=100"`
}

// WikipediaConfig configures the encyclopedic fallback
type WikipediaConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"` // e.g. https://en.wikipedia.org
}

// LLMConfig configures the heuristic classifier provider
type LLMConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic claude ollama"` // Empty disables enrichment
	Model     string        `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// CacheConfig configures the source lookup cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig configures per-host request pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=1"`

	Hosts []HostRateConfig `yaml:"hosts" mapstructure:"hosts" validate:"dive"` // Per-host overrides
}

// HostRateConfig overrides the request rate for one host (with port, if any)
type HostRateConfig struct {
	Host              string  `yaml:"host" mapstructure:"host" validate:"required"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"` // 0 uses the default burst
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// HistoryConfig configures the resolution history store
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig configures slog output
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1"`
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	// The branch timeout must leave room for every attempt of the retry policy
	if attempts := time.Duration(c.Retry.MaxAttempts) * c.Retry.PerAttemptTimeout; c.Timeouts.Enrichment < attempts {
		return fmt.Errorf("invalid config: timeouts.Enrichment %s is shorter than %d attempts of %s",
			c.Timeouts.Enrichment, c.Retry.MaxAttempts, c.Retry.PerAttemptTimeout)
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
// Thresholds and trust scores are calibration points, not derived constants.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".truthlens")

	return &Config{
		Thresholds: ThresholdConfig{
			Acceptance:          0.3,
			Confident:           0.8,
			SuspiciousCertainty: 0.7,
		},
		Trust: TrustConfig{
			MatchesTrue:     85,
			MatchesFalse:    20,
			OppositeOfFalse: 80,
			OppositeOfTrue:  20,
			Mixed:           45,
			Unrated:         50,
		},
		RatingRules:     DefaultRatingRules(),
		Negation:        DefaultNegationConfig(),
		ValidationRules: DefaultValidationRules(),
		Timeouts: TimeoutConfig{
			Primary:    10 * time.Second,
			Fallback:   8 * time.Second,
			Enrichment: 70 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			BaseDelay:         500 * time.Millisecond,
			Multiplier:        2,
			MaxDelay:          8 * time.Second,
			MaxJitter:         250 * time.Millisecond,
			PerAttemptTimeout: 20 * time.Second,
		},
		HTTP: HTTPConfig{
			UserAgent: "TruthLens/0.1 (+https://github.com/ppiankov/truthlens)",
		},
		FactCheck: FactCheckConfig{
			BaseURL:  "https://factchecktools.googleapis.com",
			Language: "en",
			PageSize: 10,
		},
		Wikipedia: WikipediaConfig{
			Enabled: true,
			BaseURL: "https://en.wikipedia.org",
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30 * time.Second,
			MaxTokens: 400,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
			Hosts: []HostRateConfig{
				{Host: "en.wikipedia.org", RequestsPerSecond: 5, BurstSize: 10},
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		History: HistoryConfig{
			Path: filepath.Join(base, "history.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}

// DefaultRatingRules returns the rating table, most specific phrases first
func DefaultRatingRules() []RatingRule {
	return []RatingRule{
		{Patterns: []string{"pants on fire"}, Verdict: VerdictFalse, Trust: 5},
		{Patterns: []string{"mostly false"}, Verdict: VerdictFalse, Trust: 30},
		{Patterns: []string{"misleading", "partly false", "partially false", "mixed", "mixture", "half true", "half-true"}, Verdict: VerdictUnknown, Trust: 45},
		{Patterns: []string{"false", "incorrect", "inaccurate", "untrue", "debunked", "fake", "wrong"}, Verdict: VerdictFalse, Trust: 20},
		{Patterns: []string{"unproven", "unsubstantiated", "unsupported", "satire"}, Verdict: VerdictSuspicious, Trust: 35},
		{Patterns: []string{"mostly true"}, Verdict: VerdictTrue, Trust: 70},
		{Patterns: []string{"true", "correct", "accurate", "verified"}, Verdict: VerdictTrue, Trust: 85},
	}
}

// DefaultNegationConfig returns the curated antonym pairs and negation tokens
func DefaultNegationConfig() NegationConfig {
	return NegationConfig{
		AntonymPairs: []AntonymPair{
			{Positive: "causes", Negative: "does not cause"},
			{Positive: "causes", Negative: "doesn't cause"},
			{Positive: "cause", Negative: "do not cause"},
			{Positive: "cause", Negative: "don't cause"},
			{Positive: "safe", Negative: "unsafe"},
			{Positive: "safe", Negative: "dangerous"},
			{Positive: "true that", Negative: "false that"},
			{Positive: "effective", Negative: "ineffective"},
			{Positive: "legal", Negative: "illegal"},
			{Positive: "increases", Negative: "decreases"},
			{Positive: "increased", Negative: "decreased"},
			{Positive: "proven", Negative: "unproven"},
			{Positive: "possible", Negative: "impossible"},
			{Positive: "real", Negative: "fake"},
			{Positive: "won", Negative: "lost"},
			{Positive: "alive", Negative: "dead"},
		},
		Tokens: []string{
			"not", "no", "never", "none", "nobody", "nothing", "neither", "nor",
			"cannot", "can't", "doesn't", "don't", "didn't", "isn't", "aren't",
			"wasn't", "weren't", "won't", "wouldn't", "shouldn't", "hasn't", "haven't", "hadn't",
		},
	}
}

// DefaultValidationRules returns the built-in fallback evidence checks
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Name:          "earth-orbital-period",
			ClaimTerms:    []string{"earth", "orbit", "sun", "year"},
			EvidenceTerms: []string{"earth", "orbit", "365"},
			Verdict:       VerdictTrue,
			Trust:         88,
		},
		{
			Name:          "water-boiling-point",
			ClaimTerms:    []string{"water", "boil", "100"},
			EvidenceTerms: []string{"water", "boil", "100"},
			Verdict:       VerdictTrue,
			Trust:         85,
		},
		{
			Name:          "flat-earth",
			ClaimTerms:    []string{"earth", "flat"},
			EvidenceTerms: []string{"earth", "spher"},
			Verdict:       VerdictFalse,
			Trust:         10,
		},
	}
}
