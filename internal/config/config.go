package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration. Defaults come from the constants in
// environmentVariables.go, then an optional yaml file, then the environment.
type Config struct {
	IsProd   bool   `yaml:"is_prod"`
	LogLevel string `yaml:"log_level"`

	Server     ServerConfig     `yaml:"server"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Grading    GradingConfig    `yaml:"grading"`
	VectorDB   VectorDBConfig   `yaml:"vector_db"`
	Redis      RedisConfig      `yaml:"redis"`
}

type ServerConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	AuthToken    string `yaml:"auth_token"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`
	RateLimit    bool   `yaml:"rate_limit"`
}

type ChunkerConfig struct {
	Unit          string `yaml:"unit"`
	Size          int    `yaml:"size"`
	Overlap       int    `yaml:"overlap"`
	MaxChunkRunes int    `yaml:"max_chunk_runes"`
	MinTextRunes  int    `yaml:"min_text_runes"`
}

type EmbeddingConfig struct {
	// Mode is "real" or "mock". Mock vectors are deterministic noise: grading
	// quality depends entirely on running with a real provider.
	Mode           string        `yaml:"mode"`
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"-"`
	Dimension      int           `yaml:"dimension"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	Backoff        time.Duration `yaml:"backoff"`
	CallsPerSecond float64       `yaml:"calls_per_second"`
	Workers        int           `yaml:"workers"`
	CacheEnabled   bool          `yaml:"cache_enabled"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

type CompletionConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"-"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	Backoff     time.Duration `yaml:"backoff"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
}

type GradingConfig struct {
	Language           string `yaml:"language"`
	ContextTopK        int    `yaml:"context_top_k"`
	MaxContextExcerpts int    `yaml:"max_context_excerpts"`
	KeyPointsMaxTokens int    `yaml:"key_points_max_tokens"`
}

type VectorDBConfig struct {
	Store           string `yaml:"store"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	APIKey          string `yaml:"-"`
	UseTLS          bool   `yaml:"use_tls"`
	PoolSize        int    `yaml:"pool_size"`
	UpsertBatchSize int    `yaml:"upsert_batch_size"`
	FallbackMemory  bool   `yaml:"fallback_memory"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"-"`
	FallbackMemory bool   `yaml:"fallback_memory"`
}

// Default returns the configuration built only from the package constants.
func Default() *Config {
	return &Config{
		IsProd:   IS_PROD,
		LogLevel: "debug",
		Server: ServerConfig{
			ListenAddr: ServerListenAddr,
			RateLimit:  true,
		},
		Chunker: ChunkerConfig{
			Unit:          ChunkUnitCharacters,
			Size:          DefaultChunkSize,
			Overlap:       DefaultChunkOverlap,
			MaxChunkRunes: MaxChunkRunes,
			MinTextRunes:  MinTextRunes,
		},
		Embedding: EmbeddingConfig{
			Mode:           EmbeddingModeReal,
			Provider:       EmbeddingProviderOpenAI,
			Model:          OpenAIEmbeddingModel,
			Dimension:      EmbeddingOutputDimensionality,
			Timeout:        EmbeddingTimeout,
			Retries:        EmbeddingRetries,
			Backoff:        EmbeddingBackoff,
			CallsPerSecond: EmbeddingCallsPerSecond,
			Workers:        EmbeddingWorkers,
			CacheEnabled:   true,
			CacheTTL:       EmbeddingCacheTTL,
		},
		Completion: CompletionConfig{
			Provider:    CompletionProviderOpenAI,
			Model:       OpenAIChatModel,
			Timeout:     CompletionTimeout,
			Retries:     CompletionRetries,
			Backoff:     CompletionBackoff,
			Temperature: ModelTemperature,
			MaxTokens:   ModelMaxTokens,
		},
		Grading: GradingConfig{
			Language:           PromptLanguageEnglish,
			ContextTopK:        ContextTopKPerChunk,
			MaxContextExcerpts: MaxContextExcerpts,
			KeyPointsMaxTokens: KeyPointsMaxTokens,
		},
		VectorDB: VectorDBConfig{
			Store:           VectorStoreQdrant,
			Host:            QdrantHost,
			Port:            QdrantGrpcPort,
			UseTLS:          QdrantUseTLS,
			PoolSize:        QdrantPoolSize,
			UpsertBatchSize: UpsertBatchSize,
			FallbackMemory:  FALLBACK_QDRANT_TO_INTERNALSTORE,
		},
		Redis: RedisConfig{
			Addr:           RedisAddr,
			FallbackMemory: FALLBACK_REDIS_TO_INTERNALSTORE,
		},
	}
}

// Load builds the config. A missing .env or yaml file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setBool(&cfg.IsProd, "GRADER_IS_PROD")
	setString(&cfg.LogLevel, "GRADER_LOG_LEVEL")

	setString(&cfg.Server.ListenAddr, "GRADER_LISTEN_ADDR")
	setString(&cfg.Server.AuthToken, "GRADER_AUTH_TOKEN")
	setBool(&cfg.Server.NoAuthBypass, "GRADER_NO_AUTH_BYPASS")

	setString(&cfg.Chunker.Unit, "GRADER_CHUNK_UNIT")
	setInt(&cfg.Chunker.Size, "GRADER_CHUNK_SIZE")
	setInt(&cfg.Chunker.Overlap, "GRADER_CHUNK_OVERLAP")

	setString(&cfg.Embedding.Mode, "GRADER_EMBEDDING_MODE")
	setString(&cfg.Embedding.Provider, "GRADER_EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.Model, "GRADER_EMBEDDING_MODEL")
	setString(&cfg.Embedding.BaseURL, "GRADER_EMBEDDING_BASE_URL")
	setInt(&cfg.Embedding.Dimension, "GRADER_EMBEDDING_DIMENSION")
	setInt(&cfg.Embedding.Workers, "GRADER_EMBEDDING_WORKERS")

	setString(&cfg.Completion.Provider, "GRADER_COMPLETION_PROVIDER")
	setString(&cfg.Completion.Model, "GRADER_COMPLETION_MODEL")
	setString(&cfg.Completion.BaseURL, "GRADER_COMPLETION_BASE_URL")

	setString(&cfg.Grading.Language, "GRADER_PROMPT_LANGUAGE")

	setString(&cfg.VectorDB.Store, "GRADER_VECTOR_STORE")
	setString(&cfg.VectorDB.Host, "QDRANT_HOST")
	setInt(&cfg.VectorDB.Port, "QDRANT_PORT")
	setString(&cfg.VectorDB.APIKey, "QDRANT_API_KEY")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	cfg.Embedding.APIKey = providerKey(cfg.Embedding.Provider)
	cfg.Completion.APIKey = providerKey(cfg.Completion.Provider)
}

func providerKey(provider string) string {
	switch provider {
	case EmbeddingProviderGoogle, CompletionProviderGemini:
		return os.Getenv("GOOGLE_API_KEY")
	case CompletionProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Chunker.Unit == ChunkUnitWords && cfg.Chunker.Size == DefaultChunkSize {
		cfg.Chunker.Size = DefaultWordChunk
		cfg.Chunker.Overlap = DefaultWordOverlap
	}
	if cfg.Embedding.Provider == EmbeddingProviderGoogle && cfg.Embedding.Model == OpenAIEmbeddingModel {
		cfg.Embedding.Model = GoogleEmbeddingModel
	}
	if cfg.Completion.Model == OpenAIChatModel {
		switch cfg.Completion.Provider {
		case CompletionProviderGemini:
			cfg.Completion.Model = GeminiModelName
		case CompletionProviderAnthropic:
			cfg.Completion.Model = AnthropicModelName
		}
	}
	if cfg.Embedding.Workers < 1 {
		cfg.Embedding.Workers = 1
	}
	if cfg.VectorDB.UpsertBatchSize < 1 {
		cfg.VectorDB.UpsertBatchSize = UpsertBatchSize
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunker.Unit != ChunkUnitCharacters && c.Chunker.Unit != ChunkUnitWords {
		errs = append(errs, fmt.Errorf("chunker.unit must be %q or %q", ChunkUnitCharacters, ChunkUnitWords))
	}
	if c.Chunker.Size <= 0 {
		errs = append(errs, errors.New("chunker.size must be positive"))
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		errs = append(errs, errors.New("chunker.overlap must be in [0, size)"))
	}
	if c.Chunker.MaxChunkRunes <= 0 {
		errs = append(errs, errors.New("chunker.max_chunk_runes must be positive"))
	} else if c.Chunker.Unit == ChunkUnitCharacters && c.Chunker.Size > c.Chunker.MaxChunkRunes {
		errs = append(errs, fmt.Errorf("chunker.size %d exceeds chunker.max_chunk_runes %d", c.Chunker.Size, c.Chunker.MaxChunkRunes))
	}
	if c.Embedding.Mode != EmbeddingModeReal && c.Embedding.Mode != EmbeddingModeMock {
		errs = append(errs, fmt.Errorf("embedding.mode must be %q or %q", EmbeddingModeReal, EmbeddingModeMock))
	}
	if c.Embedding.Dimension <= 0 {
		errs = append(errs, errors.New("embedding.dimension must be positive"))
	}
	if c.Grading.Language != PromptLanguageEnglish && c.Grading.Language != PromptLanguageThai {
		errs = append(errs, fmt.Errorf("grading.language must be %q or %q", PromptLanguageEnglish, PromptLanguageThai))
	}
	if c.VectorDB.Store != VectorStoreQdrant && c.VectorDB.Store != VectorStoreMemory {
		errs = append(errs, fmt.Errorf("vector_db.store must be %q or %q", VectorStoreQdrant, VectorStoreMemory))
	}
	return errors.Join(errs...)
}

// ServerWriteTimeout is long enough for a grade to finish: two completion
// calls, each with every retry and its doubling backoff.
func (c *Config) ServerWriteTimeout() time.Duration {
	retries := max(c.Completion.Retries, 0)
	call := c.Completion.Timeout * time.Duration(retries+1)
	backoff := c.Completion.Backoff
	for i := 0; i < retries; i++ {
		call += backoff
		backoff *= 2
	}
	return max(2*call+WriteTimeoutSlack, WriteTimeout)
}

// SlogLevel maps the configured level name, falling back to the prod level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	return LOG_LEVEL_PROD
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
