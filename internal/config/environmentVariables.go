package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD               = false
	LOG_LEVEL_PROD        = slog.LevelInfo
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 2
	BURST_RATE_LIMIT      = 5

	//fallbacks
	FALLBACK_REDIS_TO_INTERNALSTORE  = true //ingestion status lives in memory when redis is offline
	FALLBACK_QDRANT_TO_INTERNALSTORE = false

	//serverTimeouts
	ReadTimeout            = 10 * time.Second
	WriteTimeout           = 180 * time.Second //floor, see Config.ServerWriteTimeout
	WriteTimeoutSlack      = 30 * time.Second  //embedding, retrieval and encoding around the completions
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"
	MaxUploadSize    = 32 << 20 //32mb

	//chunker
	ChunkUnitCharacters = "characters"
	ChunkUnitWords      = "words"
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultWordChunk    = 300
	DefaultWordOverlap  = 50
	MaxChunkRunes       = 4000
	MinTextRunes        = 10
	EmptyTextSentinel   = "[no readable content could be extracted from this document]"

	//embeddings
	EmbeddingModeReal             = "real"
	EmbeddingModeMock             = "mock"
	EmbeddingProviderOpenAI       = "openai"
	EmbeddingProviderGoogle       = "google"
	EmbeddingOutputDimensionality = 1536
	OpenAIEmbeddingModel          = "text-embedding-3-small"
	GoogleEmbeddingModel          = "gemini-embedding-001"
	EmbeddingTimeout              = 30 * time.Second
	EmbeddingRetries              = 1
	EmbeddingBackoff              = 500 * time.Millisecond
	EmbeddingCallsPerSecond       = 5
	EmbeddingWorkers              = 1 //sequential, providers rate limit us hard
	EmbeddingCacheTTL             = 7 * 24 * time.Hour

	//llm
	CompletionProviderOpenAI    = "openai"
	CompletionProviderGemini    = "gemini"
	CompletionProviderAnthropic = "anthropic"
	OpenAIChatModel             = "gpt-4o-mini"
	GeminiModelName             = "gemini-2.5-flash"
	AnthropicModelName          = "claude-sonnet-4-5"
	CompletionTimeout           = 60 * time.Second
	CompletionRetries           = 1
	CompletionBackoff           = 2 * time.Second
	ModelTemperature            = 0.2
	ModelMaxTokens              = 2000
	KeyPointsMaxTokens          = 1000

	//grading
	PromptLanguageEnglish = "en"
	PromptLanguageThai    = "th"
	ContextTopKPerChunk   = 2
	MaxContextExcerpts    = 5
	DefaultSearchLimit    = 5
	MaxSearchLimit        = 50

	//vectorDB
	VectorStoreQdrant       = "qdrant"
	VectorStoreMemory       = "memory"
	ModelAnswerCollection   = "model_answer"
	StudentCollection       = "student_answer"
	UpsertBatchSize         = 5
	ScrollLimit             = 1000
	QdrantConnectionTimeout = 5 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation

	//http pooling for provider sdks
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisIngestionStore = 0
	RedisEmbeddingCache = 1

	RedisIngestionStoreTTL = 7 * 24 * time.Hour
)
