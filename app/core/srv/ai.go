package srv

import (
	"context"
	"log/slog"
	"os"

	oai "github.com/sashabaranov/go-openai"

	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/ai/jina"
	"github.com/opencurrent/opencurrent/pkg/ai/openai"
	"github.com/opencurrent/opencurrent/pkg/search/serper"
	"github.com/opencurrent/opencurrent/pkg/types"
)

type EmbeddingAI interface {
	EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error)
	EmbeddingForDocument(ctx context.Context, content []string) (ai.EmbeddingResult, error)
}

type GenerateAI interface {
	Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error)
}

type ExtractAI interface {
	Extract(ctx context.Context, content string) (*ai.SummaryEntity, error)
}

type ReaderAI interface {
	Reader(ctx context.Context, endpoint string) (*ai.ReaderResult, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// AIDriver bundles the model-side capabilities the logic layer consumes.
type AIDriver interface {
	EmbeddingAI
	GenerateAI
	ExtractAI
	ReaderAI
	PromptIsOverLimit(prompt string) bool
}

type AIConfig struct {
	OpenAI OpenAIDriver `toml:"openai"`
	Jina   JinaDriver   `toml:"jina"`
	Serper SerperDriver `toml:"serper"`
}

func (c *AIConfig) FromENV() {
	c.OpenAI.Token = os.Getenv("OPENCURRENT_OPENAI_TOKEN")
	c.OpenAI.Endpoint = os.Getenv("OPENCURRENT_OPENAI_ENDPOINT")
	c.OpenAI.ChatModel = os.Getenv("OPENCURRENT_OPENAI_CHAT_MODEL")
	c.OpenAI.EmbeddingModel = os.Getenv("OPENCURRENT_OPENAI_EMBEDDING_MODEL")
	c.Jina.Token = os.Getenv("OPENCURRENT_JINA_TOKEN")
	c.Serper.APIKey = os.Getenv("OPENCURRENT_SERPER_API_KEY")
}

type OpenAIDriver struct {
	Token          string `toml:"token"`
	Endpoint       string `toml:"endpoint"`
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
}

type JinaDriver struct {
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
}

type SerperDriver struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

type AI struct {
	EmbeddingAI
	GenerateAI
	ExtractAI
	ReaderAI

	chatModel string
}

// PromptIsOverLimit guards against shipping an oversized retrieval context
// to the model.
func (s *AI) PromptIsOverLimit(prompt string) bool {
	tokenNum, err := ai.NumTokens([]oai.ChatCompletionMessage{
		{Role: oai.ChatMessageRoleUser, Content: prompt},
	}, s.chatModel)
	if err != nil {
		slog.Error("Failed to tik request token", slog.String("error", err.Error()))
		return false
	}

	return tokenNum > 80000
}

func ApplyAI(cfg AIConfig) ApplyFunc {
	return func(s *Srv) {
		driver := openai.New(cfg.OpenAI.Token, cfg.OpenAI.Endpoint, ai.ModelName{
			ChatModel:      cfg.OpenAI.ChatModel,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		})
		s.ai = &AI{
			EmbeddingAI: driver,
			GenerateAI:  driver,
			ExtractAI:   driver,
			ReaderAI:    jina.New(cfg.Jina.Token, cfg.Jina.Endpoint),

			chatModel: cfg.OpenAI.ChatModel,
		}
	}
}

func ApplySearch(cfg SerperDriver) ApplyFunc {
	return func(s *Srv) {
		s.search = serper.New(cfg.APIKey, cfg.Endpoint)
	}
}

// ApplyAIDriver installs a prebuilt driver, bypassing the vendor setup.
func ApplyAIDriver(driver AIDriver) ApplyFunc {
	return func(s *Srv) {
		s.ai = driver
	}
}

// ApplySearcher installs a prebuilt searcher.
func ApplySearcher(searcher Searcher) ApplyFunc {
	return func(s *Srv) {
		s.search = searcher
	}
}
