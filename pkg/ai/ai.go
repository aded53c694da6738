package ai

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

type ModelName struct {
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
}

type EmbeddingResult struct {
	Model string
	Usage *openai.Usage
	Data  [][]float32
}

type GenerateResponse struct {
	Received []string
	Model    string
	Usage    *openai.Usage
}

func (r GenerateResponse) Message() string {
	return strings.Join(r.Received, "")
}

// ReaderResult is what the crawl capability returns for a URL.
type ReaderResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// SummaryEntity is the fixed structured-extraction schema for one-shot
// page summaries.
type SummaryEntity struct {
	Title             string   `json:"title"`
	Link              string   `json:"link"`
	SubjectName       string   `json:"subject_name"`
	Summary           string   `json:"summary"`
	PublicationDate   string   `json:"publication_date"`
	Location          string   `json:"location"`
	ContactEmails     []string `json:"contact_emails"`
	Organizations     []string `json:"organizations"`
	FinancialMentions []string `json:"financial_mentions"`
	Projects          []string `json:"projects"`
	Locations         []string `json:"locations"`
}

// NumTokens counts request tokens the way the OpenAI cookbook does, so
// oversized retrieval contexts can be rejected before the model call.
func NumTokens(messages []openai.ChatCompletionMessage, model string) (numTokens int, err error) {
	var tokensPerMessage int
	switch model {
	case "gpt-3.5-turbo-0613",
		"gpt-3.5-turbo-16k-0613",
		"gpt-4-0314",
		"gpt-4-32k-0314",
		"gpt-4-0613",
		"gpt-4-32k-0613":
		tokensPerMessage = 3
	case "gpt-3.5-turbo-0301":
		tokensPerMessage = 4
	default:
		if strings.Contains(model, "gpt-4") {
			return NumTokens(messages, "gpt-4-0613")
		}
		return NumTokens(messages, "gpt-3.5-turbo-0613")
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return 0, fmt.Errorf("encoding for model: %w", err)
	}

	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
	}
	numTokens += 3 // every reply is primed with <|start|>assistant<|message|>
	return numTokens, nil
}
