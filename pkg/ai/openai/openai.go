package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/opencurrent/opencurrent/pkg/ai"
)

const (
	NAME = "openai"
)

type Driver struct {
	client *openai.Client
	model  ai.ModelName
}

func New(token, proxy string, model ai.ModelName) *Driver {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	if model.ChatModel == "" {
		model.ChatModel = openai.GPT4oMini
	}
	if model.EmbeddingModel == "" {
		model.EmbeddingModel = string(openai.LargeEmbedding3)
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *Driver) embedding(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	slog.Debug("Embedding", slog.String("driver", NAME))
	queryReq := openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(s.model.EmbeddingModel),
		Dimensions: 1024,
	}

	var (
		groups   [][]string
		result   [][]float32
		batchMax = 6
	)

	for i, v := range content {
		if i%batchMax == 0 {
			groups = append(groups, []string{})
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], v)
	}

	r := ai.EmbeddingResult{
		Usage: &openai.Usage{},
	}
	for _, v := range groups {
		queryReq.Input = v
		resp, err := s.client.CreateEmbeddings(ctx, queryReq)
		if err != nil {
			return r, fmt.Errorf("Error creating embedding: %w", err)
		}
		for _, v := range resp.Data {
			result = append(result, v.Embedding)
		}

		r.Usage.CompletionTokens += resp.Usage.CompletionTokens
		r.Usage.PromptTokens += resp.Usage.PromptTokens
		r.Usage.TotalTokens += resp.Usage.TotalTokens
		r.Model = string(resp.Model)
	}

	r.Data = result

	return r, nil
}

func (s *Driver) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return s.embedding(ctx, content)
}

func (s *Driver) EmbeddingForDocument(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return s.embedding(ctx, content)
}

// Generate runs a plain completion over the assembled prompt.
func (s *Driver) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	var result ai.GenerateResponse
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil || len(resp.Choices) != 1 {
		return result, fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", s.model.ChatModel))

	result.Received = append(result.Received, resp.Choices[0].Message.Content)
	result.Model = resp.Model
	result.Usage = &resp.Usage

	return result, nil
}

const ExtractFuncName = "extract_page_summary"

// Extract asks the model to fill the fixed summary schema through a tool
// call, which is how structured output stays parseable.
func (s *Driver) Extract(ctx context.Context, content string) (*ai.SummaryEntity, error) {
	slog.Debug("Extract", slog.String("driver", NAME))

	stringArray := &jsonschema.Definition{Type: jsonschema.String}
	params := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {
				Type:        jsonschema.String,
				Description: "The page title, empty when the content has none.",
			},
			"subject_name": {
				Type:        jsonschema.String,
				Description: "The primary subject the page is about: a person, product, organization or topic name.",
			},
			"summary": {
				Type:        jsonschema.String,
				Description: "A concise summary covering the main topics, key points and conclusions of the page.",
			},
			"publication_date": {
				Type:        jsonschema.String,
				Description: "Publication date mentioned on the page, empty when none is stated.",
			},
			"location": {
				Type:        jsonschema.String,
				Description: "The primary location the page relates to, empty when none is stated.",
			},
			"contact_emails": {
				Type:        jsonschema.Array,
				Description: "Contact email addresses found in the content.",
				Items:       stringArray,
			},
			"organizations": {
				Type:        jsonschema.Array,
				Description: "Organizations mentioned in the content.",
				Items:       stringArray,
			},
			"financial_mentions": {
				Type:        jsonschema.Array,
				Description: "Monetary amounts, funding rounds or other financial mentions.",
				Items:       stringArray,
			},
			"projects": {
				Type:        jsonschema.Array,
				Description: "Named projects or initiatives mentioned in the content.",
				Items:       stringArray,
			},
			"locations": {
				Type:        jsonschema.Array,
				Description: "All locations mentioned in the content.",
				Items:       stringArray,
			},
		},
		Required: []string{"subject_name", "summary"},
	}

	t := openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ExtractFuncName,
			Description: "Extract a structured summary of a web page.",
			Parameters:  params,
		},
	}

	dialogue := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: ai.PROMPT_EXTRACT_EN},
		{Role: openai.ChatMessageRoleUser, Content: content},
	}

	resp, err := s.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{
			Model:    s.model.ChatModel,
			Messages: dialogue,
			Tools:    []openai.Tool{t},
		},
	)
	if err != nil || len(resp.Choices) != 1 {
		return nil, fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	for _, v := range resp.Choices[0].Message.ToolCalls {
		if v.Function.Name != ExtractFuncName {
			continue
		}
		var entity ai.SummaryEntity
		if err = json.Unmarshal([]byte(v.Function.Arguments), &entity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal func call arguments of SummaryEntity, %w", err)
		}
		return &entity, nil
	}

	return nil, fmt.Errorf("model returned no %s tool call", ExtractFuncName)
}
