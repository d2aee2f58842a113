package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Ramsey-B/fern/pkg/models"
)

const systemPrompt = "You must respond with valid JSON only. Do not include any text outside the JSON object."

const fieldPrompt = `Extract the contact details from this business card text.
Return a JSON object with the keys full_name, company, job_title, emails, phones, websites, address and logos.
emails, phones, websites and logos are arrays of strings. Use "" or [] for anything missing.

Card text:
%s`

// LLMParser parses card text into fields with an OpenAI chat model
type LLMParser struct {
	client *openai.Client
	model  openai.ChatModel
	logger ectologger.Logger
}

// NewLLMParser creates a new parser. An empty model uses gpt-4o-mini.
func NewLLMParser(apiKey, model string, logger ectologger.Logger) *LLMParser {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	chatModel := openai.ChatModelGPT4oMini
	if model != "" {
		chatModel = openai.ChatModel(model)
	}
	return &LLMParser{
		client: &client,
		model:  chatModel,
		logger: logger,
	}
}

// Parse asks the model for the card's fields
func (p *LLMParser) Parse(ctx context.Context, text string) (models.RawExtraction, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf(fieldPrompt, text)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return models.RawExtraction{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.RawExtraction{}, fmt.Errorf("no choices in OpenAI response")
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"model":             p.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("OpenAI response received")

	record, err := ParseFields(resp.Choices[0].Message.Content)
	if err != nil {
		return models.RawExtraction{}, err
	}
	record.Text = text
	return record, nil
}

// ParseFields decodes the model's JSON answer. Prose or code fences around
// the object are ignored.
func ParseFields(content string) (models.RawExtraction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return models.RawExtraction{}, fmt.Errorf("no JSON object in model response")
	}

	var record models.RawExtraction
	if err := json.Unmarshal([]byte(content[start:end+1]), &record); err != nil {
		return models.RawExtraction{}, fmt.Errorf("failed to decode model response: %w", err)
	}

	// the model does not know the filename and must not invent OCR text
	record.Filename = ""
	record.Text = ""
	return record, nil
}
