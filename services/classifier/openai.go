package classifiersvc

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

const systemPrompt = `You split a short narrative into sentences and label each sentence.
Label "Show" for descriptive, scene-setting sentences and "Tell" for interpretive or explanatory ones.
Keep every sentence, in its original order; do not drop, merge or rewrite anything.
Respond with a JSON object of the form {"sentences": [{"text": "...", "label": "Show"}, ...]}.`

// openAIService labels sentences through an OpenAI-compatible chat endpoint.
// A custom base URL lets the same client talk to a locally served model.
type openAIService struct {
	api   *openai.Client
	model string
}

var _ story.Classifier = (*openAIService)(nil)

func NewOpenAIService(conf *core.Config) *openAIService {
	cfg := openai.DefaultConfig(conf.Classifier.APIKey)
	if conf.Classifier.BaseURL != "" {
		cfg.BaseURL = conf.Classifier.BaseURL
	}
	return &openAIService{
		api:   openai.NewClientWithConfig(cfg),
		model: conf.Classifier.Model,
	}
}

type classifyResponse struct {
	Sentences []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"sentences"`
}

func (svc *openAIService) Classify(ctx context.Context, text string) ([]story.Sentence, error) {
	resp, err := svc.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: svc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	var parsed classifyResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse classifier response: %w (raw: %s)", err, raw)
	}

	sentences := make([]story.Sentence, 0, len(parsed.Sentences))
	for i, s := range parsed.Sentences {
		label := story.Label(s.Label)
		if !label.Valid() {
			return nil, fmt.Errorf("classifier returned unknown label %q for sentence %d", s.Label, i)
		}
		sentences = append(sentences, story.Sentence{Index: i, Text: s.Text, Label: label})
	}
	return sentences, nil
}
