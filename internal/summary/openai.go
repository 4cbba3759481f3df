package summary

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const DefaultPrompt = "Retell this news story for a child aged 8-12 in two or three short sentences. " +
	"Use simple words, no scary details."

// Пересказ статьи простыми словами для детей
type OpenAISummarizer struct {
	client *openai.Client
	prompt string
	// Без ключа пересказ выключен, Summarize возвращает пустую строку
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey, prompt string) *OpenAISummarizer {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	s := &OpenAISummarizer{
		client:  openai.NewClient(apiKey),
		prompt:  prompt,
		enabled: apiKey != "",
	}

	log.Printf("[INFO] openai summarizer enabled: %v", s.enabled)

	return s
}

func (s *OpenAISummarizer) Enabled() bool {
	return s.enabled
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if !s.enabled || strings.TrimSpace(text) == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   200,
		Temperature: 0.5,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return trimToSentence(resp.Choices[0].Message.Content), nil
}

// Ответ может оборваться по лимиту токенов посреди предложения, отрезаем хвост
func trimToSentence(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") || strings.HasSuffix(raw, "!") || strings.HasSuffix(raw, "?") {
		return raw
	}

	idx := strings.LastIndexAny(raw, ".!?")
	if idx < 0 {
		return raw
	}

	return raw[:idx+1]
}
