package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the model answers without any choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer is the text-completion collaborator every prompt-driven feature
// goes through.
type Completer interface {
	SubmitPrompt(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = `You are MedGemma, a compassionate AI assistant specializing in cardiac care support. You help patients and families with post-cardiac intervention care, medication management, and symptom guidance.

CRITICAL SAFETY GUIDELINES:
- Always emphasize when to contact healthcare providers
- For emergency symptoms (severe chest pain, difficulty breathing, loss of consciousness), immediately direct to call 911
- For concerning symptoms, direct to contact their cardiologist or care team
- Never provide specific medical diagnoses or treatment recommendations
- Always include appropriate medical disclaimers

Patient Context: Post-cardiac intervention patient (CABG surgery)
Current medications: Aspirin, Metoprolol, Atorvastatin
Known allergies: Penicillin, Shellfish`

const responseGuidelines = `Provide a helpful, empathetic response that includes:
1. Direct answer to their question
2. When to contact healthcare providers
3. Emergency warning signs if relevant
4. Appropriate medical disclaimers
5. Encouragement and emotional support

Keep response under 300 words, be warm and supportive, and prioritize patient safety.`

// GeminiConfig holds the settings for GeminiClient.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiClient talks to Gemini through its OpenAI-compatible endpoint.
type GeminiClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &GeminiClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// SubmitPrompt wraps prompt in the cardiac-care safety preamble and returns
// the first choice of the completion.
func (c *GeminiClient) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(prompt)},
		},
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func userMessage(prompt string) string {
	return fmt.Sprintf("User Question: %q\n\n%s", prompt, responseGuidelines)
}
