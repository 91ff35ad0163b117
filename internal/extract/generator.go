package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

// Generator is the outbound text-generation call, abstracted so tests can
// substitute canned responses for the real model.
type Generator interface {
	// Generate sends the instructions plus the user's free text and
	// returns the raw model output.
	Generate(ctx context.Context, instructions, userText string) (string, error)
}

// GeminiGenerator is the production Generator on the GenAI SDK. Credentials
// come from the environment (GEMINI_API_KEY or application default
// credentials), same as the rest of the Google stack.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates the client once; it is safe for concurrent use.
func NewGeminiGenerator(ctx context.Context) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: DefaultModelName}, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, instructions, userText string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: instructions},
				{Text: userText},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return rawText, nil
}
