// Package gemini wraps the Google GenAI SDK for the two calls the tracker
// needs: a text prompt, and a prompt with one inline image.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ContentGenerator is the slice of the genai Models service used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends prompts to one Gemini model.
type Client struct {
	models ContentGenerator
	model  string
}

// NewClient creates a Client using the environment's credentials
// (GOOGLE_API_KEY or Vertex AI application default credentials).
func NewClient(ctx context.Context, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewClient: create genai client: %w", err)
	}
	return NewClientWithGenerator(client.Models, model), nil
}

// NewClientWithGenerator creates a Client over an existing generator.
func NewClientWithGenerator(models ContentGenerator, model string) *Client {
	return &Client{models: models, model: model}
}

// ModelName returns the model the client talks to.
func (c *Client) ModelName() string {
	return c.model
}

// GenerateText sends a text-only prompt and returns the reply text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	return c.generate(ctx, "GenerateText", contents)
}

// GenerateWithImage sends a prompt plus one inline image.
func (c *Client) GenerateWithImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("GenerateWithImage: empty image")
	}
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}
	return c.generate(ctx, "GenerateWithImage", contents)
}

func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%s: generate content: %w", op, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%s: nil response from model", op)
	}
	return resp.Text(), nil
}
