package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GenerationError is a failure reported by the generative text service.
type GenerationError struct {
	Code    int
	Status  string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("gemini API error %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GeminiClient generates text with Google's Gemini API. Call Close when done.
type GeminiClient struct {
	client     *genai.Client
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	hc := &http.Client{}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{client: client, httpClient: hc}, nil
}

// GenerateText sends prompt to model and returns the concatenated text parts
// of the first candidate.
func (g *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &GenerationError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message, Err: err}
		}
		return "", &GenerationError{Err: err}
	}
	return resp.Text(), nil
}

// Close releases the connections held by the client.
func (g *GeminiClient) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}
