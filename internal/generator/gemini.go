package generator

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	fallbackImageMIME  = "image/jpeg"
)

// GeminiModel describes images through GenerateContent with a URI part.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (g *GeminiModel) Name() string { return g.model }

func (g *GeminiModel) Describe(ctx context.Context, imageURL, prompt string) Completion {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromURI(imageURL, imageMIMEType(imageURL)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return classifyGeminiError(err)
	}
	if len(result.Candidates) == 0 {
		return Failed(errors.New("no response from Gemini"))
	}
	return Succeeded(result.Text())
}

func classifyGeminiError(err error) Completion {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isResourceExhausted(apiErr) {
		return RateLimited(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && isResourceExhausted(*apiErrPtr) {
		return RateLimited(err)
	}
	return Failed(fmt.Errorf("failed to generate content: %w", err))
}

func isResourceExhausted(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}

// imageMIMEType guesses the MIME type from the URL path extension.
func imageMIMEType(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == ".jpg" {
		return "image/jpeg"
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return fallbackImageMIME
}
