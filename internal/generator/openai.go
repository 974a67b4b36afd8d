package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenAIModel  = "gpt-4o-mini"
	maxCompletionTokens = 300
)

// OpenAIModel describes images through the chat completions API, passing the
// image by URL.
type OpenAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel builds a client with SDK retries disabled; Generator owns
// the retry policy.
func NewOpenAIModel(apiKey, model string, opts ...option.RequestOption) *OpenAIModel {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &OpenAIModel{client: openai.NewClient(opts...), model: model}
}

func (o *OpenAIModel) Name() string { return o.model }

func (o *OpenAIModel) Describe(ctx context.Context, imageURL, prompt string) Completion {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    imageURL,
					Detail: "auto",
				}),
			}),
		},
		MaxTokens: openai.Int(maxCompletionTokens),
	})
	if err != nil {
		return classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return Failed(errors.New("no response from OpenAI"))
	}
	return Succeeded(resp.Choices[0].Message.Content)
}

func classifyOpenAIError(err error) Completion {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return RateLimited(err)
	}
	return Failed(fmt.Errorf("failed to create chat completion: %w", err))
}
