// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/nicodishanthj/inkspace/internal/common"
	"github.com/nicodishanthj/inkspace/internal/common/telemetry"
)

// completionTimeout bounds every upstream completion call.
const completionTimeout = 30 * time.Second

type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(opts ...option.RequestOption) *OpenAIProvider {
	model := os.Getenv("OPENAI_CHAT_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", model)
	return &OpenAIProvider{client: openai.NewClient(opts...), model: model}
}

func (o *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("no prompt provided")
	}
	logger := common.Logger()
	logger.Debug("llm: sending completion request", "model", o.model, "prompt_len", len(req.Prompt))
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(callCtx, params)
	telemetry.RecordCompletion(time.Since(start), err)
	if err != nil {
		mapped := mapCompletionError(err)
		logger.Error("llm: completion failed", "error", mapped)
		return "", mapped
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{StatusCode: http.StatusBadGateway, Body: "no choices returned"}
	}
	logger.Debug("llm: completion succeeded")
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapCompletionError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.Error())
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrPermission, apiErr.Error())
		default:
			return &ProviderError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err.Error())
	}
	return fmt.Errorf("%w: %s", ErrNetwork, err.Error())
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func (o *OpenAIProvider) Configured() bool {
	return true
}
