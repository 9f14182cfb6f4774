package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	logpkg "github.com/haneulpark/habit-diary/internal/logger"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default chat model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIImageModel is the default image model to use
	DefaultOpenAIImageModel = "dall-e-2"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	suggestionSystemPrompt = "당신은 웰빙 습관 추천 전문가입니다."
	summarySystemPrompt    = "당신은 따뜻한 말투로 하루를 정리해 주는 다이어리 작가입니다."

	// illustrationStyle is the fixed style preamble for diary images.
	illustrationStyle = `A warm, cozy colored pencil illustration with soft textures and subtle shading, resembling hand-drawn diary art.
Gentle, muted colors like orange, yellow, brown, and green.
The composition should feel peaceful and heartwarming, like a moment captured in a personal journal.
No humans should appear in the image.
The drawing should evoke quiet satisfaction and mindfulness.`
)

// ErrNoChoicesInResponse is returned when the API response has no choices
var ErrNoChoicesInResponse = errors.New("no choices in response")

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client     openai.Client
	model      string
	imageModel string
	logger     *zap.Logger
	debugMode  bool
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, "", nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey, baseURL, model, imageModel string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if imageModel == "" {
		imageModel = DefaultOpenAIImageModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:     client,
		model:      model,
		imageModel: imageModel,
		logger:     logger,
		debugMode:  debugMode,
	}
}

// SuggestHabits returns up to MaxSuggestions short habit suggestions that
// bridge the previous and next task. With no context at all, the built-in
// candidates are returned without a network call.
func (p *OpenAIProvider) SuggestHabits(ctx context.Context, prevTask, nextTask *string) ([]string, error) {
	var parts []string
	if prevTask != nil && *prevTask != "" {
		parts = append(parts, *prevTask)
	}
	if nextTask != nil && *nextTask != "" {
		parts = append(parts, *nextTask)
	}
	if len(parts) == 0 {
		return FallbackCandidates()[:MinSuggestions], nil
	}

	prompt := fmt.Sprintf(`사용자의 이전 행동과 다음 행동: %s
이 행동들 사이에 자연스럽게 연결할 수 있는 짧은 웰빙 습관을
1) 형식: N분(1~5분) + 활동 + 이모지
2) 공백 포함 12자 이내
3) 3개 이상 5개 이하
4) 리스트 기호, 설명 등 불필요한 요소 없음
예시: 3분 스트레칭💪`, strings.Join(parts, ", "))

	content, err := p.complete(ctx, "suggest_habits", suggestionSystemPrompt, prompt)
	if err != nil {
		return FallbackCandidates()[:MinSuggestions], err
	}

	return PadSuggestions(ParseSuggestions(content)), nil
}

// SummarizeDay turns the completed task list into a short warm summary.
func (p *OpenAIProvider) SummarizeDay(ctx context.Context, tasks []string) (string, error) {
	if len(tasks) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(`다음은 사용자의 오늘 달성한 습관 및 일과 목록입니다:
%s
이 내용을 바탕으로 따뜻하고 긍정적인 응원의 메시지와 함께 짧게 요약해 주세요.`, strings.Join(tasks, ", "))

	content, err := p.complete(ctx, "summarize_day", summarySystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// GenerateIllustration composes the fixed style preamble with the focus and
// activity text and returns the generated image URL.
func (p *OpenAIProvider) GenerateIllustration(ctx context.Context, focus string, tasks []string) (string, error) {
	prompt := fmt.Sprintf("%s\n\n🎯 Focus on: %s\n📝 Activities today: %s",
		illustrationStyle, focus, strings.Join(tasks, ", "))

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_illustration"),
			zap.String("model", p.imageModel),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", logpkg.SanitizeDebugContent(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.imageModel),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize256x256,
	})
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "generate_illustration"),
				zap.String("model", p.imageModel),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to generate illustration: %w", apiErr)
		}
		return "", fmt.Errorf("failed to generate illustration: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("no image URL in response")
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "generate_illustration"),
			zap.String("model", p.imageModel),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return resp.Data[0].URL, nil
}

// complete sends one chat completion and returns the first choice's content.
func (p *OpenAIProvider) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(200),
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", logpkg.SanitizeDebugContent(userPrompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to complete %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to complete %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", logpkg.SanitizeDebugContent(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
