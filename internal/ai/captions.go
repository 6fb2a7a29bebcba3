// Package ai generates post captions with Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/onyxdrift/backend/internal/metrics"
	"github.com/onyxdrift/backend/pkg/breaker"
)

const captionPrompt = `Create 3 short, viral, and edgy social media captions for this topic: %q. ` +
	`Use a futuristic/cyberpunk tone, include 2 trending hashtags, and keep it under 20 words.`

var (
	ErrNotConfigured = errors.New("caption generator is not configured")
	ErrUnavailable   = errors.New("caption generator is temporarily unavailable")
	ErrEmptyResponse = errors.New("caption generator returned no text")
)

// Captions is the generator output: the raw text plus the individual lines
type Captions struct {
	Text        string   `json:"captions"`
	Suggestions []string `json:"suggestions"`
}

type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// CaptionGenerator asks a Gemini model for captions behind a circuit breaker
type CaptionGenerator struct {
	models  contentModel
	model   string
	breaker *gobreaker.CircuitBreaker[string]
	log     *zap.Logger
}

// NewCaptionGenerator creates a Gemini client. Without an API key every call
// fails with ErrNotConfigured.
func NewCaptionGenerator(ctx context.Context, apiKey, model string, log *zap.Logger) (*CaptionGenerator, error) {
	log = log.Named("ai")
	if apiKey == "" {
		log.Warn("gemini api key missing, captions disabled")
		return newCaptionGenerator(nil, model, log), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return newCaptionGenerator(client.Models, model, log), nil
}

func newCaptionGenerator(models contentModel, model string, log *zap.Logger) *CaptionGenerator {
	return &CaptionGenerator{
		models:  models,
		model:   model,
		breaker: breaker.New[string]("gemini", breaker.Settings{}, log),
		log:     log,
	}
}

// Generate returns captions for topic
func (g *CaptionGenerator) Generate(ctx context.Context, topic string) (*Captions, error) {
	if g.models == nil {
		return nil, ErrNotConfigured
	}

	text, err := g.breaker.Execute(func() (string, error) {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(captionPrompt, topic)), nil)
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	})
	metrics.RecordExternal("gemini", "generate_caption", err)
	if err != nil {
		if breaker.IsOpen(err) {
			return nil, ErrUnavailable
		}
		g.log.Error("caption generation failed", zap.Error(err))
		return nil, fmt.Errorf("generate captions: %w", err)
	}

	return &Captions{Text: text, Suggestions: SplitCaptions(text)}, nil
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// SplitCaptions breaks model output into individual captions, dropping list
// markers, surrounding quotes and blank lines
func SplitCaptions(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"*`)
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
