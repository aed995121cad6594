// Package commentary generates the optional AI market-commentary paragraph
// for a report's notes section. Commentary is strictly best-effort: the
// service layer drops it on any failure so a report can always be built.
package commentary

import (
	"context"
	"fmt"
	"strings"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// Generator produces market commentary for a subject and its valuation.
type Generator interface {
	// MarketCommentary returns a short commentary paragraph, or "" when
	// commentary is disabled.
	MarketCommentary(ctx context.Context, subject models.Property, valuation models.Valuation, compCount int) (string, error)
}

// OpenAIGenerator is the production Generator backed by the OpenAI chat
// completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a Generator. When apiKey is empty the
// returned generator is disabled and always yields empty commentary.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	g := &OpenAIGenerator{model: model}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

// MarketCommentary asks the model for a short paragraph summarizing the
// subject's position relative to its comps.
func (g *OpenAIGenerator) MarketCommentary(ctx context.Context, subject models.Property, valuation models.Valuation, compCount int) (string, error) {
	if g.client == nil {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short comparative market analysis commentary (under 120 words) for %s, a %s listed at $%s with %d bedrooms and %s bathrooms.",
		subject.FullAddress(), subject.Type.Label(), subject.Price.StringFixed(0), subject.Bedrooms, subject.Bathrooms)
	fmt.Fprintf(&sb, " The analysis found %d comparable properties.", compCount)
	if valuation.ARV != nil {
		fmt.Fprintf(&sb, " The estimated after-repair value is $%s.", valuation.ARV.StringFixed(0))
	} else {
		sb.WriteString(" No sold comparables were available, so no value estimate was computed.")
	}
	sb.WriteString(" Use neutral, factual language and do not invent sale data.")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a real estate analyst writing brief CMA report commentary.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: sb.String(),
			},
		},
		MaxTokens: 220,
	})
	if err != nil {
		return "", fmt.Errorf("commentary request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("commentary request returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
