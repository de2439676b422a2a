// Package ai provides an OpenAI-backed implementation of the scoring
// strategy. It is a drop-in replacement for the heuristic engine when an API
// key is configured.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sota-ai/sotanews/internal/models"
	"github.com/sota-ai/sotanews/internal/scoring"
)

type OpenAIAnalyzer struct {
	client openai.Client
	model  string
}

type analysisResponse struct {
	Score    float64  `json:"importance_score"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Insights []string `json:"key_insights"`
}

func NewOpenAIAnalyzer(apiKey string) *OpenAIAnalyzer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAnalyzer{client: client, model: "gpt-4o-mini"}
}

// Analyze implements scoring.Analyzer over the OpenAI chat API. The model's
// score is clamped to [0, 1] and mapped to a tier with the same thresholds
// as the heuristic engine.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, article models.Article) (models.ScoredArticle, error) {
	prompt := buildAnalysisPrompt(article)

	response, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You are an AI news analyst. Score articles for importance and extract structured analysis data."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		return models.ScoredArticle{}, fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return models.ScoredArticle{}, fmt.Errorf("no response from openai")
	}

	var analysis analysisResponse
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &analysis); err != nil {
		return models.ScoredArticle{}, fmt.Errorf("failed to parse openai response: %w", err)
	}

	score := analysis.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	summary := analysis.Summary
	if summary == "" {
		summary = scoring.Summarize(article.Content, 200)
	}

	tags := analysis.Tags
	if len(tags) > 5 {
		tags = tags[:5]
	}
	insights := analysis.Insights
	if len(insights) > 2 {
		insights = insights[:2]
	}

	return models.ScoredArticle{
		Article:  article,
		Score:    score,
		Tier:     scoring.TierFor(score),
		Summary:  summary,
		Tags:     tags,
		Insights: insights,
	}, nil
}

func buildAnalysisPrompt(article models.Article) string {
	return fmt.Sprintf(`Analyze this AI news article. Respond with JSON only:
{"importance_score": 0.0-1.0, "summary": "1-2 sentence summary", "tags": ["tag1", "tag2"], "key_insights": ["insight1", "insight2"]}

Title: %s
Content: %s
Source: %s`, article.Title, article.Content, article.Source)
}
