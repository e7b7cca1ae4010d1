// Package analysis produces an assessment of a finished scan. With an API
// key configured it asks an OpenAI model to review the exported report;
// without one it falls back to the local heuristic risk summary.
package analysis

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zfrkrc/pentaas-oneclick/core"
	"github.com/zfrkrc/pentaas-oneclick/models"
)

const maxTokens = 2048

const systemPrompt = `You are a penetration test analyst. You are given the raw CSV report of an automated scan.
Summarize the overall risk posture in at most five sentences, call out the most urgent findings first,
and finish with one line of recommended next steps. Plain text only.`

type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer returns a nil Analyzer when no API key is configured; callers
// then fall back to Heuristic.
func NewAnalyzer(apiKey, model string) *Analyzer {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Analyzer{client: openai.NewClient(apiKey), model: model}
}

// Analyze sends the report text for review and returns the model's
// assessment.
func (a *Analyzer) Analyze(ctx context.Context, reportText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: reportText},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(a.model, "o1") || strings.HasPrefix(a.model, "o3") || strings.HasPrefix(a.model, "o4") || strings.HasPrefix(a.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Heuristic is the offline assessment: the local one-line risk digest.
func Heuristic(result *models.ScanResult) string {
	return core.RiskSummary(result)
}
