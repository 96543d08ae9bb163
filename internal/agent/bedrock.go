package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/sirupsen/logrus"

	"marketpulse/internal/config"
)

const (
	DefaultModelID   = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	DefaultMaxTokens = 1024
)

var ErrEmptyPrompt = errors.New("prompt is required")

type BedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Agent answers one prompt per call. It keeps no history between calls.
type Agent struct {
	client    BedrockClient
	modelID   string
	maxTokens int
	system    string
	log       logrus.FieldLogger
}

func New(client BedrockClient, modelID string, maxTokens int, tools config.ToolConfig, log logrus.FieldLogger) *Agent {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		modelID = DefaultModelID
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Agent{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		system:    BuildSystemPrompt(tools),
		log:       log,
	}
}

func (a *Agent) ModelID() string { return a.modelID }

func (a *Agent) SystemPrompt() string { return a.system }

// Ask sends prompt with the system prompt and returns the first text block of the reply.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	// Anthropic messages schema as accepted by Bedrock for Claude models.
	payload := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        a.maxTokens,
		"system":            a.system,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal bedrock payload: %w", err)
	}

	a.log.WithFields(logrus.Fields{"model_id": a.modelID, "prompt_chars": len(prompt)}).Info("invoking model")

	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock InvokeModel: %w", err)
	}

	var raw struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.Unmarshal(out.Body, &raw); err != nil {
		return "", fmt.Errorf("bedrock response unmarshal: %w", err)
	}

	for _, c := range raw.Content {
		if c.Type == "text" {
			a.log.WithField("stop_reason", raw.StopReason).Debug("model replied")
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("bedrock response had no text content; raw=%s", truncate(string(out.Body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
