package handlers

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"marketpulse/internal/agent"
	"marketpulse/internal/logging"
)

type AgentRequest struct {
	Prompt string `json:"prompt"`
}

type AgentResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

type AgentHandler struct {
	agent Asker
	log   logrus.FieldLogger
}

func NewAgentHandler(a Asker, log logrus.FieldLogger) *AgentHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AgentHandler{agent: a, log: log}
}

// Handle answers one prompt. Model failures are returned as errors so the
// runtime can retry the invocation.
func (h *AgentHandler) Handle(ctx context.Context, req AgentRequest) (AgentResponse, error) {
	log := logging.FromContext(ctx, h.log)
	log.WithField("prompt_chars", len(req.Prompt)).Info("agent received query")

	reply, err := h.agent.Ask(ctx, req.Prompt)
	if errors.Is(err, agent.ErrEmptyPrompt) {
		return AgentResponse{Error: err.Error()}, nil
	}
	if err != nil {
		log.WithError(err).Error("agent invocation failed")
		return AgentResponse{}, err
	}
	return AgentResponse{Result: reply}, nil
}
