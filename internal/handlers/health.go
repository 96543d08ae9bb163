package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"

	"marketpulse/internal/config"
)

type HealthResponse struct {
	OK      bool     `json:"ok"`
	Service string   `json:"service"`
	Tools   []string `json:"tools"`
}

type HealthHandler struct {
	tools config.ToolConfig
}

func NewHealthHandler(tools config.ToolConfig) *HealthHandler {
	return &HealthHandler{tools: tools}
}

func (h *HealthHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(200, HealthResponse{
		OK:      true,
		Service: "marketpulse",
		Tools:   h.tools.Enabled(),
	})
}
