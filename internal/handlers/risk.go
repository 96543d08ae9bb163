package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"marketpulse/internal/logging"
	"marketpulse/internal/suitability"
)

// RiskRequest is the flat event the gateway target sends.
type RiskRequest struct {
	Ticker      string `json:"ticker"`
	RiskProfile string `json:"risk_profile"`
}

// GatewayResponse is the statusCode/body envelope the gateway target expects.
// Body holds a JSON document, not a nested object.
type GatewayResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type RiskHandler struct {
	log logrus.FieldLogger
}

func NewRiskHandler(log logrus.FieldLogger) *RiskHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RiskHandler{log: log}
}

func (h *RiskHandler) Handle(ctx context.Context, req RiskRequest) (GatewayResponse, error) {
	log := logging.FromContext(ctx, h.log)
	log.WithFields(logrus.Fields{"ticker": req.Ticker, "risk_profile": req.RiskProfile}).Info("risk assessment requested")

	res, err := suitability.NewScorer(log).Assess(req.Ticker, req.RiskProfile)
	if err != nil {
		var ve *suitability.ValidationError
		if errors.As(err, &ve) {
			return gatewayResp(400, map[string]any{"error": ve.Reason}), nil
		}
		log.WithError(err).Error("assessment failed")
		return gatewayResp(500, map[string]any{"error": "internal error"}), nil
	}
	return gatewayResp(200, res), nil
}

func gatewayResp(status int, v any) GatewayResponse {
	b, _ := json.Marshal(v)
	return GatewayResponse{StatusCode: status, Body: string(b)}
}
