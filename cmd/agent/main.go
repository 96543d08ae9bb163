package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"marketpulse/internal/agent"
	"marketpulse/internal/config"
	"marketpulse/internal/handlers"
	"marketpulse/internal/logging"
)

func main() {
	ctx := context.Background()
	logger := logging.New("info")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.WithError(err).Fatal("load aws config")
	}

	cfg, err := config.LoadWithParameters(ctx, ssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	logger = logging.New(cfg.LogLevel)

	a := agent.New(bedrockruntime.NewFromConfig(awsCfg), cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens, cfg.Tools, logger)
	logger.WithField("model_id", a.ModelID()).WithField("tools", cfg.Tools.Enabled()).Info("agent ready")

	h := handlers.NewAgentHandler(a, logger)
	lambda.Start(h.Handle)
}
