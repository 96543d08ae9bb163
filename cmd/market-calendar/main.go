package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"marketpulse/internal/calendar"
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

	nager := calendar.NewNagerClient(cfg.Calendar.NagerBaseURL, cfg.Calendar.Timeout, logger)
	src := calendar.NewCachedSource(nager, dynamodb.NewFromConfig(awsCfg), cfg.Calendar.CacheTable, cfg.Calendar.CacheTTL, logger)

	h := handlers.NewCalendarHandler(src, cfg.Calendar.DefaultCountry, cfg.Calendar.DefaultDaysAhead, cfg.Calendar.MaxDaysAhead, logger)
	lambda.Start(h.Handle)
}
