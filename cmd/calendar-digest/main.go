package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"marketpulse/internal/calendar"
	"marketpulse/internal/catalog"
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

	opts := handlers.DigestOptions{
		Countries: cfg.Digest.Countries,
		DaysAhead: cfg.Digest.DaysAhead,
		TopicArn:  cfg.Digest.TopicArn,
		Publisher: sns.NewFromConfig(awsCfg),
	}
	// a nil interface, not a typed nil, when archiving is off
	if cfg.Archive.Bucket != "" {
		opts.Archiver = calendar.NewArchiver(s3.NewFromConfig(awsCfg), cfg.Archive.Bucket, cfg.Archive.Prefix)
	}
	if opts.Archiver != nil && cfg.Archive.Athena.Enabled() {
		reg, err := catalog.NewRegistrar(athena.NewFromConfig(awsCfg), glue.NewFromConfig(awsCfg), catalog.Options{
			Database:       cfg.Archive.Athena.Database,
			Table:          cfg.Archive.Athena.Table,
			Workgroup:      cfg.Archive.Athena.Workgroup,
			OutputLocation: cfg.Archive.Athena.Output,
			Columns:        calendar.ArchiveColumns,
			PartitionKeys:  calendar.ArchivePartitionKeys,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("configure partition registrar")
		}
		opts.Repairer = reg
	}

	h := handlers.NewCalendarDigest(src, opts, logger)
	lambda.Start(h.Handle)
}
