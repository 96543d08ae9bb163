package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sirupsen/logrus"

	"marketpulse/internal/calendar"
	"marketpulse/internal/catalog"
	"marketpulse/internal/logging"
)

type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type WindowArchiver interface {
	WriteWindow(ctx context.Context, w *calendar.HolidayWindow) (string, error)
}

type PartitionRepairer interface {
	Repair(ctx context.Context) (*catalog.RepairResult, error)
}

// CalendarDigest runs on a schedule and fans the upcoming closures for each
// configured country out to SNS and the S3 archive.
type CalendarDigest struct {
	src       calendar.Source
	countries []string
	daysAhead int

	sns      Publisher
	topicArn string
	archiver WindowArchiver
	repairer PartitionRepairer

	now func() time.Time
	log logrus.FieldLogger
}

type DigestOptions struct {
	Countries []string
	DaysAhead int
	TopicArn  string
	Publisher Publisher
	Archiver  WindowArchiver
	Repairer  PartitionRepairer
}

func NewCalendarDigest(src calendar.Source, opts DigestOptions, log logrus.FieldLogger) *CalendarDigest {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CalendarDigest{
		src:       src,
		countries: opts.Countries,
		daysAhead: opts.DaysAhead,
		sns:       opts.Publisher,
		topicArn:  strings.TrimSpace(opts.TopicArn),
		archiver:  opts.Archiver,
		repairer:  opts.Repairer,
		now:       time.Now,
		log:       log,
	}
}

func (d *CalendarDigest) Handle(ctx context.Context, ev events.CloudWatchEvent) (map[string]any, error) {
	log := logging.FromContext(ctx, d.log).WithField("event_id", ev.ID)
	now := d.now()

	published, archived, failed := 0, 0, 0
	for _, cc := range d.countries {
		clog := log.WithField("country_code", cc)

		w, err := calendar.ComputeWindow(ctx, cc, d.daysAhead, now, d.src)
		if err != nil {
			clog.WithError(err).Warn("digest: compute window failed")
			failed++
			continue
		}

		if d.sns != nil && d.topicArn != "" {
			subject, message := buildDigestMessage(w)
			if _, err := d.sns.Publish(ctx, &sns.PublishInput{
				TopicArn: aws.String(d.topicArn),
				Subject:  aws.String(subject),
				Message:  aws.String(message),
			}); err != nil {
				clog.WithError(err).Warn("digest: sns publish failed")
				failed++
				continue
			}
			published++
		}

		if d.archiver != nil {
			key, err := d.archiver.WriteWindow(ctx, w)
			if err != nil {
				clog.WithError(err).Warn("digest: archive failed")
				failed++
				continue
			}
			if key != "" {
				archived++
				clog.WithField("key", key).Debug("digest: archived")
			}
		}
	}

	// new dt= partitions are invisible to Athena until registered
	repaired := false
	if d.repairer != nil && archived > 0 {
		if res, err := d.repairer.Repair(ctx); err != nil {
			log.WithError(err).Warn("digest: partition repair failed")
		} else {
			repaired = true
			log.WithField("query_id", res.QueryID).Debug("digest: partitions repaired")
		}
	}

	log.WithFields(logrus.Fields{
		"countries": len(d.countries),
		"published": published,
		"archived":  archived,
		"failed":    failed,
		"repaired":  repaired,
	}).Info("digest complete")

	return map[string]any{
		"ok":        true,
		"countries": len(d.countries),
		"published": published,
		"archived":  archived,
		"failed":    failed,
		"repaired":  repaired,
	}, nil
}

func buildDigestMessage(w *calendar.HolidayWindow) (subject string, body string) {
	subject = fmt.Sprintf("MarketPulse: market closures (%s)", w.CountryCode)

	lines := []string{
		"MarketPulse Market Calendar",
		"",
		fmt.Sprintf("Country: %s", w.CountryCode),
		fmt.Sprintf("Period: %s to %s", w.PeriodStart, w.PeriodEnd),
		"",
	}
	for _, h := range w.Holidays {
		lines = append(lines, fmt.Sprintf("- %s  %s", h.Date, h.Name))
	}
	if len(w.Holidays) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, w.Advisory)
	return subject, strings.Join(lines, "\n")
}
