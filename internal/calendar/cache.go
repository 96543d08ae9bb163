package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const DefaultCacheTTL = 24 * time.Hour

type CacheClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type cacheItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Payload   string `dynamodbav:"Payload"`
	CreatedAt int64  `dynamodbav:"CreatedAt"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt"`
}

// CachedSource keeps successful per-year fetches in a DynamoDB table with a TTL
// attribute. Cache problems are logged and fall through to the wrapped source.
type CachedSource struct {
	next  Source
	ddb   CacheClient
	table string
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewCachedSource(next Source, ddb CacheClient, table string, ttl time.Duration, log logrus.FieldLogger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedSource{
		next:  next,
		ddb:   ddb,
		table: strings.TrimSpace(table),
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

func cachePK(countryCode string) string { return "HOLIDAYS#" + strings.ToUpper(countryCode) }
func cacheSK(year int) string           { return fmt.Sprintf("YEAR#%d", year) }

func (c *CachedSource) FetchYear(ctx context.Context, year int, countryCode string) ([]HolidayRecord, error) {
	if c.table == "" {
		return c.next.FetchYear(ctx, year, countryCode)
	}
	log := c.log.WithFields(logrus.Fields{"year": year, "country_code": countryCode})

	recs, ok, err := c.get(ctx, year, countryCode)
	if err != nil {
		log.WithError(err).Warn("holiday cache read failed")
	}
	if ok {
		log.Debug("holiday cache hit")
		return recs, nil
	}

	recs, err = c.next.FetchYear(ctx, year, countryCode)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, year, countryCode, recs); err != nil {
		log.WithError(err).Warn("holiday cache write failed")
	}
	return recs, nil
}

func (c *CachedSource) get(ctx context.Context, year int, countryCode string) ([]HolidayRecord, bool, error) {
	out, err := c.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: cachePK(countryCode)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: cacheSK(year)},
		},
		ConsistentRead: aws.Bool(false),
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache GetItem: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal: %w", err)
	}
	// DynamoDB TTL deletion is lazy
	if item.ExpiresAt > 0 && c.now().Unix() >= item.ExpiresAt {
		return nil, false, nil
	}

	var recs []HolidayRecord
	if err := json.Unmarshal([]byte(item.Payload), &recs); err != nil {
		return nil, false, fmt.Errorf("cache payload: %w", err)
	}
	return recs, true, nil
}

func (c *CachedSource) put(ctx context.Context, year int, countryCode string, recs []HolidayRecord) error {
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache payload: %w", err)
	}
	now := c.now().UTC()
	av, err := attributevalue.MarshalMap(cacheItem{
		PK:        cachePK(countryCode),
		SK:        cacheSK(year),
		Payload:   string(b),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(c.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	if _, err := c.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("cache PutItem: %w", err)
	}
	return nil
}
