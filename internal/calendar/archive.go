package calendar

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// HolidayRow matches the Glue/Athena table columns of the holiday archive.
type HolidayRow struct {
	CountryCode  string `parquet:"name=country_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	HolidayDate  string `parquet:"name=holiday_date, type=BYTE_ARRAY, convertedtype=UTF8"` // YYYY-MM-DD
	Name         string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsTradingDay bool   `parquet:"name=is_trading_day, type=BOOLEAN"`
	PeriodStart  string `parquet:"name=period_start, type=BYTE_ARRAY, convertedtype=UTF8"`
	PeriodEnd    string `parquet:"name=period_end, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Column and partition names of the archive table, in HolidayRow order.
var (
	ArchiveColumns       = []string{"country_code", "holiday_date", "name", "is_trading_day", "period_start", "period_end"}
	ArchivePartitionKeys = []string{"country", "dt"}
)

type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes computed windows to S3 as Parquet, one row per holiday, under
//
//	<prefix>country=<CC>/dt=<period_start>/holidays-<period_end>.parquet
//
// A rerun for the same window overwrites the object instead of adding rows.
type Archiver struct {
	s3     ObjectPutter
	bucket string
	prefix string
}

func NewArchiver(s3c ObjectPutter, bucket, prefix string) *Archiver {
	if prefix == "" {
		prefix = "holidays/"
	}
	return &Archiver{s3: s3c, bucket: strings.TrimSpace(bucket), prefix: ensureTrailingSlash(prefix)}
}

// WriteWindow returns the object key written, or "" when the window has no holidays.
func (a *Archiver) WriteWindow(ctx context.Context, w *HolidayWindow) (string, error) {
	if a.bucket == "" {
		return "", fmt.Errorf("archive bucket not configured")
	}
	if w == nil || len(w.Holidays) == 0 {
		return "", nil
	}

	rows := make([]HolidayRow, 0, len(w.Holidays))
	for _, h := range w.Holidays {
		rows = append(rows, HolidayRow{
			CountryCode:  w.CountryCode,
			HolidayDate:  h.Date.String(),
			Name:         h.Name,
			IsTradingDay: h.IsTradingDay,
			PeriodStart:  w.PeriodStart.String(),
			PeriodEnd:    w.PeriodEnd.String(),
		})
	}

	data, err := encodeParquet(rows)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%scountry=%s/dt=%s/holidays-%s.parquet",
		a.prefix, w.CountryCode, w.PeriodStart.String(), w.PeriodEnd.String())

	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("s3 putobject failed: %w", err)
	}
	return key, nil
}

func encodeParquet(rows []HolidayRow) ([]byte, error) {
	localPath := filepath.Join(os.TempDir(), "holidays_"+randHex(8)+".parquet")
	defer func() { _ = os.Remove(localPath) }()

	fw, err := local.NewLocalFileWriter(localPath)
	if err != nil {
		return nil, fmt.Errorf("parquet file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(HolidayRow), 1)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.PageSize = 8 * 1024
	pw.CompressionType = 0 // uncompressed

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return nil, fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("parquet write stop: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("parquet close: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read parquet tmp: %w", err)
	}
	return data, nil
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
