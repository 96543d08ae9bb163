package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/sirupsen/logrus"
)

type AthenaClient interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
}

type Options struct {
	Database       string
	Table          string
	Workgroup      string
	OutputLocation string // s3://bucket/prefix/

	// Columns and PartitionKeys are checked against Glue before repairing when a GlueClient is set.
	Columns       []string
	PartitionKeys []string

	MaxWait      time.Duration
	PollInterval time.Duration
}

type RepairResult struct {
	QueryID string `json:"query_id,omitempty"`
	State   string `json:"state,omitempty"`
}

type AthenaError struct {
	State            string
	Reason           string
	QueryExecutionID string
}

func (e *AthenaError) Error() string {
	return fmt.Sprintf("athena %s: %s (qid=%s)", e.State, e.Reason, e.QueryExecutionID)
}

// Registrar makes newly archived partitions visible to Athena.
type Registrar struct {
	athena AthenaClient
	glue   GlueClient
	opts   Options
	log    logrus.FieldLogger
	sleep  func(time.Duration)
}

func NewRegistrar(ath AthenaClient, gl GlueClient, opts Options, log logrus.FieldLogger) (*Registrar, error) {
	opts.Database = strings.TrimSpace(opts.Database)
	opts.Table = strings.TrimSpace(opts.Table)
	opts.OutputLocation = strings.TrimSpace(opts.OutputLocation)
	if opts.Database == "" || opts.Table == "" || opts.OutputLocation == "" {
		return nil, fmt.Errorf("athena database, table and output location are required")
	}
	if !strings.HasPrefix(opts.OutputLocation, "s3://") {
		return nil, fmt.Errorf("athena output location must start with s3://")
	}
	if strings.TrimSpace(opts.Workgroup) == "" {
		opts.Workgroup = "primary"
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 60 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registrar{athena: ath, glue: gl, opts: opts, log: log, sleep: time.Sleep}, nil
}

// Repair runs MSCK REPAIR TABLE and waits for it to finish.
func (r *Registrar) Repair(ctx context.Context) (*RepairResult, error) {
	if r.glue != nil {
		schema, err := LoadTableSchema(ctx, r.glue, r.opts.Database, r.opts.Table)
		if err != nil {
			return nil, err
		}
		if err := schema.Check(r.opts.Columns, r.opts.PartitionKeys); err != nil {
			return nil, err
		}
	}

	startOut, err := r.athena.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(fmt.Sprintf("MSCK REPAIR TABLE %s", r.opts.Table)),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(r.opts.Database),
		},
		WorkGroup: aws.String(r.opts.Workgroup),
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(r.opts.OutputLocation),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("StartQueryExecution: %w", err)
	}

	qid := aws.ToString(startOut.QueryExecutionId)
	log := r.log.WithFields(logrus.Fields{"query_id": qid, "table": r.opts.Database + "." + r.opts.Table})
	log.Info("partition repair started")

	deadline := time.Now().Add(r.opts.MaxWait)
	for time.Now().Before(deadline) {
		st, err := r.athena.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(qid),
		})
		if err != nil {
			return &RepairResult{QueryID: qid}, fmt.Errorf("GetQueryExecution: %w", err)
		}

		var state athenatypes.QueryExecutionState
		var reason string
		if qe := st.QueryExecution; qe != nil && qe.Status != nil {
			state = qe.Status.State
			reason = aws.ToString(qe.Status.StateChangeReason)
		}

		switch state {
		case athenatypes.QueryExecutionStateSucceeded:
			log.Info("partition repair succeeded")
			return &RepairResult{QueryID: qid, State: string(state)}, nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			return &RepairResult{QueryID: qid, State: string(state)},
				&AthenaError{State: string(state), Reason: reason, QueryExecutionID: qid}
		}

		if err := ctx.Err(); err != nil {
			return &RepairResult{QueryID: qid}, err
		}
		r.sleep(r.opts.PollInterval)
	}

	return &RepairResult{QueryID: qid, State: "TIMEOUT"}, fmt.Errorf("repair timed out waiting for qid=%s", qid)
}
