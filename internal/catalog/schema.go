package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

type GlueClient interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

type TableSchema struct {
	Database   string
	Table      string
	Location   string
	Columns    []string
	Partitions []string
}

// SchemaMismatchError means the catalog table cannot read what the archive writes.
type SchemaMismatchError struct {
	Table   string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("glue table %s is missing %s", e.Table, strings.Join(e.Missing, ", "))
}

func LoadTableSchema(ctx context.Context, c GlueClient, database, table string) (*TableSchema, error) {
	out, err := c.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return nil, fmt.Errorf("glue GetTable %s.%s: %w", database, table, err)
	}
	if out.Table == nil {
		return nil, fmt.Errorf("glue GetTable %s.%s: empty table", database, table)
	}

	ti := out.Table
	schema := &TableSchema{
		Database: database,
		Table:    aws.ToString(ti.Name),
	}
	if sd := ti.StorageDescriptor; sd != nil {
		schema.Location = aws.ToString(sd.Location)
		for _, col := range sd.Columns {
			schema.Columns = append(schema.Columns, strings.ToLower(aws.ToString(col.Name)))
		}
	}
	for _, p := range ti.PartitionKeys {
		schema.Partitions = append(schema.Partitions, strings.ToLower(aws.ToString(p.Name)))
	}
	return schema, nil
}

// Check reports which of the wanted columns and partition keys the table lacks.
func (s *TableSchema) Check(columns, partitions []string) error {
	var missing []string
	missing = append(missing, absent(s.Columns, columns)...)
	for _, p := range absent(s.Partitions, partitions) {
		missing = append(missing, "partition "+p)
	}
	if len(missing) > 0 {
		return &SchemaMismatchError{Table: s.Database + "." + s.Table, Missing: missing}
	}
	return nil
}

func absent(have, want []string) []string {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	var out []string
	for _, w := range want {
		if !set[strings.ToLower(w)] {
			out = append(out, w)
		}
	}
	return out
}
