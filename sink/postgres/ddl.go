package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Konsultn-Engineering/rowkit/schema"
)

// columnTypes maps logical field types onto postgres column types.
var columnTypes = map[schema.FieldType]string{
	schema.TypeString:    "TEXT",
	schema.TypeBool:      "BOOLEAN",
	schema.TypeInt16:     "SMALLINT",
	schema.TypeInt32:     "INTEGER",
	schema.TypeInt64:     "BIGINT",
	schema.TypeFloat32:   "REAL",
	schema.TypeFloat64:   "DOUBLE PRECISION",
	schema.TypeBytes:     "BYTEA",
	schema.TypeTimestamp: "TIMESTAMPTZ",
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement whose
// columns mirror the schema's fields in order.
func CreateTableSQL(table string, rowType *schema.Schema) (string, error) {
	cols := make([]string, rowType.NumFields())
	for i := 0; i < rowType.NumFields(); i++ {
		f := rowType.Field(i)
		colType, ok := columnTypes[f.Type]
		if !ok {
			return "", fmt.Errorf("field %q: no postgres column type for %s", f.Name, f.Type)
		}
		cols[i] = pgx.Identifier{f.Name}.Sanitize() + " " + colType
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
	), nil
}

// EnsureTable creates the sink table for the schema if it does not exist.
func (s *Sink) EnsureTable(ctx context.Context, table string, rowType *schema.Schema) error {
	ddl, err := CreateTableSQL(table, rowType)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
