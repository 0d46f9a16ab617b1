package sqlpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const schemaCacheKey = "sqlpipe:schema"

// ColumnInfo describes one column of an allowed table.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// TableSchema maps table name to its columns, in ordinal order.
type TableSchema map[string][]ColumnInfo

// SchemaInspector reads the live schema of the allowed tables so the
// statement generator can be prompted with real column names. The result
// is cached in Redis since the schema changes rarely.
type SchemaInspector struct {
	pool          *pgxpool.Pool
	redis         *redis.Client
	allowedTables []string
	cacheTTL      time.Duration
}

func NewSchemaInspector(pool *pgxpool.Pool, redisClient *redis.Client, allowedTables []string, cacheTTL time.Duration) *SchemaInspector {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &SchemaInspector{
		pool:          pool,
		redis:         redisClient,
		allowedTables: allowedTables,
		cacheTTL:      cacheTTL,
	}
}

func (s *SchemaInspector) Inspect(ctx context.Context) (TableSchema, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, schemaCacheKey).Result(); err == nil {
			var schema TableSchema
			if err := json.Unmarshal([]byte(cached), &schema); err == nil {
				return schema, nil
			}
			// Corrupt cache entry, fall through to a fresh read.
		}
	}

	schema, err := s.readSchema(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(schema); err == nil {
			s.redis.Set(ctx, schemaCacheKey, payload, s.cacheTTL)
		}
	}

	return schema, nil
}

func (s *SchemaInspector) readSchema(ctx context.Context) (TableSchema, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = ANY($1)
		ORDER BY table_name, ordinal_position`,
		s.allowedTables,
	)
	if err != nil {
		return nil, fmt.Errorf("read information_schema: %w", err)
	}
	defer rows.Close()

	schema := make(TableSchema)
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		schema[table] = append(schema[table], ColumnInfo{Name: column, DataType: dataType})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema rows: %w", err)
	}

	return schema, nil
}

// Describe renders the schema as prompt text for the statement generator.
func (s TableSchema) Describe() string {
	var b strings.Builder
	for table, columns := range s {
		b.WriteString("Table ")
		b.WriteString(table)
		b.WriteString(":\n")
		for _, col := range columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", col.Name, col.DataType)
		}
	}
	return b.String()
}
