package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore keeps every collection in a single documents table
// (collection, id, data jsonb). Filters compile to jsonb field expressions.
type postgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a document store backed by the given pool.
func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name}
}

func (s *postgresStore) Close() {
	s.db.Close()
}

type postgresCollection struct {
	db   *pgxpool.Pool
	name string
}

func (c *postgresCollection) Get(ctx context.Context, id string) (*Document, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var doc Document
	err := c.db.QueryRow(ctx, query, c.name, id).Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	return &doc, nil
}

func (c *postgresCollection) Put(ctx context.Context, doc Document) error {
	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	_, err := c.db.Exec(ctx, query, c.name, doc.ID, doc.Data)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, doc.ID, err)
	}
	return nil
}

func (c *postgresCollection) BulkPut(ctx context.Context, docs []Document) error {
	if len(docs) > MaxBatchSize {
		return fmt.Errorf("%w: %d documents", ErrBatchTooLarge, len(docs))
	}
	if len(docs) == 0 {
		return nil
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, doc := range docs {
		batch.Queue(query, c.name, doc.ID, doc.Data)
	}

	results := c.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range docs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("bulk put %s (doc %d/%d): %w", c.name, i+1, len(docs), err)
		}
	}
	return nil
}

func (c *postgresCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1`)

	args := []any{c.name}
	argNum := 2

	for _, cond := range q.Conds {
		expr, err := fieldExpr(cond)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, " AND %s $%d", expr, argNum)
		args = append(args, cond.Value)
		argNum++
	}

	if q.OrderBy != "" {
		field := quoteField(q.OrderBy)
		if q.OrderNumeric {
			fmt.Fprintf(&sb, " ORDER BY (data->>%s)::numeric", field)
		} else {
			fmt.Fprintf(&sb, " ORDER BY data->>%s", field)
		}
		if q.Desc {
			sb.WriteString(" DESC")
		}
	} else {
		sb.WriteString(" ORDER BY id")
	}

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", argNum)
		args = append(args, q.Limit)
		argNum++
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET $%d", argNum)
		args = append(args, q.Offset)
	}

	rows, err := c.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (c *postgresCollection) Count(ctx context.Context, conds ...Condition) (int, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM documents WHERE collection = $1`)

	args := []any{c.name}
	argNum := 2

	for _, cond := range conds {
		expr, err := fieldExpr(cond)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&sb, " AND %s $%d", expr, argNum)
		args = append(args, cond.Value)
		argNum++
	}

	var count int
	if err := c.db.QueryRow(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return count, nil
}

func (c *postgresCollection) Delete(ctx context.Context, id string) error {
	_, err := c.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, c.name, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

// fieldExpr compiles a condition's left-hand side, casting to numeric when
// the compared value is a number.
func fieldExpr(cond Condition) (string, error) {
	op, ok := sqlOps[cond.Op]
	if !ok {
		return "", fmt.Errorf("unsupported operator %q", cond.Op)
	}
	field := quoteField(cond.Field)
	if isNumeric(cond.Value) {
		return fmt.Sprintf("(data->>%s)::numeric %s", field, op), nil
	}
	return fmt.Sprintf("data->>%s %s", field, op), nil
}

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// quoteField renders a field name as a SQL string literal. Field names come
// from code, never from user input, but quoting keeps the builder safe anyway.
func quoteField(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
