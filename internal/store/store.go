package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// MaxBatchSize is the store-imposed ceiling on a single batched write.
const MaxBatchSize = 500

// ErrNotFound is returned by Get for a missing document. Callers treat it as
// a normal absence, not a failure.
var ErrNotFound = errors.New("document not found")

// ErrBatchTooLarge is returned when a bulk write exceeds MaxBatchSize.
var ErrBatchTooLarge = errors.New("bulk write exceeds batch size ceiling")

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// Condition is one equality/range filter on a top-level document field.
// Numeric comparisons are used when Value is a number.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Where is shorthand for building a condition.
func Where(field string, op Op, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Query describes a filtered, ordered, bounded scan.
type Query struct {
	Conds        []Condition
	OrderBy      string
	OrderNumeric bool
	Desc         bool
	Limit        int
	Offset       int
}

// Document is one stored record. Data is the JSON document body.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDocument marshals v into a document with the given id.
func NewDocument(id string, v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

// Decode unmarshals a document body into T.
func Decode[T any](doc Document) (T, error) {
	var v T
	err := json.Unmarshal(doc.Data, &v)
	return v, err
}

// DecodeAll unmarshals a slice of documents into []T, skipping nothing:
// a single undecodable document fails the whole call.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := Decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Collection is a keyed document collection for one entity type. It supports
// get-by-id, equality/range filtering, ordered scans, counting and batched
// writes capped at MaxBatchSize. It has no free-text search.
type Collection interface {
	Get(ctx context.Context, id string) (*Document, error)
	Put(ctx context.Context, doc Document) error
	BulkPut(ctx context.Context, docs []Document) error
	Find(ctx context.Context, q Query) ([]Document, error)
	Count(ctx context.Context, conds ...Condition) (int, error)
	Delete(ctx context.Context, id string) error
}

// Store hands out named collections.
type Store interface {
	Collection(name string) Collection
	Close()
}

// Collection names used across the service.
const (
	CollectionItems        = "catalog_items"
	CollectionOutlets      = "outlets"
	CollectionAvailability = "availability"
	CollectionSyncRuns     = "sync_runs"
	CollectionRatings      = "external_ratings"
)
