package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// FakeStore is a stateful in-memory Store for tests. It mirrors the Postgres
// implementation's observable behavior, including creation-timestamp
// preservation on upsert and the batch size ceiling.
type FakeStore struct {
	mu          sync.RWMutex
	collections map[string]*FakeCollection
	now         func() time.Time
}

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		collections: make(map[string]*FakeCollection),
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source, for tests asserting on times.
func (s *FakeStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	for _, c := range s.collections {
		c.now = now
	}
}

func (s *FakeStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c
	}
	c := &FakeCollection{docs: make(map[string]Document), now: s.now}
	s.collections[name] = c
	return c
}

func (s *FakeStore) Close() {}

// FakeCollection is the in-memory Collection behind FakeStore.
type FakeCollection struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time

	// PutErr, when set, fails the next write. Lets tests exercise
	// batch-write failure paths.
	PutErr error
}

func (c *FakeCollection) Get(ctx context.Context, id string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (c *FakeCollection) Put(ctx context.Context, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PutErr != nil {
		err := c.PutErr
		c.PutErr = nil
		return err
	}
	c.putLocked(doc)
	return nil
}

func (c *FakeCollection) BulkPut(ctx context.Context, docs []Document) error {
	if len(docs) > MaxBatchSize {
		return fmt.Errorf("%w: %d documents", ErrBatchTooLarge, len(docs))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PutErr != nil {
		err := c.PutErr
		c.PutErr = nil
		return err
	}
	for _, doc := range docs {
		c.putLocked(doc)
	}
	return nil
}

func (c *FakeCollection) putLocked(doc Document) {
	now := c.now()
	if existing, ok := c.docs[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	c.docs[doc.ID] = doc
}

func (c *FakeCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	c.mu.RLock()
	matched := make([]Document, 0, len(c.docs))
	for _, doc := range c.docs {
		ok, err := matches(doc, q.Conds)
		if err != nil {
			c.mu.RUnlock()
			return nil, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	orderBy := q.OrderBy
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		if orderBy == "" {
			less = matched[i].ID < matched[j].ID
		} else if q.OrderNumeric {
			less = numericField(matched[i], orderBy) < numericField(matched[j], orderBy)
		} else {
			less = stringField(matched[i], orderBy) < stringField(matched[j], orderBy)
		}
		if q.Desc {
			return !less
		}
		return less
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (c *FakeCollection) Count(ctx context.Context, conds ...Condition) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, doc := range c.docs {
		ok, err := matches(doc, conds)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func (c *FakeCollection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	return nil
}

// Len returns the number of stored documents.
func (c *FakeCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func matches(doc Document, conds []Condition) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		return false, err
	}
	for _, cond := range conds {
		if !evaluate(fields[cond.Field], cond) {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(fieldValue any, cond Condition) bool {
	if isNumeric(cond.Value) {
		fv, ok := toFloat(fieldValue)
		if !ok {
			return false
		}
		cv, _ := toFloat(cond.Value)
		switch cond.Op {
		case OpEq:
			return fv == cv
		case OpGt:
			return fv > cv
		case OpGte:
			return fv >= cv
		case OpLt:
			return fv < cv
		case OpLte:
			return fv <= cv
		}
		return false
	}

	fv, ok := fieldValue.(string)
	if !ok {
		return false
	}
	cv := fmt.Sprintf("%v", cond.Value)
	switch cond.Op {
	case OpEq:
		return fv == cv
	case OpGt:
		return fv > cv
	case OpGte:
		return fv >= cv
	case OpLt:
		return fv < cv
	case OpLte:
		return fv <= cv
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(doc Document, field string) string {
	var fields map[string]any
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		return ""
	}
	if s, ok := fields[field].(string); ok {
		return strings.ToLower(s)
	}
	return ""
}

func numericField(doc Document, field string) float64 {
	var fields map[string]any
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		return 0
	}
	f, _ := toFloat(fields[field])
	return f
}
