package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// memory implements Service in process. It backs local runs and tests.
type memory struct {
	mu    sync.RWMutex
	order map[string][]string
	docs  map[string]map[string]map[string]any
}

// NewMemory creates an empty in-memory data service.
func NewMemory() Service {
	return &memory{
		order: make(map[string][]string),
		docs:  make(map[string]map[string]map[string]any),
	}
}

func (m *memory) List(_ context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]json.RawMessage, 0, len(m.order[collection]))
	for _, id := range m.order[collection] {
		doc := m.docs[collection][id]
		if !Matches(doc, filter) {
			continue
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (m *memory) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return json.Marshal(doc)
}

func (m *memory) Create(_ context.Context, collection string, doc any) (json.RawMessage, error) {
	fields, err := Fields(doc)
	if err != nil {
		return nil, err
	}
	id := AssignID(fields)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[collection][id]; exists {
		return nil, fmt.Errorf("document %s/%s already exists", collection, id)
	}
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]map[string]any)
	}
	m.docs[collection][id] = fields
	m.order[collection] = append(m.order[collection], id)
	return json.Marshal(fields)
}

func (m *memory) Replace(_ context.Context, collection, id string, doc any) (json.RawMessage, error) {
	fields, err := Fields(doc)
	if err != nil {
		return nil, err
	}
	fields["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[collection][id]; !ok {
		return nil, ErrNotFound
	}
	m.docs[collection][id] = fields
	return json.Marshal(fields)
}

func (m *memory) Patch(_ context.Context, collection, id string, patch map[string]any) (json.RawMessage, error) {
	fields, err := Fields(patch)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return json.Marshal(doc)
}

func (m *memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.docs[collection], id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Fields normalises any JSON-encodable value into a top-level field map.
func Fields(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return fields, nil
}

// AssignID returns the document's "id", generating one when absent.
func AssignID(fields map[string]any) string {
	if id, ok := fields["id"].(string); ok && id != "" {
		return id
	}
	id := uuid.New().String()
	fields["id"] = id
	return id
}

// Matches reports whether every filter field equals the document's field
// rendered as text.
func Matches(doc map[string]any, filter Filter) bool {
	for k, want := range filter {
		if fieldText(doc[k]) != want {
			return false
		}
	}
	return true
}

func fieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
