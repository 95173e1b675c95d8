package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/degacms/dega/internal/core/domain"
)

// MemoryIndex is an in-process Index used when no search server is
// configured, and in tests. Matching is case-insensitive substring match
// over name, slug and description.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]Document)}
}

func memoryKey(kind domain.Kind, id string) string {
	return string(kind) + "/" + id
}

func (m *MemoryIndex) Upsert(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[memoryKey(doc.Kind, doc.ID)] = doc
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, kind domain.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, memoryKey(kind, id))
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, kind domain.Kind, clientID, query string, page, size int) ([]string, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)

	var matched []Document
	for _, doc := range m.docs {
		if doc.Kind != kind {
			continue
		}
		if clientID != "" && doc.ClientID != clientID {
			continue
		}
		if needle == "" || memoryMatches(doc, needle) {
			matched = append(matched, doc)
		}
	}

	// Deterministic order so paging is stable.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	ids := make([]string, 0, end-start)
	for _, doc := range matched[start:end] {
		ids = append(ids, doc.ID)
	}
	return ids, total, nil
}

func (m *MemoryIndex) Ping(_ context.Context) error {
	return nil
}

func memoryMatches(doc Document, needle string) bool {
	return strings.Contains(strings.ToLower(doc.Name), needle) ||
		strings.Contains(strings.ToLower(doc.Slug), needle) ||
		strings.Contains(strings.ToLower(doc.Description), needle)
}
