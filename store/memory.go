package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Memory is an in-process tree with the same path semantics as the
// Realtime Database. It backs the -dev server mode and the service tests.
// Values pass through a JSON round-trip on write so reads return the same
// shapes the Firebase client decodes (maps, slices, float64, bool, string).
type Memory struct {
	mu   sync.RWMutex
	root map[string]interface{}
}

func NewMemory() *Memory {
	return &Memory{root: make(map[string]interface{})}
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func (m *Memory) Get(_ context.Context, path string) (interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var node interface{} = m.root
	for _, seg := range splitPath(path) {
		switch v := node.(type) {
		case map[string]interface{}:
			node = v[seg]
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, nil
			}
			node = v[idx]
		default:
			return nil, nil
		}
		if node == nil {
			return nil, nil
		}
	}
	return node, nil
}

func (m *Memory) Set(_ context.Context, path string, value interface{}) error {
	normalized, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	segments := splitPath(path)
	if len(segments) == 0 {
		asMap, ok := normalized.(map[string]interface{})
		if !ok {
			return fmt.Errorf("root value must be an object")
		}
		m.root = asMap
		return nil
	}

	parent := m.parentOf(segments)
	parent[segments[len(segments)-1]] = normalized
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]interface{}) error {
	normalized, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	segments := splitPath(path)
	var target map[string]interface{}
	if len(segments) == 0 {
		target = m.root
	} else {
		parent := m.parentOf(segments)
		last := segments[len(segments)-1]
		existing, ok := parent[last].(map[string]interface{})
		if !ok {
			existing = make(map[string]interface{})
			parent[last] = existing
		}
		target = existing
	}

	for k, v := range normalized.(map[string]interface{}) {
		target[k] = v
	}
	return nil
}

// parentOf walks to the map holding the final segment, creating
// intermediate maps as needed. Callers must hold the write lock.
func (m *Memory) parentOf(segments []string) map[string]interface{} {
	node := m.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[seg] = child
		}
		node = child
	}
	return node
}

func normalize(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
