package store

import "context"

// Store is a path-addressed tree store. Paths are slash-joined segments,
// e.g. "electricity_usage/prod-1/2025-07-14/08". Get returns the decoded
// JSON value at the path: map[string]interface{} for objects,
// []interface{} for arrays, float64/bool/string for leaves, and nil when
// nothing is stored there.
type Store interface {
	Get(ctx context.Context, path string) (interface{}, error)
	Set(ctx context.Context, path string, value interface{}) error
	Update(ctx context.Context, path string, fields map[string]interface{}) error
}
