package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tenantvolt/backend/store"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// failingStore wraps a memory store and fails reads whose path contains
// any of the given fragments.
type failingStore struct {
	*store.Memory
	failOn []string
}

func (f *failingStore) Get(ctx context.Context, path string) (interface{}, error) {
	for _, fragment := range f.failOn {
		if strings.Contains(path, fragment) {
			return nil, fmt.Errorf("simulated store failure for %s", path)
		}
	}
	return f.Memory.Get(ctx, path)
}

func mustSet(st store.Store, path string, value interface{}) {
	if err := st.Set(context.Background(), path, value); err != nil {
		panic(err)
	}
}
