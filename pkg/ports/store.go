package ports

import (
	"context"

	"github.com/aretw0/pious/pkg/domain"
)

// TreeInfoStore shares tree facts between sessions and processes. Keys
// identify one version of a tree file; entries never expire because a
// rewritten file gets a new key.
type TreeInfoStore interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) (domain.TreeInfo, error)

	Put(ctx context.Context, key string, info domain.TreeInfo) error

	Delete(ctx context.Context, key string) error
}
