// Package secrets resolves named secrets scoped to a cloud project.
package secrets

import "context"

// Store resolves the latest version of a named secret within a project.
// Implementations must be safe for concurrent use.
type Store interface {
	AccessLatest(ctx context.Context, project, name string) (string, error)
}

// StoreFunc adapts a plain function to Store.
type StoreFunc func(ctx context.Context, project, name string) (string, error)

// AccessLatest implements Store.
func (f StoreFunc) AccessLatest(ctx context.Context, project, name string) (string, error) {
	return f(ctx, project, name)
}
