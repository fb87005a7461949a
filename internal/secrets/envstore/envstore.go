// Package envstore provides a secrets.Store backed by environment
// variables. Suitable for dev/testing where no secret manager is available.
package envstore

import (
	"context"
	"fmt"
	"os"
)

// Store resolves secrets from the process environment. The project argument
// is ignored: env vars have no project scoping.
type Store struct {
	prefix string
}

// New initializes a Store. prefix is prepended to every secret name when
// building the env var name; pass "" to look names up as-is.
func New(prefix string) *Store {
	return &Store{prefix: prefix}
}

// AccessLatest reads the env var named prefix+name.
func (s *Store) AccessLatest(_ context.Context, _ string, name string) (string, error) {
	key := s.prefix + name
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("envstore: %s not set", key)
	}
	return v, nil
}
