// Package gsm provides a secrets.Store backed by Google Secret Manager.
package gsm

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Store reads secret versions from Google Secret Manager.
type Store struct {
	client *secretmanager.Client
}

// New creates a Store using application default credentials. Extra client
// options are passed through to the underlying API client.
func New(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gsm: create client: %w", err)
	}
	return &Store{client: client}, nil
}

// AccessLatest fetches the latest version of the named secret in the project.
func (s *Store) AccessLatest(ctx context.Context, project, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	}
	resp, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("gsm: access secret %q: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

// Close releases the underlying API client connection.
func (s *Store) Close() error {
	return s.client.Close()
}
