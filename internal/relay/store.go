package relay

import "context"

// Store is the persistence interface for delivery records.
type Store interface {
	Get(ctx context.Context, id string) (*Delivery, bool, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*Delivery, bool, error)
	Put(ctx context.Context, d *Delivery) error
}
