package relay

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/pagerelay/internal/pagerduty"
)

// Pager is the subset of the PagerDuty client the relay needs. The client's
// contract holds here: calls report failure via return values, never errors.
type Pager interface {
	Ready() bool
	Trigger(ctx context.Context, summary string, opts pagerduty.TriggerOptions) (string, bool)
	Resolve(ctx context.Context, dedupKey, summary string) bool
}

// TriggerRequest carries the caller-supplied fields of a trigger event.
// Zero Severity and Source fall back to the client defaults.
type TriggerRequest struct {
	Summary       string
	Severity      string
	Source        string
	CustomDetails map[string]any
	DedupKey      string
}

// Service is the business boundary for relaying incident events. Pager
// failures are recorded as data (Delivery.Outcome), not returned as errors;
// only store failures propagate.
type Service struct {
	store   Store
	pager   Pager
	logger  log.Logger
	metrics *Metrics
}

// NewService creates a new relay service. metrics may be nil (tests).
func NewService(store Store, pager Pager, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:   store,
		pager:   pager,
		logger:  logger,
		metrics: metrics,
	}
}

// Trigger sends a trigger event and records the attempt.
func (s *Service) Trigger(ctx context.Context, req *TriggerRequest) (*Delivery, error) {
	d := &Delivery{
		ID:        ulid.Make().String(),
		Action:    pagerduty.ActionTrigger,
		DedupKey:  req.DedupKey,
		Summary:   req.Summary,
		Severity:  req.Severity,
		Source:    req.Source,
		CreatedAt: time.Now(),
	}

	if !s.pager.Ready() {
		s.metrics.IncNotReady()
	}

	key, ok := s.pager.Trigger(ctx, req.Summary, pagerduty.TriggerOptions{
		Severity:      req.Severity,
		Source:        req.Source,
		CustomDetails: req.CustomDetails,
		DedupKey:      req.DedupKey,
	})

	s.finish(d, ok)
	if ok {
		d.DedupKey = key
	}

	if err := s.store.Put(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "trigger relayed",
		"delivery_id", d.ID,
		"dedup_key", d.DedupKey,
		"outcome", d.Outcome,
	)
	return d, nil
}

// Resolve sends a resolve event for dedupKey and records the attempt.
func (s *Service) Resolve(ctx context.Context, dedupKey, summary string) (*Delivery, error) {
	d := &Delivery{
		ID:        ulid.Make().String(),
		Action:    pagerduty.ActionResolve,
		DedupKey:  dedupKey,
		Summary:   summary,
		CreatedAt: time.Now(),
	}

	if !s.pager.Ready() {
		s.metrics.IncNotReady()
	}

	ok := s.pager.Resolve(ctx, dedupKey, summary)
	s.finish(d, ok)

	if err := s.store.Put(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "resolve relayed",
		"delivery_id", d.ID,
		"dedup_key", dedupKey,
		"outcome", d.Outcome,
	)
	return d, nil
}

// Get retrieves a delivery record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Delivery, bool, error) {
	return s.store.Get(ctx, id)
}

// GetByDedupKey retrieves the latest delivery for an incident dedup key.
func (s *Service) GetByDedupKey(ctx context.Context, dedupKey string) (*Delivery, bool, error) {
	return s.store.GetByDedupKey(ctx, dedupKey)
}

func (s *Service) finish(d *Delivery, ok bool) {
	d.CompletedAt = time.Now()
	d.Duration = d.CompletedAt.Sub(d.CreatedAt).Seconds()
	d.Outcome = OutcomeFailed
	if ok {
		d.Outcome = OutcomeDelivered
	}
	s.metrics.Observe(d)
}
