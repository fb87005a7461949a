// Package relayapi exposes the incident relay over HTTP.
package relayapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/pagerelay/internal/relay"
)

// RelayService defines the business operations relayapi needs.
type RelayService interface {
	Trigger(ctx context.Context, req *relay.TriggerRequest) (*relay.Delivery, error)
	Resolve(ctx context.Context, dedupKey, summary string) (*relay.Delivery, error)
	Get(ctx context.Context, id string) (*relay.Delivery, bool, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*relay.Delivery, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    RelayService
}

// New creates a new API handler.
func New(logger log.Logger, svc RelayService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("relay service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/incidents", a.handleTriggerIncident)
		r.Post("/incidents/{dedupKey}/resolve", a.handleResolveIncident)
		r.Get("/incidents/{dedupKey}", a.handleGetIncident)
		r.Get("/deliveries/{id}", a.handleGetDelivery)
	})
}

func (a *API) handleGetDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("pagerelay.delivery.id", id))

	d, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get delivery", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (a *API) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	dedupKey := chi.URLParam(r, "dedupKey")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("pagerelay.dedup_key", dedupKey))

	d, ok, err := a.svc.GetByDedupKey(r.Context(), dedupKey)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get incident delivery", "dedup_key", dedupKey)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with encode errors here
	_ = json.NewEncoder(w).Encode(v)
}
