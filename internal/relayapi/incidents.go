package relayapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/pagerelay/internal/relay"
)

type triggerRequest struct {
	Summary       string         `json:"summary"`
	Severity      string         `json:"severity"`
	Source        string         `json:"source"`
	CustomDetails map[string]any `json:"custom_details"`
	DedupKey      string         `json:"dedup_key"`
}

type triggerResponse struct {
	ID       string        `json:"id"`
	DedupKey string        `json:"dedup_key,omitempty"`
	Outcome  relay.Outcome `json:"outcome"`
}

func (a *API) handleTriggerIncident(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Summary == "" {
		http.Error(w, `{"error":"summary is required"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("pagerelay.dedup_key", req.DedupKey),
		attribute.String("pagerelay.severity", req.Severity),
	)

	d, err := a.svc.Trigger(r.Context(), &relay.TriggerRequest{
		Summary:       req.Summary,
		Severity:      req.Severity,
		Source:        req.Source,
		CustomDetails: req.CustomDetails,
		DedupKey:      req.DedupKey,
	})
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to record trigger delivery")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, triggerResponse{
		ID:       d.ID,
		DedupKey: d.DedupKey,
		Outcome:  d.Outcome,
	})
}

type resolveRequest struct {
	Summary string `json:"summary"`
}

type resolveResponse struct {
	ID       string `json:"id"`
	Resolved bool   `json:"resolved"`
}

func (a *API) handleResolveIncident(w http.ResponseWriter, r *http.Request) {
	dedupKey := chi.URLParam(r, "dedupKey")

	// Body is optional; an empty body means no resolution summary.
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("pagerelay.dedup_key", dedupKey))

	d, err := a.svc.Resolve(r.Context(), dedupKey, req.Summary)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to record resolve delivery", "dedup_key", dedupKey)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		ID:       d.ID,
		Resolved: d.Outcome == relay.OutcomeDelivered,
	})
}
