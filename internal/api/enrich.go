package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/enrich"
	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/internal/store"
)

// handleEnrichCompany streams enrichment progress over SSE. The stream
// itself is the error channel: every failure, including a bad ID or a
// missing company, becomes a terminal error event on a 200 response.
func (s *Server) handleEnrichCompany(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	send := func(ev enrich.Event) bool {
		frame, err := enrich.MarshalEvent(ev)
		if err != nil {
			zap.L().Error("marshal enrichment event", zap.Error(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	id, ok := parseID(r, "id")
	if !ok {
		send(enrich.ErrorEvent{Message: "Invalid company ID"})
		return
	}

	var body struct {
		Name    string `json:"name"`
		Website string `json:"website"`
	}
	// An empty or malformed body falls back to the stored company.
	_ = json.NewDecoder(r.Body).Decode(&body)

	// The run outlives the request: a client disconnect stops the writes
	// but must not cancel in-flight fetch, search, or model calls.
	runCtx := context.WithoutCancel(r.Context())

	company, err := s.store.GetCompany(runCtx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			send(enrich.ErrorEvent{Message: "Company not found"})
		} else {
			zap.L().Error("load company for enrichment", zap.Error(err))
			send(enrich.ErrorEvent{Message: "Failed to run enrichment"})
		}
		return
	}

	in := enrich.Input{Name: body.Name, Website: body.Website, Existing: company}
	if in.Name == "" {
		in.Name = company.Name
	}

	events, err := s.enricher.Stream(runCtx, in)
	if err != nil {
		zap.L().Warn("enrichment rejected", zap.Int64("company_id", id), zap.Error(err))
		send(enrich.ErrorEvent{Message: err.Error()})
		return
	}

	// Drain to completion even if the client goes away: the run is not
	// cancellation-aware and the audit record should still be written.
	clientGone := false
	for ev := range events {
		if !clientGone {
			clientGone = !send(ev)
		}
		if terminal, ok := ev.(enrich.Suggestions); ok && terminal.Data != nil {
			s.recordRun(runCtx, id, *terminal.Data)
		}
	}
}

func (s *Server) recordRun(ctx context.Context, companyID int64, suggestion model.CompanyInput) {
	run, err := s.store.CreateEnrichmentRun(ctx, companyID, suggestion)
	if err != nil {
		zap.L().Warn("record enrichment run", zap.Int64("company_id", companyID), zap.Error(err))
		return
	}
	zap.L().Info("enrichment run recorded",
		zap.String("run_id", run.ID),
		zap.Int64("company_id", companyID),
	)
}
