package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/itza2k/kore/internal/advice"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/httputil"
)

type AdviceRequest struct {
	Query  string `json:"query"`
	APIKey string `json:"api_key,omitempty"`
}

func (s *Server) GetActivities(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"activities": s.tracker.Activities(),
	})
	logger.Info("activities provided")
}

func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, s.tracker.Summary())
	logger.Info("summary provided")
}

func (s *Server) GetAdvice(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req AdviceRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("advice error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Query == "" {
		logger.Error("advice error: empty query")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "query must not be empty", nil)
		return
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = s.adviceKey
	}
	prompt := advice.BuildPrompt(s.tracker.Habits(), s.tracker.Goals(), s.tracker.TotalPoints(), req.Query)
	// Advice calls ride on the request context so a dropped client cancels
	// the upstream call too.
	text, err := s.advice.GenerateAdvice(r.Context(), prompt, apiKey)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrMissingAPIKey):
			logger.Error("advice error: no api key configured")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "advice API key is not configured", nil)
		case errors.Is(err, errorvalues.ErrEmptyAdvice):
			logger.Error("advice error: empty response from backend")
			httputil.WriteErrorResponse(w, http.StatusBadGateway, "advice backend returned no text", nil)
		case errors.Is(err, errorvalues.ErrAdviceUnavailable):
			logger.Error("advice error: backend unavailable", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadGateway, "advice backend is unavailable", nil)
		default:
			logger.Error("advice error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while generating advice", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"advice": text,
	})
	logger.Info("advice provided")
}

// Events streams a server-sent event on every tracker change so the client
// can refetch without polling. Payload carries only the current summary, the
// client pulls whichever collections it displays.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("events error: streaming unsupported by writer")
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	changes := make(chan struct{}, 1)
	cancel := s.tracker.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer cancel()

	writeEvent := func() bool {
		payload, err := sonic.ConfigDefault.Marshal(s.tracker.Summary())
		if err != nil {
			logger.Error("events error: encoding summary error", slog.String("error", err.Error()))
			return false
		}
		_, err = fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
		if err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !writeEvent() {
		return
	}
	logger.Info("events stream opened")
	for {
		select {
		case <-r.Context().Done():
			logger.Info("events stream closed")
			return
		case <-changes:
			if !writeEvent() {
				return
			}
		}
	}
}
