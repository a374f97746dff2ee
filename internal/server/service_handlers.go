package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"meeting-insights-backend/internal/types"
)

// Request bodies above this are rejected before decoding.
const maxRequestBytes = 8 << 20

// POST /api/insights
// { transcript } -> { summary, decisions, actions, sentiment, error }
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req types.InsightsRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.log.WithField("path", r.URL.Path).Warnf("invalid insights request: %v", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request: 'transcript' field missing, not a string, or empty.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.InsightsServiceTimeout)
	defer cancel()
	out, err := s.processor.Insights(ctx, req.Transcript)
	if err != nil {
		s.log.Errorf("insights failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Endpoint error: %v", err))
		return
	}
	if out.Error != "" {
		s.log.WithField("error", out.Error).Warn("insights completed with errors")
	}
	s.writeJSON(w, http.StatusOK, out)
}

// POST /api/qna
// { transcript, question } -> { answer, error }
func (s *Server) handleQnA(w http.ResponseWriter, r *http.Request) {
	var req types.QnARequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.log.WithField("path", r.URL.Path).Warnf("invalid q&a request: %v", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request: 'transcript' and 'question' must be non-empty strings.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.QnAServiceTimeout)
	defer cancel()
	out, err := s.processor.Answer(ctx, req.Transcript, req.Question)
	if err != nil {
		s.log.Errorf("q&a failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Endpoint error: %v", err))
		return
	}
	if out.Error != "" {
		s.log.WithFields(logrus.Fields{"question": req.Question, "error": out.Error}).Warn("q&a completed with an error")
	}
	s.writeJSON(w, http.StatusOK, out)
}

// decodeValid reads one JSON object into dst and runs its validate tags.
// Non-string fields fail at decode time.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
