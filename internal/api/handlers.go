package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/health"
	"github.com/mindforge/focusd/internal/scoring"
	"github.com/mindforge/focusd/internal/storage"
)

// handlePredict scores one sample. The response is always a structurally
// valid ScoreResult: an unreadable body degrades to the default prediction
// rather than an error payload.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var sample health.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		s.logger.Warn("predict: unreadable body, returning default",
			zap.Error(err))
		s.writeJSON(w, http.StatusOK, scoring.DefaultResult())
		return
	}

	result := s.engine.Predict(r.Context(), sample)
	s.writeJSON(w, http.StatusOK, result)
}

// handleFocusPattern serves the aggregated focus-pattern report. The date
// range defaults to the trailing 7 days. A store failure degrades to the
// empty report; this endpoint never returns a 5xx.
func (s *Server) handleFocusPattern(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	end := parseDate(r.URL.Query().Get("end_date"), time.Now())
	start := parseDate(r.URL.Query().Get("start_date"), end.AddDate(0, 0, -7))

	var samples []health.Sample
	if s.store != nil {
		var err error
		samples, err = s.store.FindSamples(r.Context(), userID, start, end)
		if err != nil {
			s.logger.Error("focus-pattern: sample fetch failed, serving degraded report",
				zap.String("user_id", userID), zap.Error(err))
			samples = nil
		}
	}

	report := s.engine.AnalyzePattern(r.Context(), userID, start, end, samples)
	s.writeJSON(w, http.StatusOK, report)
}

// handleStoreSample ingests one sample and writes it through to the
// raw-metrics cache.
func (s *Server) handleStoreSample(w http.ResponseWriter, r *http.Request) {
	var sample health.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid sample payload")
		return
	}
	if sample.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if !sample.HasTimestamp() {
		sample.RecordedAt = time.Now().UTC()
	}

	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sample store unavailable")
		return
	}
	if err := s.store.InsertSample(r.Context(), sample); err != nil {
		s.logger.Error("store sample", zap.String("user_id", sample.UserID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store sample")
		return
	}

	s.cacheRawSample(r.Context(), sample)
	s.writeJSON(w, http.StatusCreated, sample)
}

// handleProfile serves a user profile, cache first.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	if profile, ok := s.cachedProfile(r.Context(), userID); ok {
		s.writeJSON(w, http.StatusOK, profile)
		return
	}

	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			s.writeError(w, http.StatusNotFound, "user profile not found")
			return
		}
		s.logger.Error("get profile", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	s.cacheProfile(r.Context(), *profile)
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// parseDate accepts RFC3339 timestamps or plain dates; anything else falls
// back to the provided default.
func parseDate(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t
	}
	return fallback
}
