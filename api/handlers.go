package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodmap/food-radar/internal/archive"
	"github.com/foodmap/food-radar/internal/places"
	"github.com/foodmap/food-radar/internal/service"
)

const requestTimeout = 45 * time.Second

type server struct {
	log     *slog.Logger
	svc     *service.Service
	archive *archive.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	if s.archive != nil {
		if err := s.archive.Health(ctx); err != nil {
			status["archive"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["archive"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req service.RecommendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.Recommend(ctx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req service.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.SearchNearby(ctx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleVenueDetails(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	refresh := strings.EqualFold(r.URL.Query().Get("refresh"), "true")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.Details(ctx, uid, refresh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type compareRequest struct {
	UIDs []string `json:"uids"`
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.Compare(ctx, req.UIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	var req service.MapRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.VenueMap(ctx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type submitReviewRequest struct {
	VenueID string  `json:"venue_id"`
	Rating  float64 `json:"rating"`
	Text    string  `json:"text"`
}

func (s *server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	review, err := s.svc.SubmitReview(ctx, req.VenueID, req.Rating, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueID")
	writeJSON(w, http.StatusOK, s.svc.Reviews().List(venueID))
}

func (s *server) handleArchivedReviews(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "review archive is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	params := archive.SearchParams{
		VenueID:   chi.URLParam(r, "venueID"),
		MinRating: parseFloat(r.URL.Query().Get("min_rating")),
		MaxRating: parseFloat(r.URL.Query().Get("max_rating")),
		From:      clampInt(r.URL.Query().Get("from"), 0, 10_000),
		Size:      clampInt(r.URL.Query().Get("size"), 20, 200),
		Start:     parseTime(r.URL.Query().Get("start")),
		End:       parseTime(r.URL.Query().Get("end")),
	}

	result, err := s.archive.SearchReviews(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	var upstream *places.UpstreamError
	var transport *places.TransportError

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNoLocations):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.As(err, &transport):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return &v
	}
	return nil
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
