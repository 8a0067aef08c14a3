// Package api is the thin HTTP surface over stored venues and deals.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/queue"
)

// Searcher finds and upserts venues around an address
type Searcher interface {
	Search(ctx context.Context, address string, radiusMeters int, filter venue.SearchFilter) (*venue.SearchResult, error)
}

// Server serves the read API and accepts scrape requests
type Server struct {
	restaurants   venue.Store
	deals         deals.Store
	searcher      Searcher
	queue         queue.Queue
	defaultRadius int
	log           *logger.Logger
}

// NewServer creates a server. searcher may be nil when no places key is configured.
func NewServer(restaurants venue.Store, dealStore deals.Store, searcher Searcher, q queue.Queue, defaultRadius int) *Server {
	return &Server{
		restaurants:   restaurants,
		deals:         dealStore,
		searcher:      searcher,
		queue:         q,
		defaultRadius: defaultRadius,
		log:           logger.ForComponent("api"),
	}
}

// Router builds the chi router with all routes
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/restaurants/{id}", s.handleGetRestaurant)
	r.Get("/restaurants/{id}/deals", s.handleRestaurantDeals)
	r.Post("/restaurants/{id}/scrape", s.handleScrape)
	r.Get("/deals", s.handleDealsByDay)
	r.Post("/search", s.handleSearch)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("Request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps not_found to 404 and validation to 400. Everything else
// is a 500 without internal detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *errors.ScrapeError
	switch {
	case stderrors.Is(err, errors.ErrNotFound) && stderrors.As(err, &se):
		writeJSON(w, http.StatusNotFound, errorBody{Error: se.Message})
	case stderrors.Is(err, errors.ErrInvalidInput) && stderrors.As(err, &se):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: se.Message})
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "processing error"})
	}
}
