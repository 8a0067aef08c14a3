package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/queue"
)

type restaurantResponse struct {
	venue.Restaurant
	IsOpenNow bool `json:"is_open_now"`
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := s.restaurants.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurantResponse{Restaurant: *rest, IsOpenNow: rest.IsOpenNow()})
}

func (s *Server) handleRestaurantDeals(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.restaurants.GetByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deals.ListActiveByRestaurant(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deals": nonNilDeals(list)})
}

func (s *Server) handleDealsByDay(w http.ResponseWriter, r *http.Request) {
	day, ok := days.ParseDay(r.URL.Query().Get("day"))
	if !ok {
		s.writeError(w, r, errors.NewValidation("", "day must be a day of the week"))
		return
	}
	list, err := s.deals.ListActiveByDay(r.Context(), day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"day": day, "deals": nonNilDeals(list)})
}

type scrapeAccepted struct {
	JobID        string `json:"job_id"`
	RestaurantID string `json:"restaurant_id"`
	URL          string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	rest, err := s.restaurants.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rest.URL == "" {
		s.writeError(w, r, errors.NewValidation(rest.ID, "restaurant has no website"))
		return
	}
	jobID, err := s.queue.Enqueue(r.Context(), queue.Job{
		RestaurantID: rest.ID,
		URL:          rest.URL,
		EnqueuedAt:   time.Now().UTC(),
		JobType:      queue.JobTypeDealScraping,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, scrapeAccepted{JobID: jobID, RestaurantID: rest.ID, URL: rest.URL})
}

type searchRequest struct {
	Address   string `json:"address"`
	Radius    int    `json:"radius"`
	Suburb    string `json:"suburb"`
	Postcode  string `json:"postcode"`
	IsOpenNow *bool  `json:"is_open_now"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.writeError(w, r, errors.NewConfiguration("venue search is not configured", nil))
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.NewValidation("", "invalid request body"))
		return
	}
	if req.Radius <= 0 {
		req.Radius = s.defaultRadius
	}
	if req.Limit < 0 {
		s.writeError(w, r, errors.NewValidation("", "limit must not be negative"))
		return
	}

	res, err := s.searcher.Search(r.Context(), req.Address, req.Radius, venue.SearchFilter{
		Suburb:    req.Suburb,
		Postcode:  req.Postcode,
		IsOpenNow: req.IsOpenNow,
		Limit:     req.Limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func nonNilDeals(list []deals.Deal) []deals.Deal {
	if list == nil {
		return []deals.Deal{}
	}
	return list
}
