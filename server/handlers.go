package server

import (
	"errors"
	"net/http"

	"github.com/drblury/apismoke/restaurant"
	"github.com/drblury/apismoke/store"
)

var errRestaurantRequired = errors.New("restaurant data is required")

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req restaurant.ParseRequest
	if !s.resp.ReadRequestBody(w, r, &req) {
		return
	}

	candidate, err := s.parser.Parse(req.Input)
	if err != nil {
		s.resp.HandleBadRequestError(w, r, err, "parse rejected")
		return
	}

	s.resp.RespondWithJSON(w, r, http.StatusOK, restaurant.ParseResponse{
		Success:    true,
		Restaurant: &candidate,
	})
}

// handleListRestaurants reports store failures in the envelope with a 200 so
// clients always receive a restaurants array.
func (s *Server) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.resp.Logger().ErrorContext(r.Context(), "Failed to list restaurants", "error", err)
		s.resp.RespondWithJSON(w, r, http.StatusOK, restaurant.ListResponse{
			Success:     false,
			Restaurants: []restaurant.Restaurant{},
			Error:       "failed to fetch restaurants",
		})
		return
	}

	s.resp.RespondWithJSON(w, r, http.StatusOK, restaurant.ListResponse{
		Success:     true,
		Restaurants: list,
	})
}

func (s *Server) handleAddRestaurant(w http.ResponseWriter, r *http.Request) {
	var req restaurant.SaveRequest
	if !s.resp.ReadRequestBody(w, r, &req) {
		return
	}
	if req.Restaurant == nil {
		s.resp.HandleBadRequestError(w, r, errRestaurantRequired)
		return
	}

	rec, err := s.store.Add(r.Context(), *req.Restaurant)
	switch {
	case errors.Is(err, store.ErrNameRequired):
		s.resp.HandleBadRequestError(w, r, err)
		return
	case err != nil:
		s.resp.Logger().ErrorContext(r.Context(), "Failed to add restaurant", "error", err)
		s.resp.RespondWithJSON(w, r, http.StatusOK, restaurant.SaveResponse{
			Success: false,
			Error:   "failed to save restaurant",
		})
		return
	}

	s.resp.RespondWithJSON(w, r, http.StatusOK, restaurant.SaveResponse{
		Success:    true,
		Restaurant: &rec,
	})
}
