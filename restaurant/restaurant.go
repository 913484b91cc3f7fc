// Package restaurant holds the wire types shared by the restaurant API, its
// reference server, and the smoke-test client.
package restaurant

import "time"

// Restaurant is a persisted restaurant record as returned by the API.
type Restaurant struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Cuisine     *string   `json:"cuisine" bson:"cuisine"`
	City        *string   `json:"city" bson:"city"`
	Address     *string   `json:"address" bson:"address"`
	Lat         *float64  `json:"lat" bson:"lat"`
	Lng         *float64  `json:"lng" bson:"lng"`
	BookingLink *string   `json:"booking_link" bson:"booking_link"`
	SocialLink  *string   `json:"social_link" bson:"social_link"`
	Notes       *string   `json:"notes" bson:"notes"`
	IsVisited   bool      `json:"is_visited" bson:"is_visited"`
	Rating      *int      `json:"rating" bson:"rating"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Input is the insertable subset of a Restaurant. Only Name is required.
type Input struct {
	Name        string   `json:"name"`
	Cuisine     *string  `json:"cuisine,omitempty"`
	City        *string  `json:"city,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	BookingLink *string  `json:"booking_link,omitempty"`
	SocialLink  *string  `json:"social_link,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	IsVisited   *bool    `json:"is_visited,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
}

// Build materialises the input into a record with the given id and timestamp.
func (in Input) Build(id string, now time.Time) Restaurant {
	r := Restaurant{
		ID:          id,
		Name:        in.Name,
		Cuisine:     in.Cuisine,
		City:        in.City,
		Address:     in.Address,
		Lat:         in.Lat,
		Lng:         in.Lng,
		BookingLink: in.BookingLink,
		SocialLink:  in.SocialLink,
		Notes:       in.Notes,
		Rating:      in.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsVisited != nil {
		r.IsVisited = *in.IsVisited
	}
	return r
}

// Candidate is a partially extracted restaurant returned by the parse endpoint.
type Candidate struct {
	Name        string   `json:"name"`
	Cuisine     *string  `json:"cuisine,omitempty"`
	City        *string  `json:"city,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	BookingLink *string  `json:"booking_link,omitempty"`
	SocialLink  *string  `json:"social_link,omitempty"`
}

// Alternative is one of several matches offered when a parse is ambiguous.
type Alternative struct {
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	BookingLink *string `json:"bookingLink,omitempty"`
}

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Input string `json:"input"`
}

// ParseResponse is the body returned by POST /api/parse.
type ParseResponse struct {
	Success           bool          `json:"success"`
	Restaurant        *Candidate    `json:"restaurant,omitempty"`
	RequiresSelection bool          `json:"requiresSelection,omitempty"`
	Alternatives      []Alternative `json:"alternatives,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// ListResponse is the body returned by GET /api/restaurants.
type ListResponse struct {
	Success     bool         `json:"success"`
	Restaurants []Restaurant `json:"restaurants"`
	Error       string       `json:"error,omitempty"`
}

// SaveRequest is the body of POST /api/restaurants.
type SaveRequest struct {
	Restaurant *Input `json:"restaurant"`
}

// SaveResponse is the body returned by POST /api/restaurants.
type SaveResponse struct {
	Success    bool        `json:"success"`
	Restaurant *Restaurant `json:"restaurant,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /api/health.
type HealthResponse struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
