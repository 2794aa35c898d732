package dto

// LocationDTO carries a coordinate pair. Zero is a valid latitude and a
// valid longitude, so only range checks apply.
type LocationDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// StopRequest is one ground destination in a planning request.
type StopRequest struct {
	Name           string      `json:"name" validate:"required"`
	Location       LocationDTO `json:"location"`
	ServiceMinutes int         `json:"service_minutes" validate:"gte=0"`
	FixedStartMin  *int        `json:"fixed_start_min,omitempty" validate:"omitempty,gte=0,lt=1440"`
}

// PlanRequest asks for one sequenced route out of a base and its stops.
type PlanRequest struct {
	Base     LocationDTO   `json:"base"`
	BaseName string        `json:"base_name,omitempty"`
	Stops    []StopRequest `json:"stops" validate:"dive"`
	Profile  string        `json:"profile,omitempty" validate:"omitempty,oneof=driving-car foot-walking cycling-regular"`
}

// VisitResponse is one stop of the computed route in visiting order.
type VisitResponse struct {
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ServiceMinutes int     `json:"service_minutes"`
	FixedStartMin  *int    `json:"fixed_start_min,omitempty"`
	ArriveMin      float64 `json:"arrive_min"`
	StartMin       float64 `json:"start_min"`
	LeaveMin       float64 `json:"leave_min"`
}

// LegResponse is one driven segment, including the closing leg back to
// the base.
type LegResponse struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Minutes float64 `json:"minutes"`
}

// PlanResponse is the computed itinerary for a PlanRequest.
type PlanResponse struct {
	Profile        string          `json:"profile"`
	DepartureMin   float64         `json:"departure_min"`
	ReturnMin      float64         `json:"return_min"`
	DrivingMinutes float64         `json:"driving_minutes"`
	ServiceMinutes int             `json:"service_minutes"`
	TotalMinutes   float64         `json:"total_minutes"`
	Visits         []VisitResponse `json:"visits"`
	Legs           []LegResponse   `json:"legs"`
	GoogleMapsURL  string          `json:"google_maps_url"`
}
