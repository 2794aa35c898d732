package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"layover-route-service/internal/api/dto"
	"layover-route-service/internal/domain"
	"layover-route-service/internal/export"
	"layover-route-service/internal/platform/obs"
	"layover-route-service/internal/ports"
	"layover-route-service/internal/services"
)

// PlanHandler serves route planning over HTTP. It owns no state beyond its
// dependencies, so one instance handles all requests concurrently.
type PlanHandler struct {
	Provider       ports.TravelTimeProvider
	Validate       *validator.Validate
	MaxSearchStops int
	DefaultProfile string
}

// Plan handles POST /plans: decode, validate, plan, respond with the
// computed itinerary.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	req, ok := h.decodePlanRequest(w, r)
	if !ok {
		return
	}

	timeline, profile, err := h.plan(r.Context(), req)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildPlanResponse(req, timeline, profile))
}

// ExportPDF handles POST /plans/export: the same request body as Plan, but
// the winning itinerary comes back as a printable PDF instead of JSON.
func (h *PlanHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	req, ok := h.decodePlanRequest(w, r)
	if !ok {
		return
	}

	timeline, _, err := h.plan(r.Context(), req)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	doc, err := export.BuildItineraryPDF(timeline, strings.TrimSpace(req.BaseName))
	if err != nil {
		log.Error().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("itinerary pdf build failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// decodePlanRequest reads and validates the request body. On failure it has
// already written the error response and returns ok=false.
func (h *PlanHandler) decodePlanRequest(w http.ResponseWriter, r *http.Request) (dto.PlanRequest, bool) {
	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body: "+err.Error())
		return req, false
	}
	// Reject trailing garbage after the first object.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_input", "request body must contain a single JSON object")
		return req, false
	}

	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", validationMessage(err))
		return req, false
	}
	return req, true
}

// plan maps the transport DTO onto the planner's request and runs it. The
// resolved profile is returned alongside so responses echo what was actually
// used, not the possibly-empty request field.
func (h *PlanHandler) plan(ctx context.Context, req dto.PlanRequest) (*domain.RouteTimeline, string, error) {
	profile := strings.TrimSpace(req.Profile)
	if profile == "" {
		profile = h.DefaultProfile
	}

	planReq := services.PlanRequest{
		Base:           domain.Location{Lat: req.Base.Lat, Lon: req.Base.Lon},
		Stops:          make([]domain.Stop, 0, len(req.Stops)),
		Profile:        profile,
		MaxSearchStops: h.MaxSearchStops,
	}
	for _, s := range req.Stops {
		planReq.Stops = append(planReq.Stops, domain.Stop{
			Name:           strings.TrimSpace(s.Name),
			Location:       domain.Location{Lat: s.Location.Lat, Lon: s.Location.Lon},
			ServiceMinutes: s.ServiceMinutes,
			FixedStartMin:  s.FixedStartMin,
		})
	}

	timeline, err := services.PlanTrip(ctx, planReq, h.Provider)
	return timeline, profile, err
}

// buildPlanResponse flattens the timeline into the response DTO. Leg
// endpoints are reported by name; node 0 is the base.
func buildPlanResponse(req dto.PlanRequest, tl *domain.RouteTimeline, profile string) dto.PlanResponse {
	baseName := strings.TrimSpace(req.BaseName)
	if baseName == "" {
		baseName = "base"
	}
	nodeName := func(node int) string {
		if node == 0 {
			return baseName
		}
		return strings.TrimSpace(req.Stops[node-1].Name)
	}

	visits := make([]dto.VisitResponse, 0, len(tl.Stops))
	for _, v := range tl.Visits() {
		visits = append(visits, dto.VisitResponse{
			Name:           v.Stop.Name,
			Lat:            v.Stop.Location.Lat,
			Lon:            v.Stop.Location.Lon,
			ServiceMinutes: v.Stop.ServiceMinutes,
			FixedStartMin:  v.Stop.FixedStartMin,
			ArriveMin:      v.ArriveMin,
			StartMin:       v.StartMin,
			LeaveMin:       v.LeaveMin,
		})
	}

	legs := make([]dto.LegResponse, 0, len(tl.Legs))
	for _, leg := range tl.Legs {
		legs = append(legs, dto.LegResponse{
			From:    nodeName(leg.From),
			To:      nodeName(leg.To),
			Minutes: leg.Minutes,
		})
	}

	base := domain.Location{Lat: req.Base.Lat, Lon: req.Base.Lon}
	return dto.PlanResponse{
		Profile:        profile,
		DepartureMin:   tl.DepartureMin,
		ReturnMin:      tl.ReturnMin(),
		DrivingMinutes: tl.DrivingMinutes(),
		ServiceMinutes: tl.ServiceMinutes(),
		TotalMinutes:   tl.TotalMinutes(),
		Visits:         visits,
		Legs:           legs,
		GoogleMapsURL:  export.GoogleMapsURL(base, tl, profile),
	}
}

// writePlanError maps the planner's failure taxonomy onto HTTP statuses.
// Rejected input is the caller's fault, an infeasible day is a valid answer
// with no route in it, and a missing matrix is an upstream failure.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, services.ErrNoFeasibleRoute):
		writeError(w, http.StatusUnprocessableEntity, "no_feasible_route",
			"no visiting order satisfies every fixed start time")
	case errors.Is(err, services.ErrMatrixUnavailable):
		log.Warn().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("travel time matrix unavailable")
		writeError(w, http.StatusBadGateway, "matrix_unavailable", "travel time service unavailable")
	default:
		log.Error().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("plan request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// validationMessage turns the first struct violation into a readable message
// without leaking validator internals to the client.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s fails %q validation", fe.Namespace(), fe.Tag())
	}
	return "invalid request"
}
