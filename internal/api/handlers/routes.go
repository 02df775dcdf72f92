package handlers

import (
	"context"
	"heavy-route-service/internal/api/dto"
	"heavy-route-service/internal/domain"
	"heavy-route-service/internal/services"
	"net/http"

	"github.com/go-chi/render"
)

type RoutePlanner interface {
	Plan(ctx context.Context, req services.PlanRequest) (*domain.RoutePlan, error)
	PlanBetween(ctx context.Context, origin, destination domain.Marker, amenities []string) (*domain.RoutePlan, error)
}

type RouteHandler struct {
	Planner   RoutePlanner
	Validator *Validator
}

func NewRouteHandler(planner RoutePlanner) *RouteHandler {
	return &RouteHandler{Planner: planner, Validator: NewValidator()}
}

// Plan handles POST /api/routes with place names.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	data := &dto.RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if msgs, err := h.Validator.Check(data); err != nil {
		render.Render(w, r, ErrValidation(err, msgs))
		return
	}

	plan, err := h.Planner.Plan(r.Context(), services.PlanRequest{
		Origin:      data.Origin,
		Destination: data.Destination,
		Amenities:   data.Amenities,
	})
	if err != nil {
		render.Render(w, r, ErrPlan(r, err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto.NewRouteResponse(plan))
}

// PlanCoordinates handles POST /api/routes/coordinates, skipping geocoding.
func (h *RouteHandler) PlanCoordinates(w http.ResponseWriter, r *http.Request) {
	data := &dto.CoordinatesRouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if msgs, err := h.Validator.Check(data); err != nil {
		render.Render(w, r, ErrValidation(err, msgs))
		return
	}

	origin := domain.Marker{Label: "origin", Point: data.Origin.GeoPoint()}
	destination := domain.Marker{Label: "destination", Point: data.Destination.GeoPoint()}

	plan, err := h.Planner.PlanBetween(r.Context(), origin, destination, data.Amenities)
	if err != nil {
		render.Render(w, r, ErrPlan(r, err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto.NewRouteResponse(plan))
}
