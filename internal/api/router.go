package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"layover-route-service/internal/api/handlers"
	"layover-route-service/internal/ports"
)

// NewRouter wires the HTTP handlers with their dependencies and returns the
// root handler. This is the API composition root; handlers stay unaware of
// which concrete provider sits behind the port.
func NewRouter(provider ports.TravelTimeProvider, maxSearchStops int, defaultProfile string) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{
		Provider:       provider,
		Validate:       validator.New(),
		MaxSearchStops: maxSearchStops,
		DefaultProfile: defaultProfile,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/plans/export", planHandler.ExportPDF)

	return requestIDMiddleware(loggingMiddleware(mux))
}
