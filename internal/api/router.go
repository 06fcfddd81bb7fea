package api

import (
	"net/http"

	"parcel-tracking-service/internal/api/handlers"
	"parcel-tracking-service/internal/ports"
	"parcel-tracking-service/internal/services"
)

// RouterConfig carries the per-deployment values handlers need.
type RouterConfig struct {
	UploadDir     string
	PublicBaseURL string
	DeliveredURL  string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(parcels ports.ParcelRepository, dispatch func(services.UploadJob), cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	uploadHandler := &handlers.UploadHandler{
		UploadDir: cfg.UploadDir,
		Dispatch:  dispatch,
	}
	deliveryHandler := &handlers.DeliveryHandler{
		Parcels:       parcels,
		PublicBaseURL: cfg.PublicBaseURL,
		DeliveredURL:  cfg.DeliveredURL,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/upload", uploadHandler.Upload)
	mux.HandleFunc("/check_delivery", deliveryHandler.CheckDelivery)
	mux.HandleFunc("/delivery_status", deliveryHandler.DeliveryStatus)

	return requestIDMiddleware(loggingMiddleware(mux))
}
