package meta

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Service serves the node-type catalog over HTTP.
type Service struct {
	registry *Registry
}

// NewService creates a catalog service over the given registry.
func NewService(registry *Registry) *Service {
	return &Service{registry: registry}
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers catalog HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/nodes").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleGetCatalog).Methods("GET")
}

// HandleGetCatalog returns the full node-type catalog as JSON.
func (s *Service) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Serving node-type catalog", "types", len(s.registry.Types()))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(catalogResponse{Types: s.registry.Types()})
}
