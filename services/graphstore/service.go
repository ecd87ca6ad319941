package graphstore

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"nodeflow/services/graph"
)

// DocumentRepo abstracts document persistence for testability.
type DocumentRepo interface {
	Get(ctx context.Context, id string) (*graph.Document, error)
	Save(ctx context.Context, doc *graph.Document) error
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// Service wires the repository into the document HTTP API.
type Service struct {
	repo DocumentRepo
}

// NewService creates a Service with a real PostgreSQL repository.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{repo: NewRepository(pool)}
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers document HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/documents").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleListDocuments).Methods("GET")
	router.HandleFunc("/{id}", s.HandleGetDocument).Methods("GET")
	router.HandleFunc("/{id}", s.HandleSaveDocument).Methods("PUT")
	router.HandleFunc("/{id}", s.HandleDeleteDocument).Methods("DELETE")
}
