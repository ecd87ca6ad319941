package graphstore

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"nodeflow/services/graph"
)

// HandleListDocuments returns summaries of all stored documents.
func (s *Service) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Listing documents")

	summaries, err := s.repo.List(r.Context())
	if err != nil {
		slog.Error("Failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summaries == nil {
		summaries = []Summary{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(summaries)
}

// HandleGetDocument loads a document and returns it as JSON.
func (s *Service) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Getting document", "id", id)

	doc, err := s.repo.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc)
}

// HandleSaveDocument upserts a document under the path id.
func (s *Service) HandleSaveDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Saving document", "id", id)

	var doc graph.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if doc.ID != "" && doc.ID != id {
		writeError(w, http.StatusBadRequest, "document id does not match URL")
		return
	}
	doc.ID = id
	if doc.Version == 0 {
		doc.Version = graph.SchemaVersion
	}

	if err := s.repo.Save(r.Context(), &doc); err != nil {
		slog.Error("Failed to save document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// HandleDeleteDocument removes a document.
func (s *Service) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Deleting document", "id", id)

	if err := s.repo.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete document", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
