package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxNotesBodySize = 2 << 20 // 2MB, transcript overrides included

// NewHandler builds the HTTP API. Pipeline outcomes are always written
// with transport status 200; the envelope's success flag is authoritative.
// Only transport-level problems (auth, unreadable body) use other statuses.
func NewHandler(svc *Service, token string) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if token != "" {
			r.Use(BearerAuth(token))
		}
		r.Post("/notes", handleNotes(svc))
		r.Get("/transcript", handleTranscript(svc))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleNotes(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxNotesBodySize)
		defer r.Body.Close()

		var req NotesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, failure(CodeBadRequest, "invalid request body: "+err.Error(), nil))
			return
		}

		writeEnvelope(w, svc.GenerateNotes(r.Context(), req))
	}
}

func handleTranscript(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, svc.GetTranscript(r.Context(), r.URL.Query().Get("url")))
	}
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}
