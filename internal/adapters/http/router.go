package httpadapter

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
)

// maxUploadBytes bounds the combined multipart payload (payslip PDF + roster).
const maxUploadBytes = 64 << 20

type Router struct {
	ingestUC ports.BatchIngestor
	repo     ports.BatchRepository
}

func NewRouter(ingestUC ports.BatchIngestor, repo ports.BatchRepository) *Router {
	return &Router{
		ingestUC: ingestUC,
		repo:     repo,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/batches", rt.uploadBatch)
	mux.HandleFunc("/v1/batches/", rt.getBatchByID)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}

	payslip, payslipHeader, err := r.FormFile("payslip")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'payslip' is required"})
		return
	}
	defer payslip.Close()

	roster, rosterHeader, err := r.FormFile("roster")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'roster' is required"})
		return
	}
	defer roster.Close()

	senderEmail := strings.TrimSpace(r.FormValue("sender_email"))
	if senderEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form field 'sender_email' is required"})
		return
	}

	batch, err := rt.ingestUC.Upload(
		r.Context(),
		payslipHeader.Filename, payslip,
		rosterHeader.Filename, roster,
		senderEmail,
	)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, batch)
}

func (rt *Router) getBatchByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	batch, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	report, err := rt.repo.GetReport(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Batch: batch, Report: report})
}

type batchResponse struct {
	*domain.Batch
	Report *domain.DispatchReport `json:"report,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json response: %v", err)
	}
}
