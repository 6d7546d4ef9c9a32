package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/app"
	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

// AdminHandler serves the report history and the quiz gate toggles consumed
// by the admin console, plus the progress endpoint the student pages poll on
// load. Caller identity arrives in X-User-Email / X-User-Role headers, set by
// the session provider in front of this service.
type AdminHandler struct {
	service *app.AssessmentService
}

func NewAdminHandler(service *app.AssessmentService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/reports", h.ServeReports)
	mux.HandleFunc("/reports.csv", h.ServeReportsCSV)
	mux.HandleFunc("/gate", h.ServeGate)
	mux.HandleFunc("/progress", h.ServeProgress)
}

func (h *AdminHandler) ServeReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reports, err := h.service.Reports(r.Context(), reportFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, reports)
}

func (h *AdminHandler) ServeReportsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reports, err := h.service.Reports(r.Context(), reportFilter(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "trial-lms-reports-"+time.Now().Format("2006-01-02")+".csv"))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"email", "quizId", "attempt", "score", "best", "submittedAt"})
	for _, report := range reports {
		_ = writer.Write([]string{
			report.Email,
			report.QuizID,
			strconv.Itoa(report.Attempt),
			strconv.Itoa(report.Score),
			strconv.Itoa(report.Best),
			report.SubmittedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}

type gateRequest struct {
	QuizID string `json:"quizId"`
	Open   bool   `json:"open"`
}

func (h *AdminHandler) ServeGate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state, err := h.service.OpenState(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, state)
	case http.MethodPut:
		var req gateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
			http.Error(w, "invalid gate payload", http.StatusBadRequest)
			return
		}
		if err := h.service.SetOpen(r.Context(), callerIdentity(r), req.QuizID, req.Open); err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) ServeProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "missing email", http.StatusBadRequest)
		return
	}
	snapshot, err := h.service.Progress(r.Context(), email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snapshot)
}

func reportFilter(r *http.Request) domain.ReportFilter {
	return domain.ReportFilter{
		Email:  r.URL.Query().Get("email"),
		QuizID: r.URL.Query().Get("quizId"),
	}
}

func callerIdentity(r *http.Request) domain.User {
	return domain.User{
		Email: r.Header.Get("X-User-Email"),
		Role:  domain.Role(r.Header.Get("X-User-Role")),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
