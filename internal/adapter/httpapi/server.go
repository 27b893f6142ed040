package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
	"github.com/fieldpay/cashcollector-backend/internal/usecase/collection"
	"github.com/fieldpay/cashcollector-backend/internal/usecase/settlement"
)

// Server holds the HTTP handlers for the collector API
type Server struct {
	Collection *collection.Service
	Settlement *settlement.Service
}

// NewServer creates an http.Server exposing the collector API
func NewServer(addr string, collectionSvc *collection.Service, settlementSvc *settlement.Service) *http.Server {
	mux := http.NewServeMux()

	srv := &Server{Collection: collectionSvc, Settlement: settlementSvc}
	mux.HandleFunc("GET /collectors/{id}/tasks", srv.listCollectedTasks)
	mux.HandleFunc("GET /collectors/{id}/next-task", srv.getNextTask)
	mux.HandleFunc("PUT /collectors/{id}/collect", srv.collectTask)
	mux.HandleFunc("GET /collectors/{id}/status", srv.checkStatus)
	mux.HandleFunc("POST /collectors/{id}/pay/all", srv.payAll)
	mux.HandleFunc("POST /collectors/{id}/pay/some", srv.paySome)

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// taskResponse is the JSON representation of a task.
// Decimal amounts travel as strings to avoid float rounding on the wire.
type taskResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Amount          string     `json:"amount"`
	RemainingAmount string     `json:"remaining_amount"`
	DueDate         time.Time  `json:"due_date"`
	IsCollected     bool       `json:"is_collected"`
	CollectedAt     *time.Time `json:"collected_at,omitempty"`
}

func toTaskResponse(task *domain.Task) taskResponse {
	return taskResponse{
		ID:              task.ID,
		Name:            task.Name,
		Description:     task.Description,
		Amount:          task.Amount.String(),
		RemainingAmount: task.RemainingAmount.String(),
		DueDate:         task.DueDate,
		IsCollected:     task.IsCollected,
		CollectedAt:     task.CollectedAt,
	}
}

// collectRequest is the optional body of a collect call. The timestamp
// override exists solely to make freeze timing deterministic in tests.
type collectRequest struct {
	CollectedAt *time.Time `json:"collected_at"`
}

// paySomeRequest is the body of a partial payment call
type paySomeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) listCollectedTasks(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	tasks, err := s.Collection.ListCollected(r.Context(), collectorID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, toTaskResponse(task))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getNextTask(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	task, err := s.Collection.NextPending(r.Context(), collectorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) collectTask(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty body means "collect now"
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	task, err := s.Collection.Collect(r.Context(), collectorID, req.CollectedAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) checkStatus(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	frozen, err := s.Collection.Frozen(r.Context(), collectorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_frozen": frozen})
}

func (s *Server) payAll(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	if err := s.Settlement.PayAll(r.Context(), collectorID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) paySome(w http.ResponseWriter, r *http.Request) {
	collectorID, ok := parseCollectorID(w, r)
	if !ok {
		return
	}

	var req paySomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.Settlement.PaySome(r.Context(), collectorID, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// parseCollectorID extracts the collector UUID from the request path,
// writing a 400 response on failure
func parseCollectorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid collector ID", http.StatusBadRequest)
		return uuid.UUID{}, false
	}
	return id, true
}

// writeError maps domain errors to HTTP status codes.
// Business rejections are 400s: they represent caller misuse or expected
// states, never server faults.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoAssignedTask),
		errors.Is(err, domain.ErrFrozen),
		errors.Is(err, domain.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrCollectorNotFound),
		errors.Is(err, domain.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}
