package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"saldo/internal/core"
	"saldo/internal/log"
)

type transactionJSON struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	SessionID string      `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type listResponse struct {
	Transactions []transactionJSON `json:"transactions"`
}

type getResponse struct {
	Transaction *transactionJSON `json:"transaction"`
}

type summaryJSON struct {
	Amount json.Number `json:"amount"`
}

type summaryResponse struct {
	Summary summaryJSON `json:"summary"`
}

type issueJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResponse struct {
	Message string      `json:"message"`
	Issues  []issueJSON `json:"issues"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type unauthorizedResponse struct {
	Error string `json:"error"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        t.ID.String(),
		Title:     t.Title,
		Amount:    core.JSONNumber(t.Amount),
		SessionID: t.SessionID,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps ledger and transport errors onto status codes. Anything
// unrecognised is logged and reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, unauthorizedResponse{Error: "Unauthorized."})

	case errors.Is(err, core.ErrInvalidInput):
		fields := core.Fields(err)
		issues := make([]issueJSON, 0, len(fields))
		for _, f := range fields {
			issues = append(issues, issueJSON{Field: f.Field, Message: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, validationResponse{Message: "Validation failed.", Issues: issues})

	case errors.Is(err, errUnsupportedMediaType):
		writeJSON(w, http.StatusUnsupportedMediaType, messageResponse{Message: "Content-Type must be application/json."})

	case errors.As(err, &maxErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, messageResponse{Message: "Request body too large."})

	default:
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldError, err.Error())
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error."})
	}
}
