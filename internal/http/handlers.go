package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"saldo/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.List(r.Context(), sessionToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]transactionJSON, 0, len(items))
	for _, t := range items {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, listResponse{Transactions: out})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, found, err := s.ledger.Get(r.Context(), sessionToken(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp getResponse
	if found {
		tj := toTransactionJSON(t)
		resp.Transaction = &tj
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.Summary(r.Context(), sessionToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summaryJSON{Amount: core.JSONNumber(sum.Amount)}})
}

// handleCreateTransaction answers 201 with no body. A session cookie is set
// only when the request did not carry one.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCreateRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.ledger.Create(r.Context(), in, sessionToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.appMetrics.transactionsCreated.Add(1)
	if res.Session.IsNew {
		s.appMetrics.sessionsIssued.Add(1)
		s.cookies.issue(w, res.Session.Token)
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		"client_ip", s.securityDetector.ExtractClientIP(r),
		"method", r.Method,
		"path", r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: "Rate limit exceeded. Please try again later."})
}
