package http

import (
	"net/http"
	"sync/atomic"

	"finances/internal/core"
)

// transactionRequest is the body of POST /api/transactions.
type transactionRequest struct {
	Name        string     `json:"name"`
	Date        string     `json:"date"`
	Amount      flexString `json:"amount"`
	Type        string     `json:"type"`
	CategoryID  *int64     `json:"category_id"`
	FromAccount string     `json:"from_account"`
	Note        string     `json:"note"`
}

func (req transactionRequest) draft() core.TransactionDraft {
	return core.TransactionDraft{
		Name:        sanitizeInput(req.Name),
		Date:        req.Date,
		Amount:      string(req.Amount),
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		FromAccount: sanitizeInput(req.FromAccount),
		Note:        sanitizeInput(req.Note),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	q, err := ParseTransactionQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "list_transactions", err)
		return
	}

	txs, err := s.transactions.GetUserTransactions(r.Context(), userID, q)
	if err != nil {
		s.writeError(w, r, "list_transactions", err)
		return
	}
	NewJSONResponse().Body(newTransactionViews(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create_transaction", err)
		return
	}

	tx, err := s.transactions.AddTransaction(r.Context(), userID, req.draft())
	if err != nil {
		s.writeError(w, r, "create_transaction", err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	NewJSONResponse().Status(http.StatusCreated).Body(newTransactionView(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, err := ParsePathID(r, "id")
	if err != nil {
		s.writeError(w, r, "delete_transaction", err)
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), userID, id); err != nil {
		s.writeError(w, r, "delete_transaction", err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsDeleted, 1)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
