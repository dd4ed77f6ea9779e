package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/srt-bank/srtbank/internal/auth"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/ledger"
)

// Static product fixtures, mirrored from the bank's demo dataset.
var (
	loansCatalog = []domain.Loan{
		{Type: "Personal Loan", Rate: "11.25% p.a."},
		{Type: "Home Loan", Rate: "8.50% p.a."},
	}

	cardsInfo = map[string]domain.Card{
		"debit":  {Status: "Active", Last4: "4321"},
		"credit": {Status: "Active", Last4: "9988"},
	}

	branches = []domain.Branch{
		{City: "Hyderabad", Name: "SRT Bank - HiTech City", Address: "Plot 21, Cyber Towers", IFSC: "SRTB0000123"},
		{City: "Bengaluru", Name: "SRT Bank - Indiranagar", Address: "100ft Rd, HAL 2nd Stage", IFSC: "SRTB0000456"},
		{City: "Mumbai", Name: "SRT Bank - BKC", Address: "G Block, Bandra Kurla Complex", IFSC: "SRTB0000789"},
	}
)

// BankHandler serves the account, transaction and product endpoints backing
// the dashboard pages.
type BankHandler struct {
	ledger *ledger.Memory
}

// NewBankHandler creates a handler over the shared ledger.
func NewBankHandler(ldg *ledger.Memory) *BankHandler {
	return &BankHandler{ledger: ldg}
}

// RegisterRoutes registers the dashboard data routes.
func (h *BankHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/account", h.GetAccount)
		r.Get("/transactions", h.GetTransactions)
		r.Get("/loans", h.GetLoans)
		r.Get("/cards", h.GetCards)
		r.Get("/branches", h.GetBranches)
	})
}

// requireSession rejects unauthenticated requests.
func requireSession(w http.ResponseWriter, r *http.Request) *domain.Session {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		Error(w, http.StatusUnauthorized, "not logged in")
		return nil
	}
	return sess
}

// GetAccount returns the account profile.
func (h *BankHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	if requireSession(w, r) == nil {
		return
	}
	JSON(w, http.StatusOK, h.ledger.Account())
}

// GetTransactions returns the transaction log, newest first, annotated with
// the running balance after each entry.
func (h *BankHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	if requireSession(w, r) == nil {
		return
	}
	JSON(w, http.StatusOK, h.ledger.TransactionsWithRunningBalance())
}

// GetLoans returns the loan product catalog.
func (h *BankHandler) GetLoans(w http.ResponseWriter, r *http.Request) {
	if requireSession(w, r) == nil {
		return
	}
	JSON(w, http.StatusOK, loansCatalog)
}

// GetCards returns card display state.
func (h *BankHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	if requireSession(w, r) == nil {
		return
	}
	JSON(w, http.StatusOK, cardsInfo)
}

// GetBranches returns the branch directory.
func (h *BankHandler) GetBranches(w http.ResponseWriter, r *http.Request) {
	if requireSession(w, r) == nil {
		return
	}
	JSON(w, http.StatusOK, branches)
}
