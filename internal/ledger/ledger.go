// Package ledger provides the in-memory account ledger the dialogue engine
// debits on confirmed transfers. The hosting layer owns the instance; the
// engine sees only the Ledger interface.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/metrics"
)

// ErrInsufficientBalance is returned when a transfer would take the balance
// below zero. No mutation happens in that case.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger is the narrow contract the dialogue engine depends on.
type Ledger interface {
	// Balance returns the current account balance.
	Balance() float64

	// AccountNumber returns the stored account number for verification.
	AccountNumber() string

	// Transfer atomically debits amount and prepends a transaction record
	// describing the transfer to recipient. It returns the new balance.
	// Returns ErrInsufficientBalance without mutating anything when the
	// balance cannot cover the amount.
	Transfer(recipient string, amount float64) (newBalance float64, err error)

	// Transactions returns a snapshot of the transaction log, newest first.
	Transactions() []domain.Transaction
}

// Memory is an in-memory single-account ledger seeded with demo fixtures.
// Debit-and-log is a critical section: concurrent confirmations for the same
// account are serialized by the mutex so a duplicate submission cannot
// double-debit or corrupt the log.
type Memory struct {
	mu      sync.Mutex
	account domain.Account
	txns    []domain.Transaction
	now     func() time.Time
}

// NewMemory creates a ledger for the given account and starting transaction
// log (newest first).
func NewMemory(account domain.Account, txns []domain.Transaction) *Memory {
	log := make([]domain.Transaction, len(txns))
	copy(log, txns)
	return &Memory{
		account: account,
		txns:    log,
		now:     time.Now,
	}
}

// NewFixture returns a ledger seeded with the demo account and transactions.
func NewFixture() *Memory {
	return NewMemory(
		domain.Account{
			HolderName: "Teja",
			Number:     "96182240",
			Type:       "Savings",
			Balance:    75000.00,
		},
		[]domain.Transaction{
			{Date: "2025-08-20", Description: "Zomato Order", Amount: -450.00},
			{Date: "2025-08-18", Description: "Amazon Purchase", Amount: -2999.00},
			{Date: "2025-08-15", Description: "Flipkart Refund", Amount: 1500.00},
			{Date: "2025-08-10", Description: "Rent Payment", Amount: -15000.00},
		},
	)
}

// Account returns a snapshot of the account profile.
func (m *Memory) Account() domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account
}

// Balance returns the current account balance.
func (m *Memory) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account.Balance
}

// AccountNumber returns the stored account number.
func (m *Memory) AccountNumber() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account.Number
}

// Transfer atomically debits amount and prepends a signed-negative
// transaction record referencing the recipient.
func (m *Memory) Transfer(recipient string, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.account.Balance < amount {
		metrics.TransfersRejected.Inc()
		return m.account.Balance, ErrInsufficientBalance
	}

	m.account.Balance -= amount
	metrics.TransfersCommitted.Inc()
	entry := domain.Transaction{
		Date:        m.now().Format("2006-01-02"),
		Description: "Transfer to " + recipient,
		Amount:      -amount,
	}
	m.txns = append([]domain.Transaction{entry}, m.txns...)
	return m.account.Balance, nil
}

// Transactions returns a snapshot of the transaction log, newest first.
func (m *Memory) Transactions() []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Transaction, len(m.txns))
	copy(out, m.txns)
	return out
}

// TransactionsWithRunningBalance returns the log annotated with the balance
// after each entry, newest first. The running balance is reconstructed by
// walking backwards from the current balance.
func (m *Memory) TransactionsWithRunningBalance() []AnnotatedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]AnnotatedTransaction, 0, len(m.txns))
	running := m.account.Balance
	for _, t := range m.txns {
		out = append(out, AnnotatedTransaction{Transaction: t, Balance: running})
		running -= t.Amount
	}
	return out
}

// AnnotatedTransaction is a transaction plus the account balance after it.
type AnnotatedTransaction struct {
	domain.Transaction
	Balance float64 `json:"balance"`
}

var _ Ledger = (*Memory)(nil)
