// Package domain contains core domain types for the SRT Bank application.
package domain

import (
	"time"
)

// Account represents a customer account profile.
type Account struct {
	HolderName string  `json:"name"`
	Number     string  `json:"number"`
	Type       string  `json:"type"`
	Balance    float64 `json:"balance"`
}

// Transaction is a single ledger entry. Amounts are signed: debits are
// negative, credits positive.
type Transaction struct {
	Date        string  `json:"date"`
	Description string  `json:"desc"`
	Amount      float64 `json:"amount"`
}

// Loan describes a loan product offered by the bank.
type Loan struct {
	Type string `json:"type"`
	Rate string `json:"rate"`
}

// Card holds display state for a debit or credit card.
type Card struct {
	Status string `json:"status"`
	Last4  string `json:"last4"`
}

// Branch is a physical bank branch.
type Branch struct {
	City    string `json:"city"`
	Name    string `json:"name"`
	Address string `json:"address"`
	IFSC    string `json:"ifsc"`
}

// User represents a bank customer who can log in.
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
