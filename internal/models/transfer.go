package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferState string

const (
	TransferPending   TransferState = "pending"
	TransferCompleted TransferState = "completed"
	TransferFailed    TransferState = "failed"
)

// Transfer is a simulated funds transfer. Hash is a placeholder, not a
// real ledger reference.
type Transfer struct {
	ID          string          `json:"id"`
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	State       TransferState   `json:"state"`
	Hash        string          `json:"hash,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
