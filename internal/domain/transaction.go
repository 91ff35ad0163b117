package domain

import (
	"time"

	"github.com/dvloznov/expense-ledger/internal/money"
)

// Transaction is the central entity: one expense record owned by one user.
// ID and the two timestamps are assigned by the store on insert; the
// amount is always integer paise (see the money package for the boundary).
type Transaction struct {
	ID          string      `json:"id"`
	UserID      string      `json:"-"`
	Date        time.Time   `json:"date"`
	AmountPaise money.Paise `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	IsConfirmed bool        `json:"isConfirmed"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Patch carries the fields of an update request; nil means "leave as is".
type Patch struct {
	Date        *time.Time
	AmountPaise *money.Paise
	Category    *string
	Description *string
	IsConfirmed *bool
}

// Apply merges the patch into a copy of t. It does not validate; the store
// re-validates the merged record before writing it.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.AmountPaise != nil {
		t.AmountPaise = *p.AmountPaise
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.IsConfirmed != nil {
		t.IsConfirmed = *p.IsConfirmed
	}
	return t
}
