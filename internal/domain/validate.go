package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/dvloznov/expense-ledger/internal/money"
)

// Validation error codes, stable across the API surface.
const (
	CodeInvalidDate        = "InvalidDate"
	CodeInvalidAmount      = "InvalidAmount"
	CodeNonIntegerAmount   = "NonIntegerAmount"
	CodeInvalidCategory    = "InvalidCategory"
	CodeInvalidDescription = "InvalidDescription"
)

// FieldError names one field that violated one constraint.
type FieldError struct {
	Field  string `json:"field"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Errors is the collect-all result of validating one candidate. Every
// violated constraint is reported, not just the first.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// AsErrors unwraps err into validation Errors if it carries any.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	var fe FieldError
	if errors.As(err, &fe) {
		return Errors{fe}, true
	}
	return nil, false
}

// Accepted timestamp layouts for draft dates. Date-only values are taken
// as midnight UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// Draft is a candidate transaction before validation: fields as they
// arrived from a client or from the extractor. Pointer fields distinguish
// "absent" from zero values.
type Draft struct {
	Date        string   `json:"date"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	IsConfirmed *bool    `json:"isConfirmed"`
}

// Validate checks every rule independently and reports all violations in
// one pass. On success it returns the well-formed transaction with the
// date normalized to UTC; ID, UserID and timestamps are left for the
// store to assign.
func (d Draft) Validate() (Transaction, Errors) {
	var errs Errors
	var tx Transaction

	if d.Date == "" {
		errs = append(errs, FieldError{Field: "date", Code: CodeInvalidDate, Reason: "date is required"})
	} else {
		parsed, ok := parseDate(d.Date)
		if !ok {
			errs = append(errs, FieldError{Field: "date", Code: CodeInvalidDate, Reason: "invalid date format: " + d.Date})
		} else {
			tx.Date = parsed.UTC()
		}
	}

	if d.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Code: CodeInvalidAmount, Reason: "amount is required"})
	} else {
		paise, err := money.PaiseFromFloat(*d.Amount)
		if err != nil {
			errs = append(errs, FieldError{Field: "amount", Code: CodeNonIntegerAmount, Reason: "amount must be an integer number of paise"})
		} else {
			tx.AmountPaise = paise
		}
	}

	if strings.TrimSpace(d.Category) == "" {
		errs = append(errs, FieldError{Field: "category", Code: CodeInvalidCategory, Reason: "category is required"})
	} else {
		tx.Category = strings.TrimSpace(d.Category)
	}

	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Code: CodeInvalidDescription, Reason: "description is required"})
	} else {
		tx.Description = strings.TrimSpace(d.Description)
	}

	if d.IsConfirmed != nil {
		tx.IsConfirmed = *d.IsConfirmed
	}

	if len(errs) > 0 {
		return Transaction{}, errs
	}
	return tx, nil
}

// Validate re-checks a stored record, used after a patch merge. The amount
// is integer by construction here, so only shape rules apply.
func (t Transaction) Validate() Errors {
	var errs Errors
	if t.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Code: CodeInvalidDate, Reason: "date is required"})
	}
	if strings.TrimSpace(t.Category) == "" {
		errs = append(errs, FieldError{Field: "category", Code: CodeInvalidCategory, Reason: "category is required"})
	}
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Code: CodeInvalidDescription, Reason: "description is required"})
	}
	return errs
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
