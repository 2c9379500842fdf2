package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Entry types.
const (
	EntryExpense  = "expense"
	EntryIncome   = "income"
	EntryTransfer = "transfer"
)

// Transfer types.
const (
	TransferInternal    = "internal"
	TransferExternalOut = "external_out"
	TransferExternalIn  = "external_in"
)

// Layouts for calendar dates and months.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ErrInvalidEntry is returned when an entry breaks a field invariant.
var ErrInvalidEntry = errors.New("invalid entry")

// EntryTypes lists the accepted entry types.
var EntryTypes = []string{EntryExpense, EntryIncome, EntryTransfer}

// TransferTypes lists the accepted transfer types.
var TransferTypes = []string{TransferInternal, TransferExternalOut, TransferExternalIn}

// Entry is a single ledger line.
type Entry struct {
	ID              string
	HouseholdID     string
	CreatedByUserID string

	Type         string // expense | income | transfer
	TransferType string // internal | external_out | external_in, only for transfers

	// Amount is positive, in the minor currency unit.
	Amount int64

	// Date is the calendar day of the entry ("YYYY-MM-DD").
	Date string

	// OccurredAt is an optional Unix timestamp with time-of-day precision.
	OccurredAt *int64

	CategoryID    string
	SubcategoryID string
	Memo          string
	PayerMemberID string

	// Shared marks an expense for settlement among household members.
	Shared bool

	AccountID             string
	TransferFromAccountID string
	TransferToAccountID   string

	CreatedAt int64
	UpdatedAt int64

	// Denormalized names filled on read.
	CategoryName            string
	SubcategoryName         string
	PayerName               string
	AccountName             string
	TransferFromAccountName string
	TransferToAccountName   string
}

// Month returns the "YYYY-MM" month of the entry date.
func (e *Entry) Month() string {
	if len(e.Date) < 7 {
		return ""
	}
	return e.Date[:7]
}

// IsSharedExpense reports whether the entry takes part in settlement.
func (e *Entry) IsSharedExpense() bool {
	return e.Type == EntryExpense && e.Shared
}

// Validate checks the field invariants of an entry. It does not check that
// referenced members, categories or accounts exist.
func (e *Entry) Validate() error {
	if !slices.Contains(EntryTypes, e.Type) {
		return fmt.Errorf("%w: type must be one of %v", ErrInvalidEntry, EntryTypes)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if e.PayerMemberID == "" {
		return fmt.Errorf("%w: payer_member_id is required", ErrInvalidEntry)
	}
	if e.Shared && e.Type != EntryExpense {
		return fmt.Errorf("%w: only expenses can be shared", ErrInvalidEntry)
	}
	if e.SubcategoryID != "" && e.CategoryID == "" {
		return fmt.Errorf("%w: subcategory needs a category", ErrInvalidEntry)
	}

	if e.Type != EntryTransfer {
		if e.TransferType != "" || e.TransferFromAccountID != "" || e.TransferToAccountID != "" {
			return fmt.Errorf("%w: transfer fields are only allowed on transfers", ErrInvalidEntry)
		}
		return nil
	}

	switch e.TransferType {
	case TransferInternal:
		if e.TransferFromAccountID == "" || e.TransferToAccountID == "" {
			return fmt.Errorf("%w: internal transfer needs both accounts", ErrInvalidEntry)
		}
		if e.TransferFromAccountID == e.TransferToAccountID {
			return fmt.Errorf("%w: internal transfer accounts must differ", ErrInvalidEntry)
		}
	case TransferExternalOut:
		if e.TransferFromAccountID == "" {
			return fmt.Errorf("%w: outgoing transfer needs a source account", ErrInvalidEntry)
		}
	case TransferExternalIn:
		if e.TransferToAccountID == "" {
			return fmt.Errorf("%w: incoming transfer needs a destination account", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: transfer_type must be one of %v", ErrInvalidEntry, TransferTypes)
	}
	return nil
}

// AccountIDs returns every account the entry references.
func (e *Entry) AccountIDs() []string {
	var ids []string
	for _, id := range []string{e.AccountID, e.TransferFromAccountID, e.TransferToAccountID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
