package models

// SettlementRecord stores one user's settlement amount for one month.
// Once IsFinalized is set the amount is never recomputed.
type SettlementRecord struct {
	ID          string
	HouseholdID string
	UserID      string
	Month       string // YYYY-MM

	// SettlementAmount is positive when the user is owed money and negative
	// when the user owes money.
	SettlementAmount int64

	IsFinalized bool
	CreatedAt   int64
	UpdatedAt   int64
}

// SettlementPayment represents money handed from one member to another to
// clear settlement debt.
type SettlementPayment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	HouseholdID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is positive, in the minor currency unit.
	Amount int64

	// PaidOn is the day the payment happened ("YYYY-MM-DD").
	PaidOn string

	// CreatedByUserID is the user who recorded the payment.
	CreatedByUserID string

	// Note is an optional description for the payment.
	Note string

	CreatedAt int64
}

// Month returns the "YYYY-MM" month of the payment.
func (p *SettlementPayment) Month() string {
	if len(p.PaidOn) < 7 {
		return ""
	}
	return p.PaidOn[:7]
}
