package models

// Account ownership types.
const (
	AccountPersonal = "personal"
	AccountShared   = "shared"
)

// AccountTypes lists the accepted account kinds.
var AccountTypes = []string{"checking", "savings", "deposit", "securities", "card"}

// Account is a bank account, card or wallet that entries are booked against.
type Account struct {
	ID          string
	OwnerUserID string

	// HouseholdID is set when the account was created by a household member.
	HouseholdID string

	Name        string
	BankName    string
	Type        string // personal | shared
	AccountType string // checking | savings | deposit | securities | card

	// Balance is an optional user-maintained running balance.
	Balance *int64

	// IsSharedVisible exposes the account to the other household members.
	// Always true for shared accounts.
	IsSharedVisible bool

	CreatedAt int64
	UpdatedAt int64

	// OwnerName is denormalized from the users table on read.
	OwnerName string
}

// VisibleTo reports whether a user in the given household may see the account.
func (a *Account) VisibleTo(userID, householdID string) bool {
	if a.OwnerUserID == userID {
		return true
	}
	return householdID != "" && a.HouseholdID == householdID && a.IsSharedVisible
}
