package api

type Account struct {
	ID              string `json:"id"`
	OwnerUserID     string `json:"owner_user_id"`
	OwnerName       string `json:"owner_name"`
	HouseholdID     string `json:"household_id,omitempty"`
	Name            string `json:"name"`
	BankName        string `json:"bank_name,omitempty"`
	Type            string `json:"type"`
	AccountType     string `json:"account_type"`
	Balance         *int64 `json:"balance,omitempty"`
	IsSharedVisible bool   `json:"is_shared_visible"`

	// IsOwner is true when the caller may edit the account.
	IsOwner bool `json:"is_owner"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type GetAccountRequest struct {
	ID string `json:"id"`
}

type GetAccountResponse struct {
	Account *Account `json:"account"`
}

type CreateAccountRequest struct {
	Name            string `json:"name"`
	BankName        string `json:"bank_name,omitempty"`
	Type            string `json:"type"`
	AccountType     string `json:"account_type"`
	Balance         *int64 `json:"balance,omitempty"`
	IsSharedVisible bool   `json:"is_shared_visible"`
}

type CreateAccountResponse struct {
	Account *Account `json:"account"`
}

// UpdateAccountRequest changes only the fields that are set.
type UpdateAccountRequest struct {
	ID              string  `json:"id"`
	Name            *string `json:"name,omitempty"`
	BankName        *string `json:"bank_name,omitempty"`
	Type            *string `json:"type,omitempty"`
	AccountType     *string `json:"account_type,omitempty"`
	Balance         *int64  `json:"balance,omitempty"`
	ClearBalance    bool    `json:"clear_balance,omitempty"`
	IsSharedVisible *bool   `json:"is_shared_visible,omitempty"`
}

type UpdateAccountResponse struct {
	Account *Account `json:"account"`
}

type DeleteAccountRequest struct {
	ID string `json:"id"`
}

type DeleteAccountResponse struct{}
