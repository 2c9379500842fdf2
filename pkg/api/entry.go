package api

// Entry is a single income, expense or transfer.
type Entry struct {
	ID                    string `json:"id"`
	HouseholdID           string `json:"household_id"`
	CreatedByUserID       string `json:"created_by_user_id"`
	Type                  string `json:"type"`
	TransferType          string `json:"transfer_type,omitempty"`
	Amount                int64  `json:"amount"`
	Date                  string `json:"date"`
	OccurredAt            *int64 `json:"occurred_at,omitempty"`
	CategoryID            string `json:"category_id,omitempty"`
	CategoryName          string `json:"category_name,omitempty"`
	SubcategoryID         string `json:"subcategory_id,omitempty"`
	SubcategoryName       string `json:"subcategory_name,omitempty"`
	Memo                  string `json:"memo,omitempty"`
	PayerMemberID         string `json:"payer_member_id"`
	PayerName             string `json:"payer_name,omitempty"`
	Shared                bool   `json:"shared"`
	AccountID             string `json:"account_id,omitempty"`
	AccountName           string `json:"account_name,omitempty"`
	TransferFromAccountID string `json:"transfer_from_account_id,omitempty"`
	TransferFromName      string `json:"transfer_from_account_name,omitempty"`
	TransferToAccountID   string `json:"transfer_to_account_id,omitempty"`
	TransferToName        string `json:"transfer_to_account_name,omitempty"`
	CreatedAt             int64  `json:"created_at"`
	UpdatedAt             int64  `json:"updated_at"`
}

// EntryInput holds the writable fields of an entry.
type EntryInput struct {
	Type                  string `json:"type"`
	TransferType          string `json:"transfer_type,omitempty"`
	Amount                int64  `json:"amount"`
	Date                  string `json:"date"`
	OccurredAt            *int64 `json:"occurred_at,omitempty"`
	CategoryID            string `json:"category_id,omitempty"`
	SubcategoryID         string `json:"subcategory_id,omitempty"`
	Memo                  string `json:"memo,omitempty"`
	PayerMemberID         string `json:"payer_member_id,omitempty"`
	Shared                bool   `json:"shared"`
	AccountID             string `json:"account_id,omitempty"`
	TransferFromAccountID string `json:"transfer_from_account_id,omitempty"`
	TransferToAccountID   string `json:"transfer_to_account_id,omitempty"`
}

// EntryFilter narrows entry listings and summaries. Unset fields match all.
type EntryFilter struct {
	Month         string   `json:"month,omitempty"`
	DateFrom      string   `json:"date_from,omitempty"`
	DateTo        string   `json:"date_to,omitempty"`
	DatePreset    string   `json:"date_preset,omitempty"`
	Types         []string `json:"types,omitempty"`
	TransferType  string   `json:"transfer_type,omitempty"`
	CategoryIDs   []string `json:"category_ids,omitempty"`
	AccountIDs    []string `json:"account_ids,omitempty"`
	PayerMemberID string   `json:"payer_member_id,omitempty"`
	Shared        *bool    `json:"shared,omitempty"`
	AmountMin     *int64   `json:"amount_min,omitempty"`
	AmountMax     *int64   `json:"amount_max,omitempty"`
	MemoSearch    string   `json:"memo_search,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Category classifies entries. Default categories have no household.
type Category struct {
	ID            string         `json:"id"`
	HouseholdID   string         `json:"household_id,omitempty"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	SortOrder     int            `json:"sort_order"`
	Color         string         `json:"color,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	Subcategories []*Subcategory `json:"subcategories,omitempty"`
}

type Subcategory struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	HouseholdID string `json:"household_id"`
	Name        string `json:"name"`
	SortOrder   int    `json:"sort_order"`
}

type ListEntriesRequest struct {
	Filter    *EntryFilter `json:"filter,omitempty"`
	Page      int          `json:"page,omitempty"`
	PageSize  int          `json:"page_size,omitempty"`
	SortBy    string       `json:"sort_by,omitempty"`
	SortOrder string       `json:"sort_order,omitempty"`

	// IncludeSummary adds the summary of every matching entry, not just the page.
	IncludeSummary bool `json:"include_summary,omitempty"`
}

type ListEntriesResponse struct {
	Entries    []*Entry    `json:"entries"`
	Pagination *Pagination `json:"pagination"`
	Summary    *Summary    `json:"summary,omitempty"`
}

type GetEntryRequest struct {
	ID string `json:"id"`
}

type GetEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type CreateEntryRequest struct {
	Entry *EntryInput `json:"entry"`
}

type CreateEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type UpdateEntryRequest struct {
	ID    string      `json:"id"`
	Entry *EntryInput `json:"entry"`
}

type UpdateEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type DeleteEntryRequest struct {
	ID string `json:"id"`
}

type DeleteEntryResponse struct{}

type BulkDeleteEntriesRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteEntriesResponse struct {
	DeletedCount int `json:"deleted_count"`
}

type ListCategoriesRequest struct {
	// Type limits the result to expense or income categories.
	Type string `json:"type,omitempty"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type CreateCategoryResponse struct {
	Category *Category `json:"category"`
}

// UpdateCategoryRequest changes only the fields that are set. The type of a
// category is fixed at creation.
type UpdateCategoryRequest struct {
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
	Color     *string `json:"color,omitempty"`
	Icon      *string `json:"icon,omitempty"`
}

type UpdateCategoryResponse struct {
	Category *Category `json:"category"`
}

type DeleteCategoryRequest struct {
	ID string `json:"id"`
}

type DeleteCategoryResponse struct{}

type CreateSubcategoryRequest struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

type CreateSubcategoryResponse struct {
	Subcategory *Subcategory `json:"subcategory"`
}

// UpdateSubcategoryRequest changes only the fields that are set.
type UpdateSubcategoryRequest struct {
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

type UpdateSubcategoryResponse struct {
	Subcategory *Subcategory `json:"subcategory"`
}

type DeleteSubcategoryRequest struct {
	ID string `json:"id"`
}

type DeleteSubcategoryResponse struct{}
