package api

type Summary struct {
	TotalIncome      int64                `json:"total_income"`
	TotalExpense     int64                `json:"total_expense"`
	TotalTransferIn  int64                `json:"total_transfer_in"`
	TotalTransferOut int64                `json:"total_transfer_out"`
	NetBalance       int64                `json:"net_balance"`
	EntryCount       int                  `json:"entry_count"`
	ByCategory       []*CategoryBreakdown `json:"by_category"`
	ByMember         []*MemberBreakdown   `json:"by_member"`
}

type CategoryBreakdown struct {
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
	Count        int    `json:"count"`

	// Percentage of total expense with one fractional digit, e.g. "33.3".
	Percentage string `json:"percentage"`
}

type MemberBreakdown struct {
	MemberID      string `json:"member_id"`
	MemberName    string `json:"member_name"`
	TotalExpense  int64  `json:"total_expense"`
	TotalIncome   int64  `json:"total_income"`
	SharedExpense int64  `json:"shared_expense"`
}

type GetSummaryRequest struct {
	Filter *EntryFilter `json:"filter,omitempty"`
}

type GetSummaryResponse struct {
	Summary *Summary `json:"summary"`

	// DateFrom and DateTo are the resolved date bounds; empty when unbounded.
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}
