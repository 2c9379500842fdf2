package api

// MemberBalance is one member's position in a month's settlement.
type MemberBalance struct {
	MemberID string `json:"member_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Paid     int64  `json:"paid"`
	Share    int64  `json:"share"`

	// Net is positive when the member is owed money.
	Net int64 `json:"net"`
}

// Transfer is a payment that settles part of a month.
type Transfer struct {
	FromMemberID string `json:"from_member_id"`
	FromName     string `json:"from_name"`
	ToMemberID   string `json:"to_member_id"`
	ToName       string `json:"to_name"`
	Amount       int64  `json:"amount"`
}

type Settlement struct {
	Month       string           `json:"month"`
	MemberCount int              `json:"member_count"`
	TotalShared int64            `json:"total_shared"`
	FairShare   int64            `json:"fair_share"`
	IsFinalized bool             `json:"is_finalized"`
	Balances    []*MemberBalance `json:"balances"`
	Transfers   []*Transfer      `json:"transfers"`
}

type SettlementRecord struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Month            string `json:"month"`
	SettlementAmount int64  `json:"settlement_amount"`
	IsFinalized      bool   `json:"is_finalized"`
	UpdatedAt        int64  `json:"updated_at"`
}

type CumulativePoint struct {
	Month     string `json:"month"`
	Net       int64  `json:"net"`
	Payments  int64  `json:"payments"`
	Running   int64  `json:"running"`
	Finalized bool   `json:"finalized"`
}

// CumulativeBalance is a member's running balance across months. Positive
// means the member is owed money.
type CumulativeBalance struct {
	MemberID string             `json:"member_id"`
	UserID   string             `json:"user_id"`
	Name     string             `json:"name"`
	Balance  int64              `json:"balance"`
	History  []*CumulativePoint `json:"history"`
}

type Payment struct {
	ID              string `json:"id"`
	FromMemberID    string `json:"from_member_id"`
	FromName        string `json:"from_name"`
	ToMemberID      string `json:"to_member_id"`
	ToName          string `json:"to_name"`
	Amount          int64  `json:"amount"`
	PaidOn          string `json:"paid_on"`
	Note            string `json:"note,omitempty"`
	CreatedByUserID string `json:"created_by_user_id"`
	CreatedAt       int64  `json:"created_at"`
}

type GetSettlementRequest struct {
	Month string `json:"month,omitempty"`
}

type GetSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type SaveSettlementRequest struct {
	Month string `json:"month,omitempty"`
}

type SaveSettlementResponse struct {
	Settlement *Settlement         `json:"settlement"`
	Records    []*SettlementRecord `json:"records"`
}

type FinalizeSettlementRequest struct {
	Month string `json:"month,omitempty"`
}

type FinalizeSettlementResponse struct {
	Settlement *Settlement         `json:"settlement"`
	Records    []*SettlementRecord `json:"records"`

	// AlreadyFinalized is true when the month was finalized before this call.
	AlreadyFinalized bool `json:"already_finalized"`
}

type ReopenSettlementRequest struct {
	Month string `json:"month"`
}

type ReopenSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type GetCumulativeSettlementRequest struct {
	// Month is the last month included; defaults to the current month.
	Month string `json:"month,omitempty"`
}

type GetCumulativeSettlementResponse struct {
	Month    string               `json:"month"`
	Balances []*CumulativeBalance `json:"balances"`
}

type RecordPaymentRequest struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       int64  `json:"amount"`
	PaidOn       string `json:"paid_on,omitempty"`
	Note         string `json:"note,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsRequest struct {
	// Month limits the list to payments up to the end of that month.
	Month string `json:"month,omitempty"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	ID string `json:"id"`
}

type DeletePaymentResponse struct{}
