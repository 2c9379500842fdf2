package calculator

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// UncategorizedName labels expenses without a category.
const UncategorizedName = "Uncategorized"

// SummaryEntry is the minimal view of an entry needed for aggregation.
type SummaryEntry struct {
	Type                  string // expense | income | transfer
	TransferType          string // internal | external_out | external_in
	Amount                int64
	CategoryID            string
	PayerMemberID         string
	Shared                bool
	TransferFromAccountID string
	TransferToAccountID   string
}

// MemberRef names a household member for the per-member breakdown.
type MemberRef struct {
	ID   string
	Name string
}

// SummaryOptions controls grouping.
type SummaryOptions struct {
	// Members are listed in by-member output in this order, even with no entries.
	Members []MemberRef

	// CategoryNames resolves category IDs.
	CategoryNames map[string]string

	// AccountIDs is the account filter the entries were selected with.
	// Internal transfers only count when it is set.
	AccountIDs []string
}

// CategoryTotal is the expense total for one category.
type CategoryTotal struct {
	CategoryID   string // empty for uncategorized
	CategoryName string
	Total        int64
	Count        int

	// Share is the percentage of total expense, one fractional digit.
	Share decimal.Decimal
}

// MemberTotal is one member's activity in the summary.
type MemberTotal struct {
	MemberID      string
	MemberName    string
	TotalExpense  int64
	TotalIncome   int64
	SharedExpense int64
}

// Summary is the aggregate of a set of entries.
type Summary struct {
	TotalIncome      int64
	TotalExpense     int64
	TotalTransferIn  int64
	TotalTransferOut int64

	// NetBalance = (income + transfer in) - (expense + transfer out).
	NetBalance int64

	EntryCount int
	ByCategory []CategoryTotal
	ByMember   []MemberTotal
}

// Summarize aggregates entries into totals, a per-category expense breakdown
// and a per-member breakdown.
//
// Transfers: external_in counts as transfer in and external_out as transfer
// out. Internal transfers move money inside the household and are ignored
// unless an account filter is set, in which case leaving a filtered account
// is transfer out and arriving at one is transfer in.
func Summarize(entries []SummaryEntry, opts SummaryOptions) (*Summary, error) {
	filtered := make(map[string]bool, len(opts.AccountIDs))
	for _, id := range opts.AccountIDs {
		filtered[id] = true
	}

	s := &Summary{EntryCount: len(entries)}
	categories := make(map[string]*CategoryTotal)
	members := make(map[string]*MemberTotal, len(opts.Members))
	var memberOrder []string
	for _, m := range opts.Members {
		if _, ok := members[m.ID]; ok {
			continue
		}
		members[m.ID] = &MemberTotal{MemberID: m.ID, MemberName: m.Name}
		memberOrder = append(memberOrder, m.ID)
	}

	add := func(total *int64, amount int64) error {
		if *total > math.MaxInt64-amount {
			return ErrAmountOverflow
		}
		*total += amount
		return nil
	}

	for _, e := range entries {
		if e.Amount <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, e.Amount)
		}

		member, ok := members[e.PayerMemberID]
		if !ok && e.PayerMemberID != "" {
			member = &MemberTotal{MemberID: e.PayerMemberID}
			members[e.PayerMemberID] = member
			memberOrder = append(memberOrder, e.PayerMemberID)
		}

		switch e.Type {
		case "income":
			if err := add(&s.TotalIncome, e.Amount); err != nil {
				return nil, err
			}
			if member != nil {
				member.TotalIncome += e.Amount
			}
		case "expense":
			if err := add(&s.TotalExpense, e.Amount); err != nil {
				return nil, err
			}
			if member != nil {
				member.TotalExpense += e.Amount
				if e.Shared {
					member.SharedExpense += e.Amount
				}
			}
			cat, ok := categories[e.CategoryID]
			if !ok {
				cat = &CategoryTotal{CategoryID: e.CategoryID, CategoryName: categoryName(e.CategoryID, opts.CategoryNames)}
				categories[e.CategoryID] = cat
			}
			cat.Total += e.Amount
			cat.Count++
		case "transfer":
			in, out := transferDirection(e, filtered)
			if in {
				if err := add(&s.TotalTransferIn, e.Amount); err != nil {
					return nil, err
				}
			}
			if out {
				if err := add(&s.TotalTransferOut, e.Amount); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("unknown entry type %q", e.Type)
		}
	}

	inflow, outflow := s.TotalIncome, s.TotalExpense
	if err := add(&inflow, s.TotalTransferIn); err != nil {
		return nil, err
	}
	if err := add(&outflow, s.TotalTransferOut); err != nil {
		return nil, err
	}
	// Both sides are non-negative, so the difference cannot overflow.
	s.NetBalance = inflow - outflow

	for _, cat := range categories {
		cat.Share = percentage(cat.Total, s.TotalExpense)
		s.ByCategory = append(s.ByCategory, *cat)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.CategoryName < b.CategoryName
	})

	for _, id := range memberOrder {
		s.ByMember = append(s.ByMember, *members[id])
	}

	return s, nil
}

func transferDirection(e SummaryEntry, filtered map[string]bool) (in, out bool) {
	switch e.TransferType {
	case "external_in":
		return true, false
	case "external_out":
		return false, true
	case "internal":
		if len(filtered) == 0 {
			return false, false
		}
		return filtered[e.TransferToAccountID], filtered[e.TransferFromAccountID]
	}
	return false, false
}

func categoryName(id string, names map[string]string) string {
	if id == "" {
		return UncategorizedName
	}
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return UncategorizedName
}

func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(whole), 1)
}
