// Package calculator holds the pure settlement and summary computations.
// Nothing here touches storage; callers load data and pass plain values.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrAmountOverflow  = errors.New("amount total overflows")
	ErrUnknownPayer    = errors.New("payer is not a household member")
	ErrDuplicateMember = errors.New("duplicate member")
	ErrUnbalanced      = errors.New("balances do not sum to zero")
)

// SharedExpense is the minimal view of a shared expense entry.
type SharedExpense struct {
	PayerMemberID string
	Amount        int64
}

// MemberBalance is one member's position for a settlement period.
type MemberBalance struct {
	MemberID string
	Paid     int64 // shared expenses paid by this member
	Share    int64 // this member's part of the total
	Net      int64 // Paid - Share; positive = is owed, negative = owes
}

// Transfer is a payment from a debtor to a creditor.
type Transfer struct {
	From   string
	To     string
	Amount int64
}

// Settlement is the result of CalculateSettlement.
type Settlement struct {
	MemberCount int
	TotalShared int64

	// FairShare is the integer per-member share before the remainder is
	// distributed.
	FairShare int64

	// Balances are sorted by member ID.
	Balances []MemberBalance

	// Transfers are in the order they were matched.
	Transfers []Transfer
}

// CalculateSettlement splits the shared expenses equally among the members
// and returns each member's net position plus the transfers that clear them.
//
// Algorithm:
//   - total = sum of amounts; each amount must be positive
//   - share = total / members, remainder to the biggest payers (SplitEqually)
//   - net = paid - share
//   - transfers: largest debtor pays largest creditor until all nets are zero
//
// No members means no division: the result carries the total but no
// balances and no transfers.
func CalculateSettlement(expenses []SharedExpense, memberIDs []string) (*Settlement, error) {
	members := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		if members[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, id)
		}
		members[id] = true
	}

	paid := make(map[string]int64, len(memberIDs))
	var total int64
	for _, e := range expenses {
		if e.Amount <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, e.Amount)
		}
		if total > math.MaxInt64-e.Amount {
			return nil, ErrAmountOverflow
		}
		if len(members) > 0 && !members[e.PayerMemberID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPayer, e.PayerMemberID)
		}
		total += e.Amount
		paid[e.PayerMemberID] += e.Amount
	}

	result := &Settlement{
		MemberCount: len(memberIDs),
		TotalShared: total,
	}
	if len(memberIDs) == 0 {
		return result, nil
	}
	result.FairShare = total / int64(len(memberIDs))

	shares, err := SplitEqually(total, memberIDs, paid)
	if err != nil {
		return nil, err
	}

	nets := make(map[string]int64, len(memberIDs))
	for _, id := range memberIDs {
		bal := MemberBalance{
			MemberID: id,
			Paid:     paid[id],
			Share:    shares[id],
			Net:      paid[id] - shares[id],
		}
		result.Balances = append(result.Balances, bal)
		nets[id] = bal.Net
	}
	sort.Slice(result.Balances, func(i, j int) bool {
		return result.Balances[i].MemberID < result.Balances[j].MemberID
	})

	result.Transfers, err = MinimizeTransfers(nets)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MinimizeTransfers turns net positions into payments. Nets must sum to zero.
//
// Greedy matching: the largest remaining debtor pays the largest remaining
// creditor min(debt, credit); ties go to the smaller ID. Each step settles at
// least one side, so there are at most len(nets)-1 transfers and none of them
// is zero.
func MinimizeTransfers(nets map[string]int64) ([]Transfer, error) {
	var sum int64
	debt := make(map[string]int64)
	credit := make(map[string]int64)
	for id, net := range nets {
		sum += net
		switch {
		case net < 0:
			debt[id] = -net
		case net > 0:
			credit[id] = net
		}
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: off by %d", ErrUnbalanced, sum)
	}

	var transfers []Transfer
	for len(debt) > 0 && len(credit) > 0 {
		from := largest(debt)
		to := largest(credit)

		amount := min(debt[from], credit[to])
		transfers = append(transfers, Transfer{From: from, To: to, Amount: amount})

		debt[from] -= amount
		credit[to] -= amount
		if debt[from] == 0 {
			delete(debt, from)
		}
		if credit[to] == 0 {
			delete(credit, to)
		}
	}

	return transfers, nil
}

// largest returns the key with the biggest value, smallest key on ties.
func largest(m map[string]int64) string {
	var best string
	var bestVal int64 = -1
	for id, v := range m {
		if v > bestVal || (v == bestVal && id < best) {
			best, bestVal = id, v
		}
	}
	return best
}
