package calculator

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateMonth = errors.New("month listed more than once")
	ErrSelfPayment    = errors.New("payment sender and receiver are the same")
)

// MonthNet holds every party's net settlement position for one month.
type MonthNet struct {
	Month string // YYYY-MM

	// Nets maps party ID to signed amount (positive = is owed).
	Nets map[string]int64

	// Finalized is true when the nets come from finalized records.
	Finalized bool
}

// Payment is money handed from one party to another in a month.
type Payment struct {
	Month  string
	From   string
	To     string
	Amount int64
}

// CumulativePoint is one month in a party's running balance.
type CumulativePoint struct {
	Month     string
	Net       int64 // settlement position for the month
	Payments  int64 // +sent, -received
	Running   int64 // balance after this month
	Finalized bool
}

// CumulativeBalance is a party's running balance across months.
type CumulativeBalance struct {
	PartyID string
	Balance int64
	History []CumulativePoint
}

// CalculateCumulative folds monthly nets and payments into running balances.
//
// For each party and month in ascending order:
//
//	running = previous running + month net + sent payments - received payments
//
// Paying a debt moves the payer's balance up toward zero and the receiver's
// down by the same amount. Each month may appear at most once in months, so
// a finalized month can never be counted twice.
func CalculateCumulative(months []MonthNet, payments []Payment) ([]CumulativeBalance, error) {
	monthSet := make(map[string]bool)
	nets := make(map[string]MonthNet, len(months))
	parties := make(map[string]bool)

	for _, m := range months {
		if _, dup := nets[m.Month]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMonth, m.Month)
		}
		nets[m.Month] = m
		monthSet[m.Month] = true
		for id := range m.Nets {
			parties[id] = true
		}
	}

	paid := make(map[string]map[string]int64)
	for _, p := range payments {
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: payment of %d", ErrInvalidAmount, p.Amount)
		}
		if p.From == p.To {
			return nil, fmt.Errorf("%w: %s", ErrSelfPayment, p.From)
		}
		if paid[p.Month] == nil {
			paid[p.Month] = make(map[string]int64)
		}
		paid[p.Month][p.From] += p.Amount
		paid[p.Month][p.To] -= p.Amount
		monthSet[p.Month] = true
		parties[p.From] = true
		parties[p.To] = true
	}

	ordered := make([]string, 0, len(monthSet))
	for m := range monthSet {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	ids := make([]string, 0, len(parties))
	for id := range parties {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]CumulativeBalance, 0, len(ids))
	for _, id := range ids {
		bal := CumulativeBalance{PartyID: id}
		for _, month := range ordered {
			point := CumulativePoint{
				Month:     month,
				Net:       nets[month].Nets[id],
				Payments:  paid[month][id],
				Finalized: nets[month].Finalized,
			}
			bal.Balance += point.Net + point.Payments
			point.Running = bal.Balance
			bal.History = append(bal.History, point)
		}
		result = append(result, bal)
	}

	return result, nil
}
