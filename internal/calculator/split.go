package calculator

import (
	"fmt"
	"sort"
)

// SplitEqually divides total among members in whole minor units.
//
// Every member gets total / len(members). The remainder is handed out one
// unit at a time to the members who paid the most (ties by member ID), so
// the shares always add up to total and those who fronted the money absorb
// the odd units.
func SplitEqually(total int64, memberIDs []string, paid map[string]int64) (map[string]int64, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: total cannot be negative", ErrInvalidAmount)
	}
	shares := make(map[string]int64, len(memberIDs))
	if len(memberIDs) == 0 {
		return shares, nil
	}

	n := int64(len(memberIDs))
	base := total / n
	remainder := total % n
	for _, id := range memberIDs {
		shares[id] = base
	}

	order := make([]string, len(memberIDs))
	copy(order, memberIDs)
	sort.Slice(order, func(i, j int) bool {
		pi, pj := paid[order[i]], paid[order[j]]
		if pi != pj {
			return pi > pj
		}
		return order[i] < order[j]
	})
	for i := int64(0); i < remainder; i++ {
		shares[order[i]]++
	}

	return shares, nil
}
