package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidFilter is returned when a filter or page request is malformed.
var ErrInvalidFilter = errors.New("invalid filter")

// UncategorizedID selects entries without a category in EntryFilter.CategoryIDs.
const UncategorizedID = "uncategorized"

// Date presets.
const (
	PresetToday     = "today"
	PresetThisWeek  = "this_week"
	PresetThisMonth = "this_month"
)

// Page size limits.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// EntryFilter narrows a list of entries. Zero values mean "no constraint".
// Date constraints (Month, DatePreset, DateFrom, DateTo) are intersected.
type EntryFilter struct {
	Month      string // YYYY-MM
	DateFrom   string // YYYY-MM-DD, inclusive
	DateTo     string // YYYY-MM-DD, inclusive
	DatePreset string // today | this_week | this_month

	Types        []string
	TransferType string

	// CategoryIDs may contain UncategorizedID.
	CategoryIDs []string

	AccountIDs    []string
	PayerMemberID string
	Shared        *bool

	AmountMin *int64
	AmountMax *int64

	// MemoSearch is a case-insensitive substring match on the memo.
	MemoSearch string
}

// Validate checks the filter values.
func (f *EntryFilter) Validate() error {
	if f.Month != "" {
		if _, err := time.Parse(MonthLayout, f.Month); err != nil {
			return fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidFilter)
		}
	}
	for name, v := range map[string]string{"date_from": f.DateFrom, "date_to": f.DateTo} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidFilter, name)
		}
	}
	switch f.DatePreset {
	case "", PresetToday, PresetThisWeek, PresetThisMonth:
	default:
		return fmt.Errorf("%w: date_preset must be 'today', 'this_week', or 'this_month'", ErrInvalidFilter)
	}
	for _, t := range f.Types {
		if !slices.Contains(EntryTypes, t) {
			return fmt.Errorf("%w: types must be 'expense', 'income', or 'transfer'", ErrInvalidFilter)
		}
	}
	if f.TransferType != "" && !slices.Contains(TransferTypes, f.TransferType) {
		return fmt.Errorf("%w: transfer_type must be 'internal', 'external_out', or 'external_in'", ErrInvalidFilter)
	}
	if f.AmountMin != nil && f.AmountMax != nil && *f.AmountMin > *f.AmountMax {
		return fmt.Errorf("%w: amount_min exceeds amount_max", ErrInvalidFilter)
	}
	return nil
}

// HasDateConstraint reports whether any date field is set.
func (f *EntryFilter) HasDateConstraint() bool {
	return f.Month != "" || f.DateFrom != "" || f.DateTo != "" || f.DatePreset != ""
}

// DateRange resolves every date constraint into one inclusive range.
// Empty bounds are open. now anchors the presets.
func (f *EntryFilter) DateRange(now time.Time) (from, to string) {
	narrow := func(lo, hi string) {
		if lo != "" && (from == "" || lo > from) {
			from = lo
		}
		if hi != "" && (to == "" || hi < to) {
			to = hi
		}
	}

	if f.Month != "" {
		if start, err := time.Parse(MonthLayout, f.Month); err == nil {
			narrow(monthBounds(start))
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch f.DatePreset {
	case PresetToday:
		d := today.Format(DateLayout)
		narrow(d, d)
	case PresetThisWeek:
		// Weeks start on Monday.
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		narrow(monday.Format(DateLayout), monday.AddDate(0, 0, 6).Format(DateLayout))
	case PresetThisMonth:
		narrow(monthBounds(today))
	}

	narrow(f.DateFrom, f.DateTo)
	return from, to
}

// MonthRange returns the first and last day of a "YYYY-MM" month.
func MonthRange(month string) (from, to string, err error) {
	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidFilter)
	}
	from, to = monthBounds(start)
	return from, to, nil
}

func monthBounds(t time.Time) (string, string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// Sort fields and orders for entry listings.
const (
	SortByOccurredAt = "occurred_at"
	SortByAmount     = "amount"
	SortAsc          = "asc"
	SortDesc         = "desc"
)

// PageRequest selects one page of a sorted listing.
type PageRequest struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize fills defaults and validates the page request.
func (p *PageRequest) Normalize() error {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.SortBy == "" {
		p.SortBy = SortByOccurredAt
	}
	if p.SortOrder == "" {
		p.SortOrder = SortDesc
	}
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidFilter)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidFilter, MaxPageSize)
	}
	if p.SortBy != SortByOccurredAt && p.SortBy != SortByAmount {
		return fmt.Errorf("%w: sort_by must be 'occurred_at' or 'amount'", ErrInvalidFilter)
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		return fmt.Errorf("%w: sort_order must be 'asc' or 'desc'", ErrInvalidFilter)
	}
	return nil
}

// Offset returns the number of rows to skip.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns the page count for total rows; at least 1.
func (p *PageRequest) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}
