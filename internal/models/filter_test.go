package models

import (
	"testing"
	"time"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEntryFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  EntryFilter
		wantErr bool
	}{
		{name: "empty", filter: EntryFilter{}},
		{name: "month", filter: EntryFilter{Month: "2024-02"}},
		{name: "bad month", filter: EntryFilter{Month: "2024-13"}, wantErr: true},
		{name: "bad date_from", filter: EntryFilter{DateFrom: "2024-02-30"}, wantErr: true},
		{name: "bad preset", filter: EntryFilter{DatePreset: "yesterday"}, wantErr: true},
		{name: "bad type", filter: EntryFilter{Types: []string{"expense", "gift"}}, wantErr: true},
		{name: "bad transfer type", filter: EntryFilter{TransferType: "wire"}, wantErr: true},
		{
			name:    "inverted amount range",
			filter:  EntryFilter{AmountMin: int64Ptr(500), AmountMax: int64Ptr(100)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntryFilterDateRange(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, 3, 13, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   EntryFilter
		wantFrom string
		wantTo   string
	}{
		{name: "no constraint", filter: EntryFilter{}},
		{name: "month", filter: EntryFilter{Month: "2024-02"}, wantFrom: "2024-02-01", wantTo: "2024-02-29"},
		{name: "today", filter: EntryFilter{DatePreset: PresetToday}, wantFrom: "2024-03-13", wantTo: "2024-03-13"},
		{name: "this week", filter: EntryFilter{DatePreset: PresetThisWeek}, wantFrom: "2024-03-11", wantTo: "2024-03-17"},
		{name: "this month", filter: EntryFilter{DatePreset: PresetThisMonth}, wantFrom: "2024-03-01", wantTo: "2024-03-31"},
		{
			name:     "month narrowed by explicit dates",
			filter:   EntryFilter{Month: "2024-03", DateFrom: "2024-03-10", DateTo: "2024-04-10"},
			wantFrom: "2024-03-10",
			wantTo:   "2024-03-31",
		},
		{name: "open ended", filter: EntryFilter{DateFrom: "2024-01-05"}, wantFrom: "2024-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.filter.DateRange(now)
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("DateRange() = (%q, %q), want (%q, %q)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}
	if err := p.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if p.Page != 1 || p.PageSize != DefaultPageSize || p.SortBy != SortByOccurredAt || p.SortOrder != SortDesc {
		t.Errorf("unexpected defaults: %+v", p)
	}

	if got := p.TotalPages(0); got != 1 {
		t.Errorf("TotalPages(0) = %d, want 1", got)
	}
	if got := p.TotalPages(101); got != 3 {
		t.Errorf("TotalPages(101) = %d, want 3", got)
	}

	bad := []PageRequest{
		{Page: -1},
		{PageSize: MaxPageSize + 1},
		{SortBy: "payer"},
		{SortOrder: "up"},
	}
	for _, b := range bad {
		if err := b.Normalize(); err == nil {
			t.Errorf("expected error for %+v", b)
		}
	}
}
