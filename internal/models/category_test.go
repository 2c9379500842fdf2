package models

import (
	"errors"
	"strings"
	"testing"
)

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
	}{
		{name: "expense", category: Category{Name: "Pets", Type: EntryExpense, Color: "#F97316", Icon: "🐶"}},
		{name: "income", category: Category{Name: "Bonus", Type: EntryIncome}},
		{name: "blank name", category: Category{Name: "   ", Type: EntryExpense}, wantErr: true},
		{name: "long name", category: Category{Name: strings.Repeat("a", MaxCategoryNameLength+1), Type: EntryExpense}, wantErr: true},
		{name: "transfer type", category: Category{Name: "Moves", Type: EntryTransfer}, wantErr: true},
		{name: "long color", category: Category{Name: "Pets", Type: EntryExpense, Color: strings.Repeat("f", MaxColorLength+1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCategory) {
				t.Errorf("expected ErrInvalidCategory, got %v", err)
			}
		})
	}
}

func TestCategoryValidate_TrimsName(t *testing.T) {
	c := Category{Name: "  Pets ", Type: EntryExpense}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.Name != "Pets" {
		t.Errorf("Name = %q, want Pets", c.Name)
	}

	s := Subcategory{Name: " Vet "}
	if err := s.Validate(); err != nil || s.Name != "Vet" {
		t.Errorf("Subcategory.Validate() = %v, name %q", err, s.Name)
	}
}

func TestCategoryVisibility(t *testing.T) {
	def := Category{ID: "default-food"}
	own := Category{ID: "c1", HouseholdID: "h1"}

	if !def.IsDefault() || !def.IsVisibleTo("h2") {
		t.Error("default categories are visible to every household")
	}
	if own.IsDefault() || !own.IsVisibleTo("h1") || own.IsVisibleTo("h2") {
		t.Error("household categories are visible to their household only")
	}
}
