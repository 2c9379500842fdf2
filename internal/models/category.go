package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Category name and style limits.
const (
	MaxCategoryNameLength = 50
	MaxColorLength        = 20
	MaxIconLength         = 10
)

// ErrInvalidCategory is returned when a category or subcategory breaks a
// field invariant.
var ErrInvalidCategory = errors.New("invalid category")

// CategoryTypes lists the entry types a category can classify.
var CategoryTypes = []string{EntryExpense, EntryIncome}

// Category classifies entries. Default categories have an empty HouseholdID
// and are visible to every household.
type Category struct {
	ID          string
	HouseholdID string
	Name        string
	Type        string // expense | income
	SortOrder   int

	// Color and Icon are display hints, e.g. "#F97316".
	Color string
	Icon  string

	// Subcategories of the reading household, filled by listings.
	Subcategories []*Subcategory
}

// IsVisibleTo reports whether the category can be used by the household.
func (c *Category) IsVisibleTo(householdID string) bool {
	return c.HouseholdID == "" || c.HouseholdID == householdID
}

// IsDefault reports whether the category is shared by every household.
func (c *Category) IsDefault() bool {
	return c.HouseholdID == ""
}

// Validate trims the name and checks the field invariants.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if err := validateName(c.Name); err != nil {
		return err
	}
	if !slices.Contains(CategoryTypes, c.Type) {
		return fmt.Errorf("%w: type must be one of %v", ErrInvalidCategory, CategoryTypes)
	}
	if utf8.RuneCountInString(c.Color) > MaxColorLength {
		return fmt.Errorf("%w: color is longer than %d characters", ErrInvalidCategory, MaxColorLength)
	}
	if utf8.RuneCountInString(c.Icon) > MaxIconLength {
		return fmt.Errorf("%w: icon is longer than %d characters", ErrInvalidCategory, MaxIconLength)
	}
	return nil
}

// Subcategory refines a category for one household.
type Subcategory struct {
	ID          string
	CategoryID  string
	HouseholdID string
	Name        string
	SortOrder   int
}

// Validate trims the name and checks it.
func (s *Subcategory) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	return validateName(s.Name)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidCategory, MaxCategoryNameLength)
	}
	return nil
}
