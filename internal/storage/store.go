// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/ourledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyMember is returned when a user already belongs to a household.
	ErrAlreadyMember = errors.New("user already belongs to a household")

	// ErrMonthFinalized is returned when a write touches a finalized month.
	ErrMonthFinalized = errors.New("settlement month is finalized")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	UserStore
	HouseholdStore
	CategoryStore
	AccountStore
	EntryStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists registered users.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// HouseholdStore persists households and members.
type HouseholdStore interface {
	// CreateHousehold inserts the household and its owner in one transaction.
	CreateHousehold(ctx context.Context, household *models.Household, owner *models.Member) error
	GetHousehold(ctx context.Context, id string) (*models.Household, error)
	GetHouseholdByInviteCode(ctx context.Context, code string) (*models.Household, error)

	// AddMember returns ErrAlreadyMember if the user is in any household.
	AddMember(ctx context.Context, member *models.Member) error
	GetMemberByUserID(ctx context.Context, userID string) (*models.Member, error)
	ListMembers(ctx context.Context, householdID string) ([]*models.Member, error)
}

// CategoryStore persists categories and subcategories.
type CategoryStore interface {
	// ListCategories returns the default categories plus the household's
	// own, each with the household's subcategories.
	ListCategories(ctx context.Context, householdID string) ([]*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)

	// CreateCategory appends a household category to its type's order.
	// Returns ErrAlreadyExists if a category of the same type and name is
	// visible to the household.
	CreateCategory(ctx context.Context, category *models.Category) error

	// UpdateCategory has the same name check as CreateCategory.
	UpdateCategory(ctx context.Context, category *models.Category) error

	// DeleteCategory removes a category and its subcategories. Entries that
	// used it become uncategorized.
	DeleteCategory(ctx context.Context, id string) error

	// CreateSubcategory returns ErrAlreadyExists if the household already
	// has a subcategory of that name under the category.
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	GetSubcategory(ctx context.Context, id string) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error

	// DeleteSubcategory removes a subcategory and clears it from entries.
	DeleteSubcategory(ctx context.Context, id string) error
}

// AccountStore persists bank accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// ListAccessibleAccounts returns the user's own accounts and the
	// shared-visible accounts of the household.
	ListAccessibleAccounts(ctx context.Context, userID, householdID string) ([]*models.Account, error)
}

// EntryStore persists ledger entries.
//
// Writes that touch a shared expense in a finalized month fail with
// ErrMonthFinalized. The check runs in the same transaction as the write.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *models.Entry) error
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
	UpdateEntry(ctx context.Context, entry *models.Entry) error
	DeleteEntry(ctx context.Context, id string) error

	// BulkDeleteEntries deletes the household's entries among ids and
	// returns how many were removed. Unknown IDs are skipped.
	BulkDeleteEntries(ctx context.Context, householdID string, ids []string) (int, error)

	// ListEntries returns one page of matching entries and the total count.
	ListEntries(ctx context.Context, householdID string, filter EntryQuery, page models.PageRequest) ([]*models.Entry, int, error)

	// ListAllEntries returns every matching entry, unpaginated.
	ListAllEntries(ctx context.Context, householdID string, filter EntryQuery) ([]*models.Entry, error)

	// ListSharedExpenses returns shared expenses dated in [fromMonth, toMonth].
	ListSharedExpenses(ctx context.Context, householdID, fromMonth, toMonth string) ([]*models.Entry, error)
}

// SettlementStore persists settlement records and payments.
type SettlementStore interface {
	// ListSettlementRecords returns the records for one month.
	ListSettlementRecords(ctx context.Context, householdID, month string) ([]*models.SettlementRecord, error)

	// ListSettlementRecordsUpTo returns every record dated at or before month.
	ListSettlementRecordsUpTo(ctx context.Context, householdID, month string) ([]*models.SettlementRecord, error)

	// SaveSettlementRecords replaces the month's records. With finalize set
	// the month becomes locked. Returns ErrMonthFinalized if it already is.
	SaveSettlementRecords(ctx context.Context, householdID, month string, records []*models.SettlementRecord, finalize bool) error

	// FinalizeMonth computes the month's records from its shared expenses
	// and stores them finalized. The read, the computation and the write
	// share one transaction. Returns ErrMonthFinalized if the month is
	// already locked.
	FinalizeMonth(ctx context.Context, householdID, month string, compute RecordsFunc) ([]*models.SettlementRecord, error)

	// ReopenMonth clears the finalized flag. Returns ErrNotFound when the
	// month has no finalized records.
	ReopenMonth(ctx context.Context, householdID, month string) error

	IsMonthFinalized(ctx context.Context, householdID, month string) (bool, error)

	CreatePayment(ctx context.Context, payment *models.SettlementPayment) error
	GetPayment(ctx context.Context, id string) (*models.SettlementPayment, error)

	// ListPayments returns payments made at or before month; all if month is empty.
	ListPayments(ctx context.Context, householdID, month string) ([]*models.SettlementPayment, error)
	DeletePayment(ctx context.Context, id string) error
}

// RecordsFunc turns a month's shared expenses into settlement records.
type RecordsFunc func(expenses []*models.Entry) ([]*models.SettlementRecord, error)

// EntryQuery is an entry filter resolved to concrete dates.
type EntryQuery struct {
	models.EntryFilter

	// From and To bound the entry date, inclusive. Empty means unbounded.
	From string
	To   string
}
