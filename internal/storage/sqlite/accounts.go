package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/ourledger/internal/models"
)

const accountColumns = `
	a.id, a.owner_user_id, a.household_id, a.name, a.bank_name, a.type,
	a.account_type, a.balance, a.is_shared_visible, a.created_at, a.updated_at,
	u.name
	FROM accounts a
	JOIN users u ON u.id = a.owner_user_id
`

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, owner_user_id, household_id, name, bank_name, type,
			account_type, balance, is_shared_visible, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerUserID, nullString(a.HouseholdID), a.Name, nullString(a.BankName), a.Type,
		a.AccountType, nullInt64(a.Balance), boolInt(a.IsSharedVisible), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// UpdateAccount overwrites the mutable fields of an account.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, a *models.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET name = ?, bank_name = ?, type = ?, account_type = ?, balance = ?,
			is_shared_visible = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name, nullString(a.BankName), a.Type, a.AccountType, nullInt64(a.Balance),
		boolInt(a.IsSharedVisible), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return expectAffected(res, "account", a.ID)
}

// DeleteAccount removes an account. Entries referencing it keep their data
// with the account reference cleared.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectAffected(res, "account", id)
}

// ListAccessibleAccounts returns accounts the user owns plus shared-visible
// accounts of the user's household.
func (s *SQLiteStore) ListAccessibleAccounts(ctx context.Context, userID, householdID string) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+`
		 WHERE a.owner_user_id = ?
			OR (a.household_id = ? AND a.household_id <> '' AND a.is_shared_visible = 1)
		 ORDER BY a.type, a.name, a.id`,
		userID, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	var (
		householdID sql.NullString
		bankName    sql.NullString
		balance     sql.NullInt64
		visible     int
	)
	err := row.Scan(
		&a.ID, &a.OwnerUserID, &householdID, &a.Name, &bankName, &a.Type,
		&a.AccountType, &balance, &visible, &a.CreatedAt, &a.UpdatedAt,
		&a.OwnerName,
	)
	if err != nil {
		return nil, err
	}
	a.HouseholdID = householdID.String
	a.BankName = bankName.String
	a.Balance = int64Ptr(balance)
	a.IsSharedVisible = visible == 1
	return a, nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
