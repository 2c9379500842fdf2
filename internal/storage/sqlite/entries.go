package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

const entryColumns = `
	e.id, e.household_id, e.created_by_user_id, e.type, e.transfer_type, e.amount,
	e.date, e.occurred_at, e.category_id, e.subcategory_id, e.memo, e.payer_member_id, e.shared,
	e.account_id, e.transfer_from_account_id, e.transfer_to_account_id,
	e.created_at, e.updated_at,
	c.name, sc.name, pu.name, a.name, fa.name, ta.name
	FROM entries e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN subcategories sc ON sc.id = e.subcategory_id
	LEFT JOIN household_members pm ON pm.id = e.payer_member_id
	LEFT JOIN users pu ON pu.id = pm.user_id
	LEFT JOIN accounts a ON a.id = e.account_id
	LEFT JOIN accounts fa ON fa.id = e.transfer_from_account_id
	LEFT JOIN accounts ta ON ta.id = e.transfer_to_account_id
`

// CreateEntry persists a new entry.
func (s *SQLiteStore) CreateEntry(ctx context.Context, e *models.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.UpdatedAt = e.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkEntryLock(ctx, tx, e); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, household_id, created_by_user_id, type, transfer_type, amount,
			date, occurred_at, category_id, subcategory_id, memo, payer_member_id, shared,
			account_id, transfer_from_account_id, transfer_to_account_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.HouseholdID, e.CreatedByUserID, e.Type, nullString(e.TransferType), e.Amount,
		e.Date, nullInt64(e.OccurredAt), nullString(e.CategoryID), nullString(e.SubcategoryID), nullString(e.Memo), e.PayerMemberID, boolInt(e.Shared),
		nullString(e.AccountID), nullString(e.TransferFromAccountID), nullString(e.TransferToAccountID), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID with display names resolved.
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" WHERE e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// UpdateEntry overwrites an entry. Both the stored and the new version are
// checked against finalized months.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, e *models.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := lockedEntry(ctx, tx, e.ID)
	if err != nil {
		return err
	}
	e.HouseholdID = old.HouseholdID
	if err := checkEntryLock(ctx, tx, old); err != nil {
		return err
	}
	if err := checkEntryLock(ctx, tx, e); err != nil {
		return err
	}

	e.UpdatedAt = time.Now().Unix()
	_, err = tx.ExecContext(ctx,
		`UPDATE entries
		 SET type = ?, transfer_type = ?, amount = ?, date = ?, occurred_at = ?,
			category_id = ?, subcategory_id = ?, memo = ?, payer_member_id = ?, shared = ?, account_id = ?,
			transfer_from_account_id = ?, transfer_to_account_id = ?, updated_at = ?
		 WHERE id = ?`,
		e.Type, nullString(e.TransferType), e.Amount, e.Date, nullInt64(e.OccurredAt),
		nullString(e.CategoryID), nullString(e.SubcategoryID), nullString(e.Memo), e.PayerMemberID, boolInt(e.Shared), nullString(e.AccountID),
		nullString(e.TransferFromAccountID), nullString(e.TransferToAccountID), e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry by ID.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := lockedEntry(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := checkEntryLock(ctx, tx, old); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// BulkDeleteEntries deletes the household's entries among ids. Nothing is
// deleted if any of them is locked by a finalized month.
func (s *SQLiteStore) BulkDeleteEntries(ctx context.Context, householdID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := make([]any, 0, len(ids)+1)
	args = append(args, householdID)
	for _, id := range ids {
		args = append(args, id)
	}
	where := "household_id = ? AND id IN (" + placeholders(len(ids)) + ")"

	rows, err := tx.QueryContext(ctx,
		"SELECT id, household_id, type, shared, date FROM entries WHERE "+where,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to load entries: %w", err)
	}
	var targets []*models.Entry
	for rows.Next() {
		e := &models.Entry{}
		var shared int
		if err := rows.Scan(&e.ID, &e.HouseholdID, &e.Type, &shared, &e.Date); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Shared = shared == 1
		targets = append(targets, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for _, e := range targets {
		if err := checkEntryLock(ctx, tx, e); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(n), nil
}

// ListEntries returns one page of entries matching q and the total match count.
func (s *SQLiteStore) ListEntries(ctx context.Context, householdID string, q storage.EntryQuery, page models.PageRequest) ([]*models.Entry, int, error) {
	where, args := buildEntryWhere(householdID, q)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries e WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	query := "SELECT " + entryColumns + " WHERE " + where + " ORDER BY " + entryOrder(page) + " LIMIT ? OFFSET ?"
	entries, err := queryEntries(ctx, s.db, query, append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListAllEntries returns every entry matching q, newest first.
func (s *SQLiteStore) ListAllEntries(ctx context.Context, householdID string, q storage.EntryQuery) ([]*models.Entry, error) {
	where, args := buildEntryWhere(householdID, q)
	query := "SELECT " + entryColumns + " WHERE " + where + " ORDER BY " + entryOrder(models.PageRequest{})
	return queryEntries(ctx, s.db, query, args...)
}

// ListSharedExpenses returns shared expenses dated within [fromMonth, toMonth].
func (s *SQLiteStore) ListSharedExpenses(ctx context.Context, householdID, fromMonth, toMonth string) ([]*models.Entry, error) {
	return listSharedExpenses(ctx, s.db, householdID, fromMonth, toMonth)
}

func listSharedExpenses(ctx context.Context, db queryer, householdID, fromMonth, toMonth string) ([]*models.Entry, error) {
	from, _, err := models.MonthRange(fromMonth)
	if err != nil {
		return nil, err
	}
	_, to, err := models.MonthRange(toMonth)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + entryColumns + `
		WHERE e.household_id = ? AND e.type = 'expense' AND e.shared = 1
			AND e.date >= ? AND e.date <= ?
		ORDER BY e.date, e.id`
	return queryEntries(ctx, db, query, householdID, from, to)
}

func queryEntries(ctx context.Context, db queryer, query string, args ...any) ([]*models.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// buildEntryWhere turns a query into a WHERE clause over alias e.
func buildEntryWhere(householdID string, q storage.EntryQuery) (string, []any) {
	conds := []string{"e.household_id = ?"}
	args := []any{householdID}

	in := func(column string, values []string) string {
		for _, v := range values {
			args = append(args, v)
		}
		return column + " IN (" + placeholders(len(values)) + ")"
	}

	if q.From != "" {
		conds = append(conds, "e.date >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		conds = append(conds, "e.date <= ?")
		args = append(args, q.To)
	}
	if len(q.Types) > 0 {
		conds = append(conds, in("e.type", q.Types))
	}
	if q.TransferType != "" {
		conds = append(conds, "e.transfer_type = ?")
		args = append(args, q.TransferType)
	}
	if len(q.CategoryIDs) > 0 {
		var ids []string
		uncategorized := false
		for _, id := range q.CategoryIDs {
			if id == models.UncategorizedID {
				uncategorized = true
				continue
			}
			ids = append(ids, id)
		}
		var parts []string
		if len(ids) > 0 {
			parts = append(parts, in("e.category_id", ids))
		}
		if uncategorized {
			parts = append(parts, "e.category_id IS NULL")
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}
	if len(q.AccountIDs) > 0 {
		conds = append(conds, "("+
			in("e.account_id", q.AccountIDs)+" OR "+
			in("e.transfer_from_account_id", q.AccountIDs)+" OR "+
			in("e.transfer_to_account_id", q.AccountIDs)+")")
	}
	if q.PayerMemberID != "" {
		conds = append(conds, "e.payer_member_id = ?")
		args = append(args, q.PayerMemberID)
	}
	if q.Shared != nil {
		conds = append(conds, "e.shared = ?")
		args = append(args, boolInt(*q.Shared))
	}
	if q.AmountMin != nil {
		conds = append(conds, "e.amount >= ?")
		args = append(args, *q.AmountMin)
	}
	if q.AmountMax != nil {
		conds = append(conds, "e.amount <= ?")
		args = append(args, *q.AmountMax)
	}
	if q.MemoSearch != "" {
		conds = append(conds, `e.memo LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.MemoSearch)+"%")
	}

	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func entryOrder(page models.PageRequest) string {
	dir := "DESC"
	if page.SortOrder == models.SortAsc {
		dir = "ASC"
	}
	if page.SortBy == models.SortByAmount {
		return "e.amount " + dir + ", e.date DESC, e.id"
	}
	return "e.date " + dir + ", COALESCE(e.occurred_at, 0) " + dir + ", e.created_at " + dir + ", e.id"
}

// lockedEntry loads the fields the finalize lock depends on.
func lockedEntry(ctx context.Context, tx *sql.Tx, id string) (*models.Entry, error) {
	e := &models.Entry{}
	var shared int
	err := tx.QueryRowContext(ctx,
		"SELECT id, household_id, type, shared, date FROM entries WHERE id = ?", id,
	).Scan(&e.ID, &e.HouseholdID, &e.Type, &shared, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	e.Shared = shared == 1
	return e, nil
}

// checkEntryLock fails with ErrMonthFinalized if e is a shared expense in a
// finalized month.
func checkEntryLock(ctx context.Context, tx *sql.Tx, e *models.Entry) error {
	if !e.IsSharedExpense() {
		return nil
	}
	finalized, err := monthFinalized(ctx, tx, e.HouseholdID, e.Month())
	if err != nil {
		return err
	}
	if finalized {
		return fmt.Errorf("%s: %w", e.Month(), storage.ErrMonthFinalized)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func monthFinalized(ctx context.Context, db queryer, householdID, month string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settlement_records WHERE household_id = ? AND month = ? AND is_finalized = 1",
		householdID, month,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check finalized month: %w", err)
	}
	return n > 0, nil
}

func scanEntry(row scanner) (*models.Entry, error) {
	e := &models.Entry{}
	var (
		transferType, categoryID, subcategoryID, memo sql.NullString
		accountID, fromAccountID, toAccountID         sql.NullString
		categoryName, subcategoryName, payerName      sql.NullString
		accountName, fromAccountName, toAccountName   sql.NullString
		occurredAt                                    sql.NullInt64
		shared                                        int
	)
	err := row.Scan(
		&e.ID, &e.HouseholdID, &e.CreatedByUserID, &e.Type, &transferType, &e.Amount,
		&e.Date, &occurredAt, &categoryID, &subcategoryID, &memo, &e.PayerMemberID, &shared,
		&accountID, &fromAccountID, &toAccountID,
		&e.CreatedAt, &e.UpdatedAt,
		&categoryName, &subcategoryName, &payerName, &accountName, &fromAccountName, &toAccountName,
	)
	if err != nil {
		return nil, err
	}
	e.TransferType = transferType.String
	e.OccurredAt = int64Ptr(occurredAt)
	e.CategoryID = categoryID.String
	e.SubcategoryID = subcategoryID.String
	e.Memo = memo.String
	e.Shared = shared == 1
	e.AccountID = accountID.String
	e.TransferFromAccountID = fromAccountID.String
	e.TransferToAccountID = toAccountID.String
	e.CategoryName = categoryName.String
	e.SubcategoryName = subcategoryName.String
	e.PayerName = payerName.String
	e.AccountName = accountName.String
	e.TransferFromAccountName = fromAccountName.String
	e.TransferToAccountName = toAccountName.String
	return e, nil
}
