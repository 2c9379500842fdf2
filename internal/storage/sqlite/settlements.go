package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

const recordColumns = `id, household_id, user_id, month, settlement_amount, is_finalized, created_at, updated_at`

// ListSettlementRecords returns the month's records ordered by user.
func (s *SQLiteStore) ListSettlementRecords(ctx context.Context, householdID, month string) ([]*models.SettlementRecord, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM settlement_records WHERE household_id = ? AND month = ? ORDER BY user_id",
		householdID, month,
	)
}

// ListSettlementRecordsUpTo returns all records up to and including month.
func (s *SQLiteStore) ListSettlementRecordsUpTo(ctx context.Context, householdID, month string) ([]*models.SettlementRecord, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM settlement_records WHERE household_id = ? AND month <= ? ORDER BY month, user_id",
		householdID, month,
	)
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]*models.SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement records: %w", err)
	}
	defer rows.Close()

	var records []*models.SettlementRecord
	for rows.Next() {
		r := &models.SettlementRecord{}
		var finalized int
		if err := rows.Scan(&r.ID, &r.HouseholdID, &r.UserID, &r.Month, &r.SettlementAmount,
			&finalized, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement record: %w", err)
		}
		r.IsFinalized = finalized == 1
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement records: %w", err)
	}
	return records, nil
}

// SaveSettlementRecords upserts one record per user for the month and drops
// records of users no longer listed. The finalized check and the write share
// a transaction.
func (s *SQLiteStore) SaveSettlementRecords(ctx context.Context, householdID, month string, records []*models.SettlementRecord, finalize bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkMonthOpen(ctx, tx, householdID, month); err != nil {
		return err
	}
	if err := writeRecords(ctx, tx, householdID, month, records, finalize); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FinalizeMonth reads the month's shared expenses, turns them into records
// with compute and stores them finalized, all in one transaction. Entry
// writes wait for it, so the records always cover every shared expense of
// the month.
func (s *SQLiteStore) FinalizeMonth(ctx context.Context, householdID, month string, compute storage.RecordsFunc) ([]*models.SettlementRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkMonthOpen(ctx, tx, householdID, month); err != nil {
		return nil, err
	}
	expenses, err := listSharedExpenses(ctx, tx, householdID, month, month)
	if err != nil {
		return nil, err
	}
	records, err := compute(expenses)
	if err != nil {
		return nil, err
	}
	if err := writeRecords(ctx, tx, householdID, month, records, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return records, nil
}

func checkMonthOpen(ctx context.Context, tx *sql.Tx, householdID, month string) error {
	finalized, err := monthFinalized(ctx, tx, householdID, month)
	if err != nil {
		return err
	}
	if finalized {
		return fmt.Errorf("%s: %w", month, storage.ErrMonthFinalized)
	}
	return nil
}

// writeRecords replaces the month's records. The caller checks the lock.
func writeRecords(ctx context.Context, tx *sql.Tx, householdID, month string, records []*models.SettlementRecord, finalize bool) error {
	now := time.Now().Unix()
	keep := make([]any, 0, len(records)+2)
	keep = append(keep, householdID, month)
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		r.HouseholdID = householdID
		r.Month = month
		r.IsFinalized = finalize
		if r.CreatedAt == 0 {
			r.CreatedAt = now
		}
		r.UpdatedAt = now

		err := tx.QueryRowContext(ctx,
			`INSERT INTO settlement_records (`+recordColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (household_id, user_id, month) DO UPDATE SET
				settlement_amount = excluded.settlement_amount,
				is_finalized = excluded.is_finalized,
				updated_at = excluded.updated_at
			 RETURNING id, created_at`,
			r.ID, r.HouseholdID, r.UserID, r.Month, r.SettlementAmount, boolInt(r.IsFinalized), r.CreatedAt, r.UpdatedAt,
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save settlement record: %w", err)
		}
		keep = append(keep, r.UserID)
	}

	query := "DELETE FROM settlement_records WHERE household_id = ? AND month = ?"
	if len(records) > 0 {
		query += " AND user_id NOT IN (" + placeholders(len(records)) + ")"
	}
	if _, err := tx.ExecContext(ctx, query, keep...); err != nil {
		return fmt.Errorf("failed to prune settlement records: %w", err)
	}
	return nil
}

// ReopenMonth clears the finalized flag on the month's records.
func (s *SQLiteStore) ReopenMonth(ctx context.Context, householdID, month string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE settlement_records SET is_finalized = 0, updated_at = ?
		 WHERE household_id = ? AND month = ? AND is_finalized = 1`,
		time.Now().Unix(), householdID, month,
	)
	if err != nil {
		return fmt.Errorf("failed to reopen month: %w", err)
	}
	return expectAffected(res, "finalized month", month)
}

// IsMonthFinalized reports whether the month has finalized records.
func (s *SQLiteStore) IsMonthFinalized(ctx context.Context, householdID, month string) (bool, error) {
	return monthFinalized(ctx, s.db, householdID, month)
}

// CreatePayment persists a new settlement payment.
func (s *SQLiteStore) CreatePayment(ctx context.Context, p *models.SettlementPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement_payments (id, household_id, from_member_id, to_member_id, amount, paid_on, created_by_user_id, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.HouseholdID, p.FromMemberID, p.ToMemberID, p.Amount, p.PaidOn, p.CreatedByUserID, nullString(p.Note), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

const paymentColumns = `id, household_id, from_member_id, to_member_id, amount, paid_on, created_by_user_id, note, created_at`

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.SettlementPayment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM settlement_payments WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns payments made on or before the end of month, newest
// first. An empty month lists every payment.
func (s *SQLiteStore) ListPayments(ctx context.Context, householdID, month string) ([]*models.SettlementPayment, error) {
	query := "SELECT " + paymentColumns + " FROM settlement_payments WHERE household_id = ?"
	args := []any{householdID}
	if month != "" {
		_, to, err := models.MonthRange(month)
		if err != nil {
			return nil, err
		}
		query += " AND paid_on <= ?"
		args = append(args, to)
	}
	query += " ORDER BY paid_on DESC, created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.SettlementPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// DeletePayment removes a payment by ID.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlement_payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return expectAffected(res, "payment", id)
}

func scanPayment(row scanner) (*models.SettlementPayment, error) {
	p := &models.SettlementPayment{}
	var note sql.NullString
	err := row.Scan(&p.ID, &p.HouseholdID, &p.FromMemberID, &p.ToMemberID, &p.Amount,
		&p.PaidOn, &p.CreatedByUserID, &note, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Note = note.String
	return p, nil
}
