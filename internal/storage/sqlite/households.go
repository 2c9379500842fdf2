package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

// CreateHousehold inserts a household together with its owning member.
func (s *SQLiteStore) CreateHousehold(ctx context.Context, household *models.Household, owner *models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO households (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)",
		household.ID, household.Name, household.InviteCode, household.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("household: %w", storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}

	owner.HouseholdID = household.ID
	if err := insertMember(ctx, tx, owner); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetHousehold retrieves a household by ID.
func (s *SQLiteStore) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	return s.getHousehold(ctx, "id", id)
}

// GetHouseholdByInviteCode retrieves a household by its invite code.
func (s *SQLiteStore) GetHouseholdByInviteCode(ctx context.Context, code string) (*models.Household, error) {
	return s.getHousehold(ctx, "invite_code", code)
}

func (s *SQLiteStore) getHousehold(ctx context.Context, column, value string) (*models.Household, error) {
	h := &models.Household{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, invite_code, created_at FROM households WHERE "+column+" = ?",
		value,
	).Scan(&h.ID, &h.Name, &h.InviteCode, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("household", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return h, nil
}

// AddMember adds a user to a household.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	return insertMember(ctx, s.db, member)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMember(ctx context.Context, db execer, member *models.Member) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO household_members (id, household_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)",
		member.ID, member.HouseholdID, member.UserID, member.Role, member.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", member.UserID, storage.ErrAlreadyMember)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

const memberColumns = `
	m.id, m.household_id, m.user_id, m.role, m.joined_at, u.name, u.email
	FROM household_members m
	JOIN users u ON u.id = m.user_id
`

// GetMemberByUserID returns the user's membership.
func (s *SQLiteStore) GetMemberByUserID(ctx context.Context, userID string) (*models.Member, error) {
	m := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" WHERE m.user_id = ?",
		userID,
	).Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership for user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers returns the household's members in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, householdID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" WHERE m.household_id = ? ORDER BY m.joined_at, m.id",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}
