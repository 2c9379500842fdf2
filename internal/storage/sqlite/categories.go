package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

const categoryColumns = `id, household_id, name, type, sort_order, color, icon`

const subcategoryColumns = `id, category_id, household_id, name, sort_order`

// ListCategories returns default and household categories ordered by type
// and sort order, with the household's subcategories attached.
func (s *SQLiteStore) ListCategories(ctx context.Context, householdID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE household_id IS NULL OR household_id = ?
		 ORDER BY type, sort_order, name`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	byID := make(map[string]*models.Category)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	subs, err := s.listSubcategories(ctx, householdID)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if c, ok := byID[sub.CategoryID]; ok {
			c.Subcategories = append(c.Subcategories, sub)
		}
	}
	return categories, nil
}

func (s *SQLiteStore) listSubcategories(ctx context.Context, householdID string) ([]*models.Subcategory, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+subcategoryColumns+" FROM subcategories WHERE household_id = ? ORDER BY sort_order, name",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subcategory
	for rows.Next() {
		sub, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subcategories: %w", err)
	}
	return subs, nil
}

// GetCategory retrieves a category by ID, without subcategories.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a household category after the last one of its type.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkCategoryName(ctx, tx, c); err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories WHERE type = ? AND (household_id IS NULL OR household_id = ?)",
		c.Type, c.HouseholdID,
	).Scan(&c.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to read category order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.HouseholdID, c.Name, c.Type, c.SortOrder, nullString(c.Color), nullString(c.Icon),
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateCategory overwrites a category's name, type, order and style.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkCategoryName(ctx, tx, c); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, sort_order = ?, color = ?, icon = ? WHERE id = ?",
		c.Name, c.Type, c.SortOrder, nullString(c.Color), nullString(c.Icon), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := expectAffected(res, "category", c.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// checkCategoryName fails with ErrAlreadyExists if another category of the
// same type and name is visible to c's household.
func checkCategoryName(ctx context.Context, tx *sql.Tx, c *models.Category) error {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories
		 WHERE name = ? AND type = ? AND (household_id IS NULL OR household_id = ?) AND id != ?`,
		c.Name, c.Type, c.HouseholdID, c.ID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("category %q: %w", c.Name, storage.ErrAlreadyExists)
	}
	return nil
}

// DeleteCategory removes a category. Its subcategories go with it and
// entries lose both references.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE entries SET subcategory_id = NULL WHERE subcategory_id IN (SELECT id FROM subcategories WHERE category_id = ?)",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear entry subcategories: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := expectAffected(res, "category", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateSubcategory inserts a subcategory after the household's last one
// under the same category.
func (s *SQLiteStore) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sort_order), 0) + 1 FROM subcategories WHERE category_id = ? AND household_id = ?",
		sub.CategoryID, sub.HouseholdID,
	).Scan(&sub.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to read subcategory order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO subcategories ("+subcategoryColumns+") VALUES (?, ?, ?, ?, ?)",
		sub.ID, sub.CategoryID, sub.HouseholdID, sub.Name, sub.SortOrder,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("subcategory %q: %w", sub.Name, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert subcategory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubcategory retrieves a subcategory by ID.
func (s *SQLiteStore) GetSubcategory(ctx context.Context, id string) (*models.Subcategory, error) {
	sub, err := scanSubcategory(s.db.QueryRowContext(ctx,
		"SELECT "+subcategoryColumns+" FROM subcategories WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("subcategory", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subcategory: %w", err)
	}
	return sub, nil
}

// UpdateSubcategory renames or reorders a subcategory.
func (s *SQLiteStore) UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE subcategories SET name = ?, sort_order = ? WHERE id = ?",
		sub.Name, sub.SortOrder, sub.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("subcategory %q: %w", sub.Name, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to update subcategory: %w", err)
	}
	return expectAffected(res, "subcategory", sub.ID)
}

// DeleteSubcategory removes a subcategory and clears it from entries.
func (s *SQLiteStore) DeleteSubcategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE entries SET subcategory_id = NULL WHERE subcategory_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear entry subcategories: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM subcategories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}
	if err := expectAffected(res, "subcategory", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanCategory(row scanner) (*models.Category, error) {
	c := &models.Category{}
	var householdID, color, icon sql.NullString
	if err := row.Scan(&c.ID, &householdID, &c.Name, &c.Type, &c.SortOrder, &color, &icon); err != nil {
		return nil, err
	}
	c.HouseholdID = householdID.String
	c.Color = color.String
	c.Icon = icon.String
	return c, nil
}

func scanSubcategory(row scanner) (*models.Subcategory, error) {
	sub := &models.Subcategory{}
	if err := row.Scan(&sub.ID, &sub.CategoryID, &sub.HouseholdID, &sub.Name, &sub.SortOrder); err != nil {
		return nil, err
	}
	return sub, nil
}
