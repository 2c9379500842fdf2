package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedHousehold creates a household owned by a fresh user plus extra members.
func seedHousehold(t *testing.T, store *SQLiteStore, names ...string) (*models.Household, []*models.Member) {
	t.Helper()
	ctx := context.Background()

	code, err := models.GenerateInviteCode()
	if err != nil {
		t.Fatalf("GenerateInviteCode failed: %v", err)
	}
	household := &models.Household{ID: uuid.New().String(), Name: "Home", InviteCode: code, CreatedAt: 1}

	var members []*models.Member
	for i, name := range names {
		user := models.NewUser(name+"@example.com", name, "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		member := &models.Member{ID: uuid.New().String(), UserID: user.ID, Role: models.RoleMember, JoinedAt: int64(i + 1)}
		if i == 0 {
			member.Role = models.RoleOwner
			if err := store.CreateHousehold(ctx, household, member); err != nil {
				t.Fatalf("CreateHousehold failed: %v", err)
			}
		} else {
			member.HouseholdID = household.ID
			if err := store.AddMember(ctx, member); err != nil {
				t.Fatalf("AddMember failed: %v", err)
			}
		}
		members = append(members, member)
	}
	return household, members
}

func sharedExpense(householdID string, payer *models.Member, amount int64, date string) *models.Entry {
	return &models.Entry{
		HouseholdID:     householdID,
		CreatedByUserID: payer.UserID,
		Type:            models.EntryExpense,
		Amount:          amount,
		Date:            date,
		PayerMemberID:   payer.ID,
		Shared:          true,
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("duplicate email", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		err := store.CreateUser(ctx, dup)
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID || byEmail.Name != "Alice" {
			t.Errorf("unexpected user: %+v", byEmail)
		}
		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestHouseholds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")

	t.Run("invite code lookup", func(t *testing.T) {
		got, err := store.GetHouseholdByInviteCode(ctx, household.InviteCode)
		if err != nil {
			t.Fatalf("GetHouseholdByInviteCode failed: %v", err)
		}
		if got.ID != household.ID {
			t.Errorf("got household %s, want %s", got.ID, household.ID)
		}
	})

	t.Run("members joined with users", func(t *testing.T) {
		list, err := store.ListMembers(ctx, household.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 members, got %d", len(list))
		}
		if list[0].Role != models.RoleOwner || list[0].UserName != "alice" {
			t.Errorf("unexpected owner: %+v", list[0])
		}
		if list[1].UserEmail != "bob@example.com" {
			t.Errorf("unexpected second member: %+v", list[1])
		}
	})

	t.Run("user joins only one household", func(t *testing.T) {
		again := &models.Member{ID: uuid.New().String(), HouseholdID: household.ID, UserID: members[1].UserID, Role: models.RoleMember}
		if err := store.AddMember(ctx, again); !errors.Is(err, storage.ErrAlreadyMember) {
			t.Errorf("expected ErrAlreadyMember, got %v", err)
		}
	})

	t.Run("default categories", func(t *testing.T) {
		categories, err := store.ListCategories(ctx, household.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(categories) != 12 {
			t.Errorf("expected 12 default categories, got %d", len(categories))
		}
		food, err := store.GetCategory(ctx, "default-food")
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if food.Name != "Food" || food.HouseholdID != "" {
			t.Errorf("unexpected category: %+v", food)
		}
	})
}

func TestCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice")
	other, _ := seedHousehold(t, store, "carol")

	food, err := store.GetCategory(ctx, "default-food")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if food.Color != "#F97316" || food.Icon == "" {
		t.Errorf("expected default style on Food, got %+v", food)
	}

	pets := &models.Category{HouseholdID: household.ID, Name: "Pets", Type: models.EntryExpense, Color: "#000000"}
	if err := store.CreateCategory(ctx, pets); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if pets.ID == "" || pets.SortOrder != 9 {
		t.Errorf("expected an ID and sort order 9, got %q and %d", pets.ID, pets.SortOrder)
	}

	t.Run("duplicate names", func(t *testing.T) {
		dup := &models.Category{HouseholdID: household.ID, Name: "Food", Type: models.EntryExpense}
		if err := store.CreateCategory(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists for a default name, got %v", err)
		}
		income := &models.Category{HouseholdID: household.ID, Name: "Pets", Type: models.EntryIncome}
		if err := store.CreateCategory(ctx, income); err != nil {
			t.Errorf("same name with another type should be allowed: %v", err)
		}
		elsewhere := &models.Category{HouseholdID: other.ID, Name: "Pets", Type: models.EntryExpense}
		if err := store.CreateCategory(ctx, elsewhere); err != nil {
			t.Errorf("same name in another household should be allowed: %v", err)
		}
	})

	t.Run("update keeps own name", func(t *testing.T) {
		pets.Icon = "cat"
		if err := store.UpdateCategory(ctx, pets); err != nil {
			t.Fatalf("UpdateCategory failed: %v", err)
		}
		got, err := store.GetCategory(ctx, pets.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if got.Icon != "cat" || got.HouseholdID != household.ID {
			t.Errorf("unexpected category after update: %+v", got)
		}
		missing := &models.Category{ID: "nope", HouseholdID: household.ID, Name: "Nope", Type: models.EntryExpense}
		if err := store.UpdateCategory(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	vet := &models.Subcategory{CategoryID: pets.ID, HouseholdID: household.ID, Name: "Vet"}
	takeout := &models.Subcategory{CategoryID: "default-food", HouseholdID: household.ID, Name: "Takeout"}
	for _, sub := range []*models.Subcategory{vet, takeout} {
		if err := store.CreateSubcategory(ctx, sub); err != nil {
			t.Fatalf("CreateSubcategory failed: %v", err)
		}
	}
	dupSub := &models.Subcategory{CategoryID: pets.ID, HouseholdID: household.ID, Name: "Vet"}
	if err := store.CreateSubcategory(ctx, dupSub); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	t.Run("listing attaches household subcategories", func(t *testing.T) {
		categories, err := store.ListCategories(ctx, household.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		subs := map[string][]string{}
		for _, c := range categories {
			for _, sub := range c.Subcategories {
				subs[c.ID] = append(subs[c.ID], sub.Name)
			}
		}
		if len(subs) != 2 || subs[pets.ID][0] != "Vet" || subs["default-food"][0] != "Takeout" {
			t.Errorf("unexpected subcategories: %v", subs)
		}

		theirs, err := store.ListCategories(ctx, other.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		for _, c := range theirs {
			if c.ID == pets.ID || len(c.Subcategories) > 0 {
				t.Errorf("household data leaked into another household: %+v", c)
			}
		}
	})

	entry := &models.Entry{HouseholdID: household.ID, CreatedByUserID: members[0].UserID, Type: models.EntryExpense,
		Amount: 6000, Date: "2024-03-03", PayerMemberID: members[0].ID, CategoryID: pets.ID, SubcategoryID: vet.ID}
	if err := store.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	got, err := store.GetEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.SubcategoryID != vet.ID || got.SubcategoryName != "Vet" || got.CategoryName != "Pets" {
		t.Errorf("unexpected entry references: %+v", got)
	}

	t.Run("delete clears entry references", func(t *testing.T) {
		if err := store.DeleteCategory(ctx, pets.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
		got, err := store.GetEntry(ctx, entry.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.CategoryID != "" || got.SubcategoryID != "" {
			t.Errorf("expected an uncategorized entry, got category %q subcategory %q", got.CategoryID, got.SubcategoryID)
		}
		if _, err := store.GetSubcategory(ctx, vet.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected the subcategory to go with its category, got %v", err)
		}
		if err := store.DeleteSubcategory(ctx, takeout.ID); err != nil {
			t.Fatalf("DeleteSubcategory failed: %v", err)
		}
		if err := store.DeleteSubcategory(ctx, takeout.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAccounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob", "carol")
	alice, bob := members[0], members[1]

	balance := int64(50000)
	private := &models.Account{ID: "acc-private", OwnerUserID: alice.UserID, HouseholdID: household.ID, Name: "Wallet",
		Type: models.AccountPersonal, AccountType: "checking", Balance: &balance}
	shared := &models.Account{ID: "acc-shared", OwnerUserID: alice.UserID, HouseholdID: household.ID, Name: "Joint",
		Type: models.AccountShared, AccountType: "savings", IsSharedVisible: true}
	for _, a := range []*models.Account{private, shared} {
		if err := store.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	t.Run("owner sees both", func(t *testing.T) {
		list, err := store.ListAccessibleAccounts(ctx, alice.UserID, household.ID)
		if err != nil {
			t.Fatalf("ListAccessibleAccounts failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 accounts, got %d", len(list))
		}
	})

	t.Run("member sees shared only", func(t *testing.T) {
		list, err := store.ListAccessibleAccounts(ctx, bob.UserID, household.ID)
		if err != nil {
			t.Fatalf("ListAccessibleAccounts failed: %v", err)
		}
		if len(list) != 1 || list[0].ID != "acc-shared" {
			t.Fatalf("expected only shared account, got %+v", list)
		}
		if list[0].OwnerName != "alice" {
			t.Errorf("OwnerName = %q, want alice", list[0].OwnerName)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		got, err := store.GetAccount(ctx, "acc-private")
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if got.Balance == nil || *got.Balance != 50000 {
			t.Errorf("unexpected balance: %v", got.Balance)
		}
		got.Name = "Main"
		got.Balance = nil
		if err := store.UpdateAccount(ctx, got); err != nil {
			t.Fatalf("UpdateAccount failed: %v", err)
		}
		updated, _ := store.GetAccount(ctx, "acc-private")
		if updated.Name != "Main" || updated.Balance != nil {
			t.Errorf("update not applied: %+v", updated)
		}
		if err := store.DeleteAccount(ctx, "acc-private"); err != nil {
			t.Fatalf("DeleteAccount failed: %v", err)
		}
		if err := store.DeleteAccount(ctx, "acc-private"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")
	alice, bob := members[0], members[1]

	acc := &models.Account{ID: "acc-1", OwnerUserID: alice.UserID, HouseholdID: household.ID, Name: "Card",
		Type: models.AccountPersonal, AccountType: "card"}
	if err := store.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	entries := []*models.Entry{
		sharedExpense(household.ID, alice, 30000, "2024-03-02"),
		sharedExpense(household.ID, bob, 10000, "2024-03-20"),
		{HouseholdID: household.ID, CreatedByUserID: alice.UserID, Type: models.EntryExpense, Amount: 4500,
			Date: "2024-03-05", PayerMemberID: alice.ID, CategoryID: "default-food", Memo: "Lunch 50% off", AccountID: "acc-1"},
		{HouseholdID: household.ID, CreatedByUserID: bob.UserID, Type: models.EntryIncome, Amount: 250000,
			Date: "2024-03-25", PayerMemberID: bob.ID, CategoryID: "default-salary"},
		sharedExpense(household.ID, alice, 7000, "2024-04-01"),
	}
	for _, e := range entries {
		if err := store.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	t.Run("get resolves names", func(t *testing.T) {
		got, err := store.GetEntry(ctx, entries[2].ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if got.CategoryName != "Food" || got.PayerName != "alice" || got.AccountName != "Card" {
			t.Errorf("unexpected names: %+v", got)
		}
	})

	tests := []struct {
		name  string
		query storage.EntryQuery
		want  int
	}{
		{name: "month", query: storage.EntryQuery{From: "2024-03-01", To: "2024-03-31"}, want: 4},
		{name: "shared only", query: storage.EntryQuery{EntryFilter: models.EntryFilter{Shared: ptr(true)}}, want: 3},
		{name: "income type", query: storage.EntryQuery{EntryFilter: models.EntryFilter{Types: []string{models.EntryIncome}}}, want: 1},
		{name: "uncategorized", query: storage.EntryQuery{EntryFilter: models.EntryFilter{CategoryIDs: []string{models.UncategorizedID}}}, want: 3},
		{name: "category or uncategorized", query: storage.EntryQuery{EntryFilter: models.EntryFilter{CategoryIDs: []string{"default-food", models.UncategorizedID}}}, want: 4},
		{name: "account", query: storage.EntryQuery{EntryFilter: models.EntryFilter{AccountIDs: []string{"acc-1"}}}, want: 1},
		{name: "payer", query: storage.EntryQuery{EntryFilter: models.EntryFilter{PayerMemberID: bob.ID}}, want: 2},
		{name: "amount range", query: storage.EntryQuery{EntryFilter: models.EntryFilter{AmountMin: ptr[int64](5000), AmountMax: ptr[int64](30000)}}, want: 3},
		{name: "memo escapes percent", query: storage.EntryQuery{EntryFilter: models.EntryFilter{MemoSearch: "50%"}}, want: 1},
		{name: "memo case insensitive", query: storage.EntryQuery{EntryFilter: models.EntryFilter{MemoSearch: "lunch"}}, want: 1},
	}
	for _, tt := range tests {
		t.Run("filter "+tt.name, func(t *testing.T) {
			got, err := store.ListAllEntries(ctx, household.ID, tt.query)
			if err != nil {
				t.Fatalf("ListAllEntries failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	t.Run("pagination", func(t *testing.T) {
		page := models.PageRequest{Page: 2, PageSize: 2, SortBy: models.SortByAmount, SortOrder: models.SortDesc}
		got, total, err := store.ListEntries(ctx, household.ID, storage.EntryQuery{}, page)
		if err != nil {
			t.Fatalf("ListEntries failed: %v", err)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		if len(got) != 2 || got[0].Amount != 10000 || got[1].Amount != 7000 {
			t.Errorf("unexpected page: %d entries", len(got))
		}
	})

	t.Run("shared expenses by month", func(t *testing.T) {
		got, err := store.ListSharedExpenses(ctx, household.ID, "2024-03", "2024-03")
		if err != nil {
			t.Fatalf("ListSharedExpenses failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 shared expenses in March, got %d", len(got))
		}
	})

	t.Run("bulk delete skips other households", func(t *testing.T) {
		n, err := store.BulkDeleteEntries(ctx, "other-household", []string{entries[3].ID})
		if err != nil {
			t.Fatalf("BulkDeleteEntries failed: %v", err)
		}
		if n != 0 {
			t.Errorf("deleted %d entries from wrong household", n)
		}
		n, err = store.BulkDeleteEntries(ctx, household.ID, []string{entries[3].ID, "missing"})
		if err != nil {
			t.Fatalf("BulkDeleteEntries failed: %v", err)
		}
		if n != 1 {
			t.Errorf("deleted %d entries, want 1", n)
		}
	})
}

func TestFinalizedMonthLock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")
	alice, bob := members[0], members[1]

	locked := sharedExpense(household.ID, alice, 30000, "2024-01-10")
	private := &models.Entry{HouseholdID: household.ID, CreatedByUserID: alice.UserID, Type: models.EntryExpense,
		Amount: 1000, Date: "2024-01-11", PayerMemberID: alice.ID}
	for _, e := range []*models.Entry{locked, private} {
		if err := store.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	records := []*models.SettlementRecord{
		{UserID: alice.UserID, SettlementAmount: 15000},
		{UserID: bob.UserID, SettlementAmount: -15000},
	}
	if err := store.SaveSettlementRecords(ctx, household.ID, "2024-01", records, true); err != nil {
		t.Fatalf("SaveSettlementRecords failed: %v", err)
	}

	t.Run("finalize twice", func(t *testing.T) {
		err := store.SaveSettlementRecords(ctx, household.ID, "2024-01", records, true)
		if !errors.Is(err, storage.ErrMonthFinalized) {
			t.Errorf("expected ErrMonthFinalized, got %v", err)
		}
		got, err := store.ListSettlementRecordsUpTo(ctx, household.ID, "2024-12")
		if err != nil {
			t.Fatalf("ListSettlementRecordsUpTo failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 records, got %d", len(got))
		}
	})

	t.Run("writes to shared expenses rejected", func(t *testing.T) {
		err := store.CreateEntry(ctx, sharedExpense(household.ID, bob, 500, "2024-01-20"))
		if !errors.Is(err, storage.ErrMonthFinalized) {
			t.Errorf("create: expected ErrMonthFinalized, got %v", err)
		}

		moved := *locked
		moved.Date = "2024-02-01"
		if err := store.UpdateEntry(ctx, &moved); !errors.Is(err, storage.ErrMonthFinalized) {
			t.Errorf("update: expected ErrMonthFinalized, got %v", err)
		}

		if err := store.DeleteEntry(ctx, locked.ID); !errors.Is(err, storage.ErrMonthFinalized) {
			t.Errorf("delete: expected ErrMonthFinalized, got %v", err)
		}

		if _, err := store.BulkDeleteEntries(ctx, household.ID, []string{private.ID, locked.ID}); !errors.Is(err, storage.ErrMonthFinalized) {
			t.Errorf("bulk delete: expected ErrMonthFinalized, got %v", err)
		}
		if _, err := store.GetEntry(ctx, private.ID); err != nil {
			t.Errorf("bulk delete should be all-or-nothing: %v", err)
		}
	})

	t.Run("private entries unaffected", func(t *testing.T) {
		private.Memo = "coffee"
		if err := store.UpdateEntry(ctx, private); err != nil {
			t.Errorf("UpdateEntry failed: %v", err)
		}
	})

	t.Run("reopen clears the lock", func(t *testing.T) {
		if err := store.ReopenMonth(ctx, household.ID, "2024-01"); err != nil {
			t.Fatalf("ReopenMonth failed: %v", err)
		}
		finalized, err := store.IsMonthFinalized(ctx, household.ID, "2024-01")
		if err != nil {
			t.Fatalf("IsMonthFinalized failed: %v", err)
		}
		if finalized {
			t.Error("month still finalized after reopen")
		}
		if err := store.DeleteEntry(ctx, locked.ID); err != nil {
			t.Errorf("DeleteEntry after reopen failed: %v", err)
		}
		if err := store.ReopenMonth(ctx, household.ID, "2024-01"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound reopening open month, got %v", err)
		}
	})
}

func TestSaveSettlementRecords_Draft(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")

	first := []*models.SettlementRecord{
		{UserID: members[0].UserID, SettlementAmount: 100},
		{UserID: members[1].UserID, SettlementAmount: -100},
	}
	if err := store.SaveSettlementRecords(ctx, household.ID, "2024-05", first, false); err != nil {
		t.Fatalf("SaveSettlementRecords failed: %v", err)
	}
	firstID := first[0].ID

	second := []*models.SettlementRecord{{UserID: members[0].UserID, SettlementAmount: 0}}
	if err := store.SaveSettlementRecords(ctx, household.ID, "2024-05", second, false); err != nil {
		t.Fatalf("SaveSettlementRecords failed: %v", err)
	}
	if second[0].ID != firstID {
		t.Errorf("upsert should keep record ID %s, got %s", firstID, second[0].ID)
	}

	got, err := store.ListSettlementRecords(ctx, household.ID, "2024-05")
	if err != nil {
		t.Fatalf("ListSettlementRecords failed: %v", err)
	}
	if len(got) != 1 || got[0].SettlementAmount != 0 || got[0].IsFinalized {
		t.Errorf("unexpected records after resave: %+v", got)
	}
}

func TestFinalizeMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")

	for _, e := range []*models.Entry{
		sharedExpense(household.ID, members[0], 3000, "2024-06-03"),
		sharedExpense(household.ID, members[1], 1000, "2024-06-20"),
		sharedExpense(household.ID, members[1], 9999, "2024-07-01"),
	} {
		if err := store.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	t.Run("compute error rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := store.FinalizeMonth(ctx, household.ID, "2024-06", func([]*models.Entry) ([]*models.SettlementRecord, error) {
			return nil, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected compute error, got %v", err)
		}
		if finalized, _ := store.IsMonthFinalized(ctx, household.ID, "2024-06"); finalized {
			t.Error("month should stay open after a failed compute")
		}
	})

	var seen int64
	records, err := store.FinalizeMonth(ctx, household.ID, "2024-06", func(expenses []*models.Entry) ([]*models.SettlementRecord, error) {
		for _, e := range expenses {
			seen += e.Amount
		}
		return []*models.SettlementRecord{
			{UserID: members[0].UserID, SettlementAmount: 1000},
			{UserID: members[1].UserID, SettlementAmount: -1000},
		}, nil
	})
	if err != nil {
		t.Fatalf("FinalizeMonth failed: %v", err)
	}
	if seen != 4000 {
		t.Errorf("compute saw %d of shared expenses, want only June's 4000", seen)
	}
	if len(records) != 2 || !records[0].IsFinalized || records[0].ID == "" {
		t.Errorf("unexpected records: %+v", records)
	}

	_, err = store.FinalizeMonth(ctx, household.ID, "2024-06", func([]*models.Entry) ([]*models.SettlementRecord, error) {
		t.Error("compute should not run for a finalized month")
		return nil, nil
	})
	if !errors.Is(err, storage.ErrMonthFinalized) {
		t.Errorf("expected ErrMonthFinalized, got %v", err)
	}
}

func TestPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	household, members := seedHousehold(t, store, "alice", "bob")

	for _, paidOn := range []string{"2024-01-15", "2024-03-01"} {
		p := &models.SettlementPayment{HouseholdID: household.ID, FromMemberID: members[1].ID, ToMemberID: members[0].ID,
			Amount: 5000, PaidOn: paidOn, CreatedByUserID: members[1].UserID, Note: "rent"}
		if err := store.CreatePayment(ctx, p); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
	}

	upToFeb, err := store.ListPayments(ctx, household.ID, "2024-02")
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(upToFeb) != 1 {
		t.Fatalf("expected 1 payment up to February, got %d", len(upToFeb))
	}

	all, err := store.ListPayments(ctx, household.ID, "")
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(all) != 2 || all[0].PaidOn != "2024-03-01" {
		t.Fatalf("unexpected payments: %+v", all)
	}

	got, err := store.GetPayment(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if got.Note != "rent" {
		t.Errorf("Note = %q, want rent", got.Note)
	}

	if err := store.DeletePayment(ctx, got.ID); err != nil {
		t.Fatalf("DeletePayment failed: %v", err)
	}
	if _, err := store.GetPayment(ctx, got.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrateDownUp(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	db, err := Open(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	version, err := MigrationVersion(ctx, db)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version != 3 {
		t.Errorf("version = %d, want 3", version)
	}
	if !strings.Contains(logs.String(), `msg="Migration applied" source=00001_init.sql`) {
		t.Errorf("migrations should be logged through slog, got:\n%s", logs.String())
	}

	status, err := MigrationStatus(ctx, db)
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(status) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(status))
	}
	for _, st := range status {
		if st.State != goose.StateApplied {
			t.Errorf("migration %d is %s, want applied", st.Source.Version, st.State)
		}
	}

	if err := MigrateDown(ctx, db); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	if version, _ := MigrationVersion(ctx, db); version != 2 {
		t.Errorf("version after down = %d, want 2", version)
	}
	if err := MigrateUp(ctx, db); err != nil {
		t.Fatalf("MigrateUp after down failed: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
