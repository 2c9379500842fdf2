package service

import (
	"context"
	"slices"
	"sync"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
)

func balancesByName(s *api.Settlement) map[string]*api.MemberBalance {
	out := make(map[string]*api.MemberBalance, len(s.Balances))
	for _, b := range s.Balances {
		out[b.Name] = b
	}
	return out
}

func TestGetSettlement_TwoMembers(t *testing.T) {
	env := setupTestServer(t)
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	env.sharedExpense(t, alice, 30000, "2024-03-02")
	env.sharedExpense(t, bob, 10000, "2024-03-04")

	resp, err := env.settlements.GetSettlement(context.Background(), authed(alice.token, &api.GetSettlementRequest{}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	s := resp.Msg.Settlement
	if s.Month != "2024-03" || s.TotalShared != 40000 || s.FairShare != 20000 || s.MemberCount != 2 || s.IsFinalized {
		t.Errorf("unexpected settlement header: %+v", s)
	}

	balances := balancesByName(s)
	if balances["alice"].Net != 10000 || balances["bob"].Net != -10000 {
		t.Errorf("nets = alice %d, bob %d; want 10000, -10000", balances["alice"].Net, balances["bob"].Net)
	}
	if balances["bob"].UserID != bob.user.ID {
		t.Errorf("balance should carry the user id")
	}

	if len(s.Transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(s.Transfers))
	}
	tr := s.Transfers[0]
	if tr.FromName != "bob" || tr.ToName != "alice" || tr.Amount != 10000 {
		t.Errorf("unexpected transfer: %+v", tr)
	}
}

func TestGetSettlement_RemainderGoesToBiggestPayer(t *testing.T) {
	env := setupTestServer(t)
	_, users := env.household(t, "alice", "bob", "carol")

	env.sharedExpense(t, users[0], 100, "2024-03-02")

	resp, err := env.settlements.GetSettlement(context.Background(), authed(users[1].token, &api.GetSettlementRequest{Month: "2024-03"}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	s := resp.Msg.Settlement
	if s.FairShare != 33 {
		t.Errorf("FairShare = %d, want 33", s.FairShare)
	}

	balances := balancesByName(s)
	if balances["alice"].Share != 34 || balances["alice"].Net != 66 {
		t.Errorf("alice should carry the remainder: %+v", balances["alice"])
	}
	var sum, toAlice int64
	for _, b := range s.Balances {
		sum += b.Net
	}
	for _, tr := range s.Transfers {
		if tr.ToName == "alice" {
			toAlice += tr.Amount
		}
	}
	if sum != 0 {
		t.Errorf("nets sum to %d, want 0", sum)
	}
	if len(s.Transfers) != 2 || toAlice != 66 {
		t.Errorf("expected 2 transfers totalling 66 to alice, got %d totalling %d", len(s.Transfers), toAlice)
	}
}

func TestGetSettlement_EmptyMonth(t *testing.T) {
	env := setupTestServer(t)
	_, users := env.household(t, "alice", "bob")

	resp, err := env.settlements.GetSettlement(context.Background(), authed(users[0].token, &api.GetSettlementRequest{Month: "2023-12"}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	s := resp.Msg.Settlement
	if s.TotalShared != 0 || len(s.Transfers) != 0 || len(s.Balances) != 2 {
		t.Errorf("unexpected empty settlement: %+v", s)
	}

	_, err = env.settlements.GetSettlement(context.Background(), authed(users[0].token, &api.GetSettlementRequest{Month: "2023-13"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestSaveSettlement_Draft(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	env.sharedExpense(t, alice, 3000, "2024-03-02")

	saved, err := env.settlements.SaveSettlement(ctx, authed(alice.token, &api.SaveSettlementRequest{}))
	if err != nil {
		t.Fatalf("SaveSettlement failed: %v", err)
	}
	if len(saved.Msg.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(saved.Msg.Records))
	}
	for _, r := range saved.Msg.Records {
		if r.IsFinalized {
			t.Errorf("draft record %s should not be finalized", r.ID)
		}
	}

	// Drafts do not lock the month.
	env.sharedExpense(t, bob, 1000, "2024-03-03")

	again, err := env.settlements.SaveSettlement(ctx, authed(bob.token, &api.SaveSettlementRequest{}))
	if err != nil {
		t.Fatalf("SaveSettlement failed: %v", err)
	}
	for _, r := range again.Msg.Records {
		if r.Name == "alice" && r.SettlementAmount != 1000 {
			t.Errorf("alice's record should be updated to 1000, got %d", r.SettlementAmount)
		}
	}
}

func TestFinalizeSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	shared := env.sharedExpense(t, alice, 3000, "2024-02-10")
	env.sharedExpense(t, bob, 1000, "2024-02-11")

	first, err := env.settlements.FinalizeSettlement(ctx, authed(alice.token, &api.FinalizeSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}
	if first.Msg.AlreadyFinalized || !first.Msg.Settlement.IsFinalized {
		t.Errorf("unexpected first finalize: %+v", first.Msg)
	}
	amounts := map[string]int64{}
	for _, r := range first.Msg.Records {
		amounts[r.Name] = r.SettlementAmount
		if !r.IsFinalized {
			t.Errorf("record %s should be finalized", r.ID)
		}
	}
	if amounts["alice"] != 1000 || amounts["bob"] != -1000 {
		t.Errorf("record amounts = %v", amounts)
	}

	second, err := env.settlements.FinalizeSettlement(ctx, authed(bob.token, &api.FinalizeSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("second FinalizeSettlement failed: %v", err)
	}
	if !second.Msg.AlreadyFinalized {
		t.Error("second finalize should report AlreadyFinalized")
	}
	if len(second.Msg.Records) != 2 {
		t.Fatalf("expected the same 2 records, got %d", len(second.Msg.Records))
	}
	for _, r := range second.Msg.Records {
		if r.SettlementAmount != amounts[r.Name] {
			t.Errorf("record for %s changed from %d to %d", r.Name, amounts[r.Name], r.SettlementAmount)
		}
	}

	got, err := env.settlements.GetSettlement(ctx, authed(bob.token, &api.GetSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	s := got.Msg.Settlement
	if !s.IsFinalized || s.TotalShared != 4000 || len(s.Transfers) != 1 || s.Transfers[0].Amount != 1000 {
		t.Errorf("finalized settlement should match its records: %+v", s)
	}

	// Shared expenses in a finalized month are locked.
	_, err = env.entries.CreateEntry(ctx, authed(bob.token, &api.CreateEntryRequest{
		Entry: &api.EntryInput{Type: "expense", Amount: 500, Date: "2024-02-20", Shared: true},
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.entries.DeleteEntry(ctx, authed(alice.token, &api.DeleteEntryRequest{ID: shared.ID}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.entries.UpdateEntry(ctx, authed(alice.token, &api.UpdateEntryRequest{
		ID:    shared.ID,
		Entry: &api.EntryInput{Type: "expense", Amount: 3000, Date: "2024-03-10", Shared: true},
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.entries.CreateEntry(ctx, authed(bob.token, &api.CreateEntryRequest{
		Entry: &api.EntryInput{Type: "expense", Amount: 500, Date: "2024-02-20"},
	}))
	if err != nil {
		t.Errorf("personal expenses stay editable in a finalized month: %v", err)
	}

	_, err = env.settlements.SaveSettlement(ctx, authed(bob.token, &api.SaveSettlementRequest{Month: "2024-02"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	if got := env.publisher.types(); !slices.Equal(got, []string{"settlement.finalized"}) {
		t.Errorf("published events = %v", got)
	}
}

func TestFinalizeSettlement_EmptyMonth(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	resp, err := env.settlements.FinalizeSettlement(ctx, authed(alice.token, &api.FinalizeSettlementRequest{Month: "2024-01"}))
	if err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}
	s := resp.Msg.Settlement
	if !s.IsFinalized || s.TotalShared != 0 || len(s.Transfers) != 0 {
		t.Errorf("unexpected empty settlement: %+v", s)
	}
	if len(resp.Msg.Records) != 2 {
		t.Fatalf("expected one record per member, got %d", len(resp.Msg.Records))
	}
	for _, r := range resp.Msg.Records {
		if r.SettlementAmount != 0 || !r.IsFinalized {
			t.Errorf("record for %s = %+v, want a zero finalized record", r.Name, r)
		}
	}

	_, err = env.entries.CreateEntry(ctx, authed(bob.token, &api.CreateEntryRequest{
		Entry: &api.EntryInput{Type: "expense", Amount: 500, Date: "2024-01-20", Shared: true},
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}

// entryBeforeFinalize writes a shared expense right before the month is
// finalized, after the service has already read the month once.
type entryBeforeFinalize struct {
	storage.Store

	mu    sync.Mutex
	entry *models.Entry
}

func (s *entryBeforeFinalize) FinalizeMonth(ctx context.Context, householdID, month string, compute storage.RecordsFunc) ([]*models.SettlementRecord, error) {
	s.mu.Lock()
	entry := s.entry
	s.entry = nil
	s.mu.Unlock()

	if entry != nil {
		entry.HouseholdID = householdID
		if err := s.Store.CreateEntry(ctx, entry); err != nil {
			return nil, err
		}
	}
	return s.Store.FinalizeMonth(ctx, householdID, month, compute)
}

func TestFinalizeSettlement_CoversConcurrentEntry(t *testing.T) {
	racer := &entryBeforeFinalize{}
	env := setupTestServerWith(t, func(store storage.Store) storage.Store {
		racer.Store = store
		return racer
	})
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	env.sharedExpense(t, alice, 2000, "2024-02-05")
	racer.mu.Lock()
	racer.entry = &models.Entry{
		CreatedByUserID: bob.user.ID,
		Type:            models.EntryExpense,
		Amount:          2000,
		Date:            "2024-02-12",
		PayerMemberID:   bob.member.ID,
		Shared:          true,
	}
	racer.mu.Unlock()

	resp, err := env.settlements.FinalizeSettlement(ctx, authed(alice.token, &api.FinalizeSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}
	if s := resp.Msg.Settlement; s.TotalShared != 4000 || len(s.Transfers) != 0 {
		t.Errorf("finalized settlement should include bob's expense: %+v", s)
	}
	for _, r := range resp.Msg.Records {
		if r.SettlementAmount != 0 {
			t.Errorf("record for %s = %d, want 0", r.Name, r.SettlementAmount)
		}
	}

	got, err := env.settlements.GetSettlement(ctx, authed(bob.token, &api.GetSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	for name, b := range balancesByName(got.Msg.Settlement) {
		if b.Paid != 2000 || b.Share != 2000 || b.Net != 0 {
			t.Errorf("%s balance = %+v, want paid 2000, share 2000, net 0", name, b)
		}
	}
}

func TestReopenSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	env.sharedExpense(t, alice, 2000, "2024-02-10")

	_, err := env.settlements.ReopenSettlement(ctx, authed(alice.token, &api.ReopenSettlementRequest{Month: "2024-02"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.settlements.ReopenSettlement(ctx, authed(alice.token, &api.ReopenSettlementRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)

	if _, err := env.settlements.FinalizeSettlement(ctx, authed(alice.token, &api.FinalizeSettlementRequest{Month: "2024-02"})); err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}

	reopened, err := env.settlements.ReopenSettlement(ctx, authed(bob.token, &api.ReopenSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("ReopenSettlement failed: %v", err)
	}
	if reopened.Msg.Settlement.IsFinalized {
		t.Error("reopened month should not be finalized")
	}

	env.sharedExpense(t, bob, 2000, "2024-02-12")

	got, err := env.settlements.GetSettlement(ctx, authed(alice.token, &api.GetSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if s := got.Msg.Settlement; s.TotalShared != 4000 || len(s.Transfers) != 0 {
		t.Errorf("reopened month should be computed live: %+v", s)
	}

	want := []string{"settlement.finalized", "settlement.reopened"}
	if got := env.publisher.types(); !slices.Equal(got, want) {
		t.Errorf("published events = %v, want %v", got, want)
	}
}

func TestCumulativeSettlement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]

	// February: alice is owed 1000, finalized.
	env.sharedExpense(t, alice, 3000, "2024-02-10")
	env.sharedExpense(t, bob, 1000, "2024-02-11")
	if _, err := env.settlements.FinalizeSettlement(ctx, authed(alice.token, &api.FinalizeSettlementRequest{Month: "2024-02"})); err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}
	// Finalizing twice must not count February twice.
	if _, err := env.settlements.FinalizeSettlement(ctx, authed(bob.token, &api.FinalizeSettlementRequest{Month: "2024-02"})); err != nil {
		t.Fatalf("FinalizeSettlement failed: %v", err)
	}

	// March: bob is owed 300, live.
	env.sharedExpense(t, bob, 600, "2024-03-05")

	// Bob pays back 500.
	if _, err := env.settlements.RecordPayment(ctx, authed(bob.token, &api.RecordPaymentRequest{
		FromMemberID: bob.member.ID,
		ToMemberID:   alice.member.ID,
		Amount:       500,
		PaidOn:       "2024-03-10",
	})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	resp, err := env.settlements.GetCumulativeSettlement(ctx, authed(alice.token, &api.GetCumulativeSettlementRequest{}))
	if err != nil {
		t.Fatalf("GetCumulativeSettlement failed: %v", err)
	}
	if resp.Msg.Month != "2024-03" {
		t.Errorf("Month = %q, want 2024-03", resp.Msg.Month)
	}

	byName := map[string]*api.CumulativeBalance{}
	for _, b := range resp.Msg.Balances {
		byName[b.Name] = b
	}
	// alice: +1000 (Feb) - 300 (Mar) - 500 received = 200
	// bob:   -1000 (Feb) + 300 (Mar) + 500 paid    = -200
	if byName["alice"].Balance != 200 || byName["bob"].Balance != -200 {
		t.Errorf("balances = alice %d, bob %d; want 200, -200", byName["alice"].Balance, byName["bob"].Balance)
	}

	history := byName["alice"].History
	if len(history) != 2 {
		t.Fatalf("expected 2 months of history, got %d", len(history))
	}
	if history[0].Month != "2024-02" || !history[0].Finalized || history[0].Running != 1000 {
		t.Errorf("unexpected February point: %+v", history[0])
	}
	if history[1].Month != "2024-03" || history[1].Finalized || history[1].Net != -300 || history[1].Payments != -500 {
		t.Errorf("unexpected March point: %+v", history[1])
	}

	feb, err := env.settlements.GetCumulativeSettlement(ctx, authed(bob.token, &api.GetCumulativeSettlementRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("GetCumulativeSettlement failed: %v", err)
	}
	for _, b := range feb.Msg.Balances {
		if b.Name == "alice" && b.Balance != 1000 {
			t.Errorf("as of February alice should be owed 1000, got %d", b.Balance)
		}
	}
}

func TestPayments(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	_, users := env.household(t, "alice", "bob")
	alice, bob := users[0], users[1]
	_, others := env.household(t, "carol")

	recorded, err := env.settlements.RecordPayment(ctx, authed(bob.token, &api.RecordPaymentRequest{
		FromMemberID: bob.member.ID,
		ToMemberID:   alice.member.ID,
		Amount:       1500,
		Note:         "rent share",
	}))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	p := recorded.Msg.Payment
	if p.PaidOn != "2024-03-15" || p.FromName != "bob" || p.ToName != "alice" || p.CreatedByUserID != bob.user.ID {
		t.Errorf("unexpected payment: %+v", p)
	}

	invalid := []*api.RecordPaymentRequest{
		{FromMemberID: bob.member.ID, ToMemberID: bob.member.ID, Amount: 100},
		{FromMemberID: bob.member.ID, ToMemberID: alice.member.ID, Amount: 0},
		{FromMemberID: bob.member.ID, ToMemberID: others[0].member.ID, Amount: 100},
		{FromMemberID: bob.member.ID, ToMemberID: alice.member.ID, Amount: 100, PaidOn: "yesterday"},
	}
	for _, req := range invalid {
		_, err := env.settlements.RecordPayment(ctx, authed(bob.token, req))
		assertCode(t, err, connect.CodeInvalidArgument)
	}

	list, err := env.settlements.ListPayments(ctx, authed(alice.token, &api.ListPaymentsRequest{}))
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(list.Msg.Payments) != 1 || list.Msg.Payments[0].Note != "rent share" {
		t.Errorf("unexpected payments: %+v", list.Msg.Payments)
	}

	earlier, err := env.settlements.ListPayments(ctx, authed(alice.token, &api.ListPaymentsRequest{Month: "2024-02"}))
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(earlier.Msg.Payments) != 0 {
		t.Errorf("no payments were made by February, got %d", len(earlier.Msg.Payments))
	}

	_, err = env.settlements.DeletePayment(ctx, authed(others[0].token, &api.DeletePaymentRequest{ID: p.ID}))
	assertCode(t, err, connect.CodeNotFound)

	if _, err := env.settlements.DeletePayment(ctx, authed(alice.token, &api.DeletePaymentRequest{ID: p.ID})); err != nil {
		t.Fatalf("DeletePayment failed: %v", err)
	}
	_, err = env.settlements.DeletePayment(ctx, authed(alice.token, &api.DeletePaymentRequest{ID: p.ID}))
	assertCode(t, err, connect.CodeNotFound)

	want := []string{"payment.recorded", "payment.deleted"}
	if got := env.publisher.types(); !slices.Equal(got, want) {
		t.Errorf("published events = %v, want %v", got, want)
	}
}
