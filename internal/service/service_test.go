package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/auth"
	"github.com/mmynk/ourledger/internal/events"
	"github.com/mmynk/ourledger/internal/metrics"
	"github.com/mmynk/ourledger/internal/middleware"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/internal/storage/sqlite"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

// fixedNow is "today" for every service under test.
var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store     *sqlite.SQLiteStore
	publisher *recordingPublisher

	auth        apiconnect.AuthServiceClient
	households  apiconnect.HouseholdServiceClient
	accounts    apiconnect.AccountServiceClient
	entries     apiconnect.EntryServiceClient
	summary     apiconnect.SummaryServiceClient
	settlements apiconnect.SettlementServiceClient
}

// setupTestServer serves every service behind the real auth interceptors,
// backed by a temporary SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWith(t, nil)
}

// setupTestServerWith is setupTestServer with the services' store wrapped by
// wrap, when set.
func setupTestServerWith(t *testing.T, wrap func(storage.Store) storage.Store) *testEnv {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	var store storage.Store = db
	if wrap != nil {
		store = wrap(db)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	publisher := &recordingPublisher{}

	householdSvc := NewHouseholdService(store, logger)
	accountSvc := NewAccountService(store, logger)
	entrySvc := NewEntryService(store, logger)
	summarySvc := NewSummaryService(store, logger)
	settlementSvc := NewSettlementService(store, publisher, metrics.New(), logger)
	for _, now := range []*func() time.Time{&householdSvc.now, &accountSvc.now, &entrySvc.now, &summarySvc.now, &settlementSvc.now} {
		*now = func() time.Time { return fixedNow }
	}

	optional := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	required := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger), optional))
	mux.Handle(apiconnect.NewHouseholdServiceHandler(householdSvc, required))
	mux.Handle(apiconnect.NewAccountServiceHandler(accountSvc, required))
	mux.Handle(apiconnect.NewEntryServiceHandler(entrySvc, required))
	mux.Handle(apiconnect.NewSummaryServiceHandler(summarySvc, required))
	mux.Handle(apiconnect.NewSettlementServiceHandler(settlementSvc, required))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &testEnv{
		store:       db,
		publisher:   publisher,
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		households:  apiconnect.NewHouseholdServiceClient(http.DefaultClient, server.URL),
		accounts:    apiconnect.NewAccountServiceClient(http.DefaultClient, server.URL),
		entries:     apiconnect.NewEntryServiceClient(http.DefaultClient, server.URL),
		summary:     apiconnect.NewSummaryServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

// authed wraps msg in a request carrying the bearer token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

// testUser is a registered user with their token and, once they have one,
// their membership.
type testUser struct {
	token  string
	user   *api.User
	member *api.Member
}

func (e *testEnv) register(t *testing.T, name string) *testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    name + "@example.com",
		Name:     name,
		Password: "correct horse battery",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return &testUser{token: resp.Msg.Token, user: resp.Msg.User}
}

// household registers the named users; the first creates a household and
// the rest join it.
func (e *testEnv) household(t *testing.T, names ...string) (*api.Household, []*testUser) {
	t.Helper()
	ctx := context.Background()

	var household *api.Household
	users := make([]*testUser, len(names))
	for i, name := range names {
		u := e.register(t, name)
		if i == 0 {
			resp, err := e.households.CreateHousehold(ctx, authed(u.token, &api.CreateHouseholdRequest{Name: "Home"}))
			if err != nil {
				t.Fatalf("CreateHousehold failed: %v", err)
			}
			household, u.member = resp.Msg.Household, resp.Msg.Member
		} else {
			resp, err := e.households.JoinHousehold(ctx, authed(u.token, &api.JoinHouseholdRequest{InviteCode: household.InviteCode}))
			if err != nil {
				t.Fatalf("JoinHousehold(%s) failed: %v", name, err)
			}
			u.member = resp.Msg.Member
		}
		users[i] = u
	}
	return household, users
}

// sharedExpense records a shared expense paid by u.
func (e *testEnv) sharedExpense(t *testing.T, u *testUser, amount int64, date string) *api.Entry {
	t.Helper()
	resp, err := e.entries.CreateEntry(context.Background(), authed(u.token, &api.CreateEntryRequest{
		Entry: &api.EntryInput{Type: "expense", Amount: amount, Date: date, Shared: true},
	}))
	if err != nil {
		t.Fatalf("CreateEntry(%d on %s) failed: %v", amount, date, err)
	}
	return resp.Msg.Entry
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var ce *connect.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if ce.Code() != want {
		t.Fatalf("expected code %v, got %v (%v)", want, ce.Code(), err)
	}
}
