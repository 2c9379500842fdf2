package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

var _ apiconnect.AccountServiceHandler = (*AccountService)(nil)

// AccountService implements the Connect AccountService. Accounts belong to a
// user; the household sees only the ones marked shared-visible.
type AccountService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountService creates a new AccountService with the given storage backend.
func NewAccountService(store storage.Store, logger *slog.Logger) *AccountService {
	return &AccountService{store: store, logger: logger, now: time.Now}
}

// caller returns the user ID and, if the user has one, their household ID.
func (s *AccountService) caller(ctx context.Context) (userID, householdID string, err error) {
	userID, err = requireUser(ctx)
	if err != nil {
		return "", "", err
	}
	member, err := s.store.GetMemberByUserID(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return userID, "", nil
	case err != nil:
		return "", "", toConnectError(err)
	}
	return userID, member.HouseholdID, nil
}

// ListAccounts returns the caller's accounts and the household's shared-visible ones.
func (s *AccountService) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	userID, householdID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccessibleAccounts(ctx, userID, householdID)
	if err != nil {
		s.logger.Error("ListAccounts failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Account, len(accounts))
	for i, a := range accounts {
		out[i] = toAPIAccount(a, userID)
	}
	return connect.NewResponse(&api.ListAccountsResponse{Accounts: out}), nil
}

// GetAccount returns one account visible to the caller.
func (s *AccountService) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	userID, householdID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	account, err := s.visibleAccount(ctx, req.Msg.ID, userID, householdID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetAccountResponse{Account: toAPIAccount(account, userID)}), nil
}

// CreateAccount creates an account owned by the caller.
func (s *AccountService) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	userID, householdID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	account := &models.Account{
		ID:              uuid.New().String(),
		OwnerUserID:     userID,
		HouseholdID:     householdID,
		Name:            strings.TrimSpace(req.Msg.Name),
		BankName:        strings.TrimSpace(req.Msg.BankName),
		Type:            req.Msg.Type,
		AccountType:     req.Msg.AccountType,
		Balance:         req.Msg.Balance,
		IsSharedVisible: req.Msg.IsSharedVisible,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if account.Type == "" {
		account.Type = models.AccountPersonal
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		s.logger.Error("CreateAccount failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	created, err := s.store.GetAccount(ctx, account.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Account created", "account_id", account.ID, "type", account.Type)
	return connect.NewResponse(&api.CreateAccountResponse{Account: toAPIAccount(created, userID)}), nil
}

// UpdateAccount changes the fields set in the request. Only the owner may
// update an account.
func (s *AccountService) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	userID, householdID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.ownedAccount(ctx, req.Msg.ID, userID, householdID)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Name != nil {
		account.Name = strings.TrimSpace(*msg.Name)
	}
	if msg.BankName != nil {
		account.BankName = strings.TrimSpace(*msg.BankName)
	}
	if msg.Type != nil {
		account.Type = *msg.Type
	}
	if msg.AccountType != nil {
		account.AccountType = *msg.AccountType
	}
	if msg.Balance != nil {
		account.Balance = msg.Balance
	}
	if msg.ClearBalance {
		account.Balance = nil
	}
	if msg.IsSharedVisible != nil {
		account.IsSharedVisible = *msg.IsSharedVisible
	}
	account.UpdatedAt = s.now().Unix()

	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		s.logger.Error("UpdateAccount failed", "account_id", account.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetAccount(ctx, account.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateAccountResponse{Account: toAPIAccount(updated, userID)}), nil
}

// DeleteAccount removes an account owned by the caller.
func (s *AccountService) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	userID, householdID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedAccount(ctx, req.Msg.ID, userID, householdID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteAccount(ctx, req.Msg.ID); err != nil {
		s.logger.Error("DeleteAccount failed", "account_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Account deleted", "account_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteAccountResponse{}), nil
}

// visibleAccount loads an account, reporting accounts the caller cannot see
// as missing.
func (s *AccountService) visibleAccount(ctx context.Context, id, userID, householdID string) (*models.Account, error) {
	if id == "" {
		return nil, invalidArgument("account id is required")
	}
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !account.VisibleTo(userID, householdID) {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	return account, nil
}

// ownedAccount loads an account the caller may edit.
func (s *AccountService) ownedAccount(ctx context.Context, id, userID, householdID string) (*models.Account, error) {
	account, err := s.visibleAccount(ctx, id, userID, householdID)
	if err != nil {
		return nil, err
	}
	if account.OwnerUserID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	return account, nil
}

// validateAccount checks the enum fields. A shared account is always
// visible to the household.
func validateAccount(a *models.Account) error {
	if a.Name == "" {
		return invalidArgument("account name is required")
	}
	switch a.Type {
	case models.AccountPersonal:
	case models.AccountShared:
		if a.HouseholdID == "" {
			return connect.NewError(connect.CodeFailedPrecondition, errNoHousehold)
		}
		a.IsSharedVisible = true
	default:
		return invalidArgument("type must be 'personal' or 'shared'")
	}
	if !slices.Contains(models.AccountTypes, a.AccountType) {
		return invalidArgument("account_type must be one of %v", models.AccountTypes)
	}
	return nil
}
