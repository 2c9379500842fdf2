package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

var _ apiconnect.HouseholdServiceHandler = (*HouseholdService)(nil)

// inviteCodeAttempts bounds retries when a generated invite code collides.
const inviteCodeAttempts = 3

// HouseholdService implements the Connect HouseholdService.
type HouseholdService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewHouseholdService creates a new HouseholdService with the given storage backend.
func NewHouseholdService(store storage.Store, logger *slog.Logger) *HouseholdService {
	return &HouseholdService{store: store, logger: logger, now: time.Now}
}

// GetHousehold returns the caller's household and its members.
func (s *HouseholdService) GetHousehold(ctx context.Context, req *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}

	household, err := s.store.GetHousehold(ctx, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}
	members, err := s.store.ListMembers(ctx, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetHouseholdResponse{
		Household: toAPIHousehold(household),
		Members:   toAPIMembers(members),
	}), nil
}

// CreateHousehold creates a household owned by the caller.
func (s *HouseholdService) CreateHousehold(ctx context.Context, req *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("household name is required")
	}

	s.logger.Info("CreateHousehold request received", "user_id", userID, "name", name)

	now := s.now().Unix()
	household := &models.Household{ID: uuid.New().String(), Name: name, CreatedAt: now}
	owner := &models.Member{ID: uuid.New().String(), UserID: userID, Role: models.RoleOwner, JoinedAt: now}

	for attempt := 1; ; attempt++ {
		household.InviteCode, err = models.GenerateInviteCode()
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		err = s.store.CreateHousehold(ctx, household, owner)
		if !errors.Is(err, storage.ErrAlreadyExists) || attempt == inviteCodeAttempts {
			break
		}
		s.logger.Warn("Invite code collision, retrying", "attempt", attempt)
	}
	if err != nil {
		s.logger.Error("CreateHousehold failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	member, err := s.store.GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Household created", "household_id", household.ID)
	return connect.NewResponse(&api.CreateHouseholdResponse{
		Household: toAPIHousehold(household),
		Member:    toAPIMember(member),
	}), nil
}

// JoinHousehold adds the caller to the household with the given invite code.
func (s *HouseholdService) JoinHousehold(ctx context.Context, req *connect.Request[api.JoinHouseholdRequest]) (*connect.Response[api.JoinHouseholdResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Msg.InviteCode))
	if code == "" {
		return nil, invalidArgument("invite code is required")
	}

	household, err := s.store.GetHouseholdByInviteCode(ctx, code)
	if err != nil {
		s.logger.Warn("JoinHousehold with unknown invite code", "user_id", userID)
		return nil, toConnectError(err)
	}

	err = s.store.AddMember(ctx, &models.Member{
		ID:          uuid.New().String(),
		HouseholdID: household.ID,
		UserID:      userID,
		Role:        models.RoleMember,
		JoinedAt:    s.now().Unix(),
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	member, err := s.store.GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Member joined household", "household_id", household.ID, "member_id", member.ID)
	return connect.NewResponse(&api.JoinHouseholdResponse{
		Household: toAPIHousehold(household),
		Member:    toAPIMember(member),
	}), nil
}

// ListMembers returns the members of the caller's household.
func (s *HouseholdService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(members)}), nil
}
