// Package service implements the ourledger.v1 RPC handlers on top of the
// storage layer and the settlement calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/auth"
	"github.com/mmynk/ourledger/internal/calculator"
	"github.com/mmynk/ourledger/internal/middleware"
	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
)

var (
	errNoHousehold = errors.New("you don't belong to any household")
	errNotOwner    = errors.New("only the owner can change this account")

	errDefaultCategory = errors.New("default categories cannot be changed")
)

// invalidArgument builds an InvalidArgument error from a message.
func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// toConnectError maps storage, model and calculator errors to connect codes.
// Errors that already carry a code pass through unchanged.
func toConnectError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists), errors.Is(err, storage.ErrAlreadyMember):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrMonthFinalized):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, models.ErrInvalidEntry),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrAmountOverflow),
		errors.Is(err, calculator.ErrUnknownPayer),
		errors.Is(err, calculator.ErrDuplicateMember),
		errors.Is(err, calculator.ErrSelfPayment):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// requireUser returns the authenticated user ID.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// currentMember returns the caller's household membership.
func currentMember(ctx context.Context, store storage.HouseholdStore) (*models.Member, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	member, err := store.GetMemberByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, errNoHousehold)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return member, nil
}

// resolveMonth validates month, defaulting to the month of now.
func resolveMonth(month string, now time.Time) (string, error) {
	if month == "" {
		return now.Format(models.MonthLayout), nil
	}
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return "", invalidArgument("month must be YYYY-MM, got %q", month)
	}
	return month, nil
}

// memberIndex looks up household members by member or user ID.
type memberIndex struct {
	members []*models.Member
	byID    map[string]*models.Member
	byUser  map[string]*models.Member
}

func newMemberIndex(members []*models.Member) *memberIndex {
	idx := &memberIndex{
		members: members,
		byID:    make(map[string]*models.Member, len(members)),
		byUser:  make(map[string]*models.Member, len(members)),
	}
	for _, m := range members {
		idx.byID[m.ID] = m
		idx.byUser[m.UserID] = m
	}
	return idx
}

func (idx *memberIndex) ids() []string {
	ids := make([]string, len(idx.members))
	for i, m := range idx.members {
		ids[i] = m.ID
	}
	return ids
}

func (idx *memberIndex) name(memberID string) string {
	if m, ok := idx.byID[memberID]; ok {
		return m.UserName
	}
	return ""
}

func listMemberIndex(ctx context.Context, store storage.HouseholdStore, householdID string) (*memberIndex, error) {
	members, err := store.ListMembers(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return newMemberIndex(members), nil
}
