package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/calculator"
	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

var _ apiconnect.SummaryServiceHandler = (*SummaryService)(nil)

// SummaryService implements the Connect SummaryService.
type SummaryService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSummaryService creates a new SummaryService with the given storage backend.
func NewSummaryService(store storage.Store, logger *slog.Logger) *SummaryService {
	return &SummaryService{store: store, logger: logger, now: time.Now}
}

// GetSummary aggregates the household's entries matching the filter. Without
// any date constraint the current month is summarized.
func (s *SummaryService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}

	filter := filterFromAPI(req.Msg.Filter)
	if !filter.HasDateConstraint() {
		filter.DatePreset = models.PresetThisMonth
	}
	query, err := resolveQuery(filter, s.now())
	if err != nil {
		return nil, toConnectError(err)
	}

	summary, err := buildSummary(ctx, s.store, member.HouseholdID, query)
	if err != nil {
		s.logger.Error("GetSummary failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetSummaryResponse{
		Summary:  summary,
		DateFrom: query.From,
		DateTo:   query.To,
	}), nil
}

// resolveQuery validates the filter and pins its date bounds relative to now.
func resolveQuery(filter models.EntryFilter, now time.Time) (storage.EntryQuery, error) {
	if err := filter.Validate(); err != nil {
		return storage.EntryQuery{}, err
	}
	from, to := filter.DateRange(now)
	if from != "" && to != "" && from > to {
		return storage.EntryQuery{}, fmt.Errorf("%w: date_from is after date_to", models.ErrInvalidFilter)
	}
	return storage.EntryQuery{EntryFilter: filter, From: from, To: to}, nil
}

// buildSummary aggregates every entry matching q, ignoring pagination.
func buildSummary(ctx context.Context, store storage.Store, householdID string, q storage.EntryQuery) (*api.Summary, error) {
	entries, err := store.ListAllEntries(ctx, householdID, q)
	if err != nil {
		return nil, err
	}
	categories, err := store.ListCategories(ctx, householdID)
	if err != nil {
		return nil, err
	}
	members, err := store.ListMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}

	opts := calculator.SummaryOptions{
		Members:       make([]calculator.MemberRef, len(members)),
		CategoryNames: make(map[string]string, len(categories)),
		AccountIDs:    q.AccountIDs,
	}
	for i, m := range members {
		opts.Members[i] = calculator.MemberRef{ID: m.ID, Name: m.UserName}
	}
	for _, c := range categories {
		opts.CategoryNames[c.ID] = c.Name
	}

	rows := make([]calculator.SummaryEntry, len(entries))
	for i, e := range entries {
		rows[i] = calculator.SummaryEntry{
			Type:                  e.Type,
			TransferType:          e.TransferType,
			Amount:                e.Amount,
			CategoryID:            e.CategoryID,
			PayerMemberID:         e.PayerMemberID,
			Shared:                e.Shared,
			TransferFromAccountID: e.TransferFromAccountID,
			TransferToAccountID:   e.TransferToAccountID,
		}
	}

	summary, err := calculator.Summarize(rows, opts)
	if err != nil {
		return nil, err
	}
	return toAPISummary(summary), nil
}
