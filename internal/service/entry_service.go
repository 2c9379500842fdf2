package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

var _ apiconnect.EntryServiceHandler = (*EntryService)(nil)

// EntryService implements the Connect EntryService.
type EntryService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEntryService creates a new EntryService with the given storage backend.
func NewEntryService(store storage.Store, logger *slog.Logger) *EntryService {
	return &EntryService{store: store, logger: logger, now: time.Now}
}

// ListEntries returns one page of the household's entries matching the
// filter, optionally with the summary of all matching entries.
func (s *EntryService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}

	query, err := resolveQuery(filterFromAPI(req.Msg.Filter), s.now())
	if err != nil {
		return nil, toConnectError(err)
	}
	page := models.PageRequest{
		Page:      req.Msg.Page,
		PageSize:  req.Msg.PageSize,
		SortBy:    req.Msg.SortBy,
		SortOrder: req.Msg.SortOrder,
	}
	if err := page.Normalize(); err != nil {
		return nil, toConnectError(err)
	}

	entries, total, err := s.store.ListEntries(ctx, member.HouseholdID, query, page)
	if err != nil {
		s.logger.Error("ListEntries failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	totalPages := page.TotalPages(total)
	resp := &api.ListEntriesResponse{
		Entries: make([]*api.Entry, len(entries)),
		Pagination: &api.Pagination{
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalCount: total,
			TotalPages: totalPages,
			HasNext:    page.Page < totalPages,
			HasPrev:    page.Page > 1,
		},
	}
	for i, e := range entries {
		resp.Entries[i] = toAPIEntry(e)
	}

	if req.Msg.IncludeSummary {
		resp.Summary, err = buildSummary(ctx, s.store, member.HouseholdID, query)
		if err != nil {
			s.logger.Error("ListEntries summary failed", "household_id", member.HouseholdID, "error", err)
			return nil, toConnectError(err)
		}
	}

	return connect.NewResponse(resp), nil
}

// GetEntry returns a single entry of the caller's household.
func (s *EntryService) GetEntry(ctx context.Context, req *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	entry, err := s.householdEntry(ctx, member, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// CreateEntry records a new entry. The payer defaults to the caller.
func (s *EntryService) CreateEntry(ctx context.Context, req *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if req.Msg.Entry == nil {
		return nil, invalidArgument("entry is required")
	}

	entry := entryFromInput(req.Msg.Entry)
	entry.HouseholdID = member.HouseholdID
	entry.CreatedByUserID = member.UserID
	if entry.PayerMemberID == "" {
		entry.PayerMemberID = member.ID
	}
	if err := s.checkEntry(ctx, member, entry); err != nil {
		return nil, err
	}

	entry.CreatedAt = s.now().Unix()
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		s.logger.Warn("CreateEntry failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	created, err := s.store.GetEntry(ctx, entry.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Entry created", "entry_id", entry.ID, "type", entry.Type, "shared", entry.Shared)
	return connect.NewResponse(&api.CreateEntryResponse{Entry: toAPIEntry(created)}), nil
}

// UpdateEntry replaces the writable fields of an entry.
func (s *EntryService) UpdateEntry(ctx context.Context, req *connect.Request[api.UpdateEntryRequest]) (*connect.Response[api.UpdateEntryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if req.Msg.Entry == nil {
		return nil, invalidArgument("entry is required")
	}
	existing, err := s.householdEntry(ctx, member, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	entry := entryFromInput(req.Msg.Entry)
	entry.ID = existing.ID
	entry.HouseholdID = existing.HouseholdID
	entry.CreatedByUserID = existing.CreatedByUserID
	entry.CreatedAt = existing.CreatedAt
	if entry.PayerMemberID == "" {
		entry.PayerMemberID = existing.PayerMemberID
	}
	if err := s.checkEntry(ctx, member, entry); err != nil {
		return nil, err
	}

	entry.UpdatedAt = s.now().Unix()
	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		s.logger.Warn("UpdateEntry failed", "entry_id", entry.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetEntry(ctx, entry.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateEntryResponse{Entry: toAPIEntry(updated)}), nil
}

// DeleteEntry removes an entry of the caller's household.
func (s *EntryService) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if _, err := s.householdEntry(ctx, member, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteEntry(ctx, req.Msg.ID); err != nil {
		s.logger.Warn("DeleteEntry failed", "entry_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Entry deleted", "entry_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteEntryResponse{}), nil
}

// BulkDeleteEntries removes several entries at once. IDs outside the
// household are skipped; nothing is deleted if any entry is locked.
func (s *EntryService) BulkDeleteEntries(ctx context.Context, req *connect.Request[api.BulkDeleteEntriesRequest]) (*connect.Response[api.BulkDeleteEntriesResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.IDs) == 0 {
		return nil, invalidArgument("ids must not be empty")
	}

	deleted, err := s.store.BulkDeleteEntries(ctx, member.HouseholdID, req.Msg.IDs)
	if err != nil {
		s.logger.Warn("BulkDeleteEntries failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Entries deleted", "household_id", member.HouseholdID, "requested", len(req.Msg.IDs), "deleted", deleted)
	return connect.NewResponse(&api.BulkDeleteEntriesResponse{DeletedCount: deleted}), nil
}

// ListCategories returns the default categories plus the household's own.
func (s *EntryService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	switch req.Msg.Type {
	case "", models.EntryExpense, models.EntryIncome:
	default:
		return nil, invalidArgument("type must be 'expense' or 'income'")
	}

	categories, err := s.store.ListCategories(ctx, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Category, 0, len(categories))
	for _, c := range categories {
		if req.Msg.Type != "" && c.Type != req.Msg.Type {
			continue
		}
		out = append(out, toAPICategory(c))
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: out}), nil
}

// householdEntry loads an entry, hiding entries of other households.
func (s *EntryService) householdEntry(ctx context.Context, member *models.Member, id string) (*models.Entry, error) {
	if id == "" {
		return nil, invalidArgument("entry id is required")
	}
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if entry.HouseholdID != member.HouseholdID {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	return entry, nil
}

// checkEntry validates the entry and the references it holds. The payer must
// be a household member and the category visible to the household and of the
// entry's type. A subcategory must be the household's and sit under that
// category. Every account must be visible to the caller.
func (s *EntryService) checkEntry(ctx context.Context, member *models.Member, e *models.Entry) error {
	if err := e.Validate(); err != nil {
		return toConnectError(err)
	}

	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return toConnectError(err)
	}
	if _, ok := members.byID[e.PayerMemberID]; !ok {
		return invalidArgument("payer %s is not a household member", e.PayerMemberID)
	}

	if e.CategoryID != "" {
		if e.Type == models.EntryTransfer {
			return invalidArgument("transfers have no category")
		}
		category, err := s.store.GetCategory(ctx, e.CategoryID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && !category.IsVisibleTo(member.HouseholdID)) {
			return invalidArgument("unknown category %s", e.CategoryID)
		}
		if err != nil {
			return toConnectError(err)
		}
		if category.Type != e.Type {
			return invalidArgument("category %s is a %s category", category.Name, category.Type)
		}
	}

	if e.SubcategoryID != "" {
		sub, err := s.store.GetSubcategory(ctx, e.SubcategoryID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && sub.HouseholdID != member.HouseholdID) {
			return invalidArgument("unknown subcategory %s", e.SubcategoryID)
		}
		if err != nil {
			return toConnectError(err)
		}
		if sub.CategoryID != e.CategoryID {
			return invalidArgument("subcategory %s does not belong to category %s", sub.Name, e.CategoryID)
		}
	}

	for _, id := range e.AccountIDs() {
		account, err := s.store.GetAccount(ctx, id)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && !account.VisibleTo(member.UserID, member.HouseholdID)) {
			return invalidArgument("unknown account %s", id)
		}
		if err != nil {
			return toConnectError(err)
		}
	}
	return nil
}
