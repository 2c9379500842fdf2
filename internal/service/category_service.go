package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
)

// CreateCategory adds a category owned by the caller's household.
func (s *EntryService) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		HouseholdID: member.HouseholdID,
		Name:        req.Msg.Name,
		Type:        req.Msg.Type,
		Color:       req.Msg.Color,
		Icon:        req.Msg.Icon,
	}
	if err := category.Validate(); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		s.logger.Warn("CreateCategory failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "type", category.Type)
	return connect.NewResponse(&api.CreateCategoryResponse{Category: toAPICategory(category)}), nil
}

// UpdateCategory changes the fields set in the request.
func (s *EntryService) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	category, err := s.ownedCategory(ctx, member, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Name != nil {
		category.Name = *msg.Name
	}
	if msg.SortOrder != nil {
		category.SortOrder = *msg.SortOrder
	}
	if msg.Color != nil {
		category.Color = *msg.Color
	}
	if msg.Icon != nil {
		category.Icon = *msg.Icon
	}
	if err := category.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		s.logger.Warn("UpdateCategory failed", "category_id", category.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateCategoryResponse{Category: toAPICategory(category)}), nil
}

// DeleteCategory removes a household category. Its entries become
// uncategorized.
func (s *EntryService) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCategory(ctx, member, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteCategory(ctx, req.Msg.ID); err != nil {
		s.logger.Warn("DeleteCategory failed", "category_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Category deleted", "category_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteCategoryResponse{}), nil
}

// CreateSubcategory adds a household subcategory under any visible category,
// defaults included.
func (s *EntryService) CreateSubcategory(ctx context.Context, req *connect.Request[api.CreateSubcategoryRequest]) (*connect.Response[api.CreateSubcategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	category, err := s.visibleCategory(ctx, member, req.Msg.CategoryID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subcategory{
		CategoryID:  category.ID,
		HouseholdID: member.HouseholdID,
		Name:        req.Msg.Name,
	}
	if err := sub.Validate(); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateSubcategory(ctx, sub); err != nil {
		s.logger.Warn("CreateSubcategory failed", "category_id", category.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Subcategory created", "subcategory_id", sub.ID, "category_id", category.ID)
	return connect.NewResponse(&api.CreateSubcategoryResponse{Subcategory: toAPISubcategory(sub)}), nil
}

// UpdateSubcategory renames or reorders a household subcategory.
func (s *EntryService) UpdateSubcategory(ctx context.Context, req *connect.Request[api.UpdateSubcategoryRequest]) (*connect.Response[api.UpdateSubcategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	sub, err := s.householdSubcategory(ctx, member, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	if req.Msg.Name != nil {
		sub.Name = *req.Msg.Name
	}
	if req.Msg.SortOrder != nil {
		sub.SortOrder = *req.Msg.SortOrder
	}
	if err := sub.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateSubcategory(ctx, sub); err != nil {
		s.logger.Warn("UpdateSubcategory failed", "subcategory_id", sub.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateSubcategoryResponse{Subcategory: toAPISubcategory(sub)}), nil
}

// DeleteSubcategory removes a household subcategory and clears it from entries.
func (s *EntryService) DeleteSubcategory(ctx context.Context, req *connect.Request[api.DeleteSubcategoryRequest]) (*connect.Response[api.DeleteSubcategoryResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if _, err := s.householdSubcategory(ctx, member, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteSubcategory(ctx, req.Msg.ID); err != nil {
		s.logger.Warn("DeleteSubcategory failed", "subcategory_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Subcategory deleted", "subcategory_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteSubcategoryResponse{}), nil
}

// visibleCategory loads a category, reporting other households' categories
// as missing.
func (s *EntryService) visibleCategory(ctx context.Context, member *models.Member, id string) (*models.Category, error) {
	if id == "" {
		return nil, invalidArgument("category id is required")
	}
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !category.IsVisibleTo(member.HouseholdID) {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	return category, nil
}

// ownedCategory loads a category the household may change.
func (s *EntryService) ownedCategory(ctx context.Context, member *models.Member, id string) (*models.Category, error) {
	category, err := s.visibleCategory(ctx, member, id)
	if err != nil {
		return nil, err
	}
	if category.IsDefault() {
		return nil, connect.NewError(connect.CodePermissionDenied, errDefaultCategory)
	}
	return category, nil
}

func (s *EntryService) householdSubcategory(ctx context.Context, member *models.Member, id string) (*models.Subcategory, error) {
	if id == "" {
		return nil, invalidArgument("subcategory id is required")
	}
	sub, err := s.store.GetSubcategory(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if sub.HouseholdID != member.HouseholdID {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	return sub, nil
}
