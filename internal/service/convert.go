package service

import (
	"github.com/mmynk/ourledger/internal/calculator"
	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func toAPIHousehold(h *models.Household) *api.Household {
	return &api.Household{
		ID:         h.ID,
		Name:       h.Name,
		InviteCode: h.InviteCode,
		CreatedAt:  h.CreatedAt,
	}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.UserName,
		Email:    m.UserEmail,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

func toAPIMembers(members []*models.Member) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = toAPIMember(m)
	}
	return out
}

func toAPIAccount(a *models.Account, userID string) *api.Account {
	return &api.Account{
		ID:              a.ID,
		OwnerUserID:     a.OwnerUserID,
		OwnerName:       a.OwnerName,
		HouseholdID:     a.HouseholdID,
		Name:            a.Name,
		BankName:        a.BankName,
		Type:            a.Type,
		AccountType:     a.AccountType,
		Balance:         a.Balance,
		IsSharedVisible: a.IsSharedVisible,
		IsOwner:         a.OwnerUserID == userID,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAPICategory(c *models.Category) *api.Category {
	out := &api.Category{
		ID:          c.ID,
		HouseholdID: c.HouseholdID,
		Name:        c.Name,
		Type:        c.Type,
		SortOrder:   c.SortOrder,
		Color:       c.Color,
		Icon:        c.Icon,
	}
	for _, sub := range c.Subcategories {
		out.Subcategories = append(out.Subcategories, toAPISubcategory(sub))
	}
	return out
}

func toAPISubcategory(s *models.Subcategory) *api.Subcategory {
	return &api.Subcategory{
		ID:          s.ID,
		CategoryID:  s.CategoryID,
		HouseholdID: s.HouseholdID,
		Name:        s.Name,
		SortOrder:   s.SortOrder,
	}
}

func toAPIEntry(e *models.Entry) *api.Entry {
	return &api.Entry{
		ID:                    e.ID,
		HouseholdID:           e.HouseholdID,
		CreatedByUserID:       e.CreatedByUserID,
		Type:                  e.Type,
		TransferType:          e.TransferType,
		Amount:                e.Amount,
		Date:                  e.Date,
		OccurredAt:            e.OccurredAt,
		CategoryID:            e.CategoryID,
		CategoryName:          e.CategoryName,
		SubcategoryID:         e.SubcategoryID,
		SubcategoryName:       e.SubcategoryName,
		Memo:                  e.Memo,
		PayerMemberID:         e.PayerMemberID,
		PayerName:             e.PayerName,
		Shared:                e.Shared,
		AccountID:             e.AccountID,
		AccountName:           e.AccountName,
		TransferFromAccountID: e.TransferFromAccountID,
		TransferFromName:      e.TransferFromAccountName,
		TransferToAccountID:   e.TransferToAccountID,
		TransferToName:        e.TransferToAccountName,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

// entryFromInput copies the writable fields. Ownership and timestamps are
// filled in by the caller.
func entryFromInput(in *api.EntryInput) *models.Entry {
	return &models.Entry{
		Type:                  in.Type,
		TransferType:          in.TransferType,
		Amount:                in.Amount,
		Date:                  in.Date,
		OccurredAt:            in.OccurredAt,
		CategoryID:            in.CategoryID,
		SubcategoryID:         in.SubcategoryID,
		Memo:                  in.Memo,
		PayerMemberID:         in.PayerMemberID,
		Shared:                in.Shared,
		AccountID:             in.AccountID,
		TransferFromAccountID: in.TransferFromAccountID,
		TransferToAccountID:   in.TransferToAccountID,
	}
}

func filterFromAPI(f *api.EntryFilter) models.EntryFilter {
	if f == nil {
		return models.EntryFilter{}
	}
	return models.EntryFilter{
		Month:         f.Month,
		DateFrom:      f.DateFrom,
		DateTo:        f.DateTo,
		DatePreset:    f.DatePreset,
		Types:         f.Types,
		TransferType:  f.TransferType,
		CategoryIDs:   f.CategoryIDs,
		AccountIDs:    f.AccountIDs,
		PayerMemberID: f.PayerMemberID,
		Shared:        f.Shared,
		AmountMin:     f.AmountMin,
		AmountMax:     f.AmountMax,
		MemoSearch:    f.MemoSearch,
	}
}

func toAPISummary(s *calculator.Summary) *api.Summary {
	out := &api.Summary{
		TotalIncome:      s.TotalIncome,
		TotalExpense:     s.TotalExpense,
		TotalTransferIn:  s.TotalTransferIn,
		TotalTransferOut: s.TotalTransferOut,
		NetBalance:       s.NetBalance,
		EntryCount:       s.EntryCount,
		ByCategory:       make([]*api.CategoryBreakdown, len(s.ByCategory)),
		ByMember:         make([]*api.MemberBreakdown, len(s.ByMember)),
	}
	for i, c := range s.ByCategory {
		out.ByCategory[i] = &api.CategoryBreakdown{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Total:        c.Total,
			Count:        c.Count,
			Percentage:   c.Share.StringFixed(1),
		}
	}
	for i, m := range s.ByMember {
		out.ByMember[i] = &api.MemberBreakdown{
			MemberID:      m.MemberID,
			MemberName:    m.MemberName,
			TotalExpense:  m.TotalExpense,
			TotalIncome:   m.TotalIncome,
			SharedExpense: m.SharedExpense,
		}
	}
	return out
}

func toAPISettlement(month string, finalized bool, s *calculator.Settlement, members *memberIndex) *api.Settlement {
	out := &api.Settlement{
		Month:       month,
		MemberCount: s.MemberCount,
		TotalShared: s.TotalShared,
		FairShare:   s.FairShare,
		IsFinalized: finalized,
		Balances:    make([]*api.MemberBalance, len(s.Balances)),
		Transfers:   make([]*api.Transfer, len(s.Transfers)),
	}
	for i, b := range s.Balances {
		bal := &api.MemberBalance{
			MemberID: b.MemberID,
			Name:     members.name(b.MemberID),
			Paid:     b.Paid,
			Share:    b.Share,
			Net:      b.Net,
		}
		if m, ok := members.byID[b.MemberID]; ok {
			bal.UserID = m.UserID
		}
		out.Balances[i] = bal
	}
	for i, t := range s.Transfers {
		out.Transfers[i] = &api.Transfer{
			FromMemberID: t.From,
			FromName:     members.name(t.From),
			ToMemberID:   t.To,
			ToName:       members.name(t.To),
			Amount:       t.Amount,
		}
	}
	return out
}

func toAPIRecords(records []*models.SettlementRecord, members *memberIndex) []*api.SettlementRecord {
	out := make([]*api.SettlementRecord, len(records))
	for i, r := range records {
		rec := &api.SettlementRecord{
			ID:               r.ID,
			UserID:           r.UserID,
			Month:            r.Month,
			SettlementAmount: r.SettlementAmount,
			IsFinalized:      r.IsFinalized,
			UpdatedAt:        r.UpdatedAt,
		}
		if m, ok := members.byUser[r.UserID]; ok {
			rec.Name = m.UserName
		}
		out[i] = rec
	}
	return out
}

func toAPIPayment(p *models.SettlementPayment, members *memberIndex) *api.Payment {
	return &api.Payment{
		ID:              p.ID,
		FromMemberID:    p.FromMemberID,
		FromName:        members.name(p.FromMemberID),
		ToMemberID:      p.ToMemberID,
		ToName:          members.name(p.ToMemberID),
		Amount:          p.Amount,
		PaidOn:          p.PaidOn,
		Note:            p.Note,
		CreatedByUserID: p.CreatedByUserID,
		CreatedAt:       p.CreatedAt,
	}
}
