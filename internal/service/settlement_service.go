package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/internal/calculator"
	"github.com/mmynk/ourledger/internal/events"
	"github.com/mmynk/ourledger/internal/metrics"
	"github.com/mmynk/ourledger/internal/models"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/pkg/api"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

var errNotFinalized = errors.New("month is not finalized")

// SettlementService implements the Connect SettlementService.
//
// Live months are recomputed from shared expenses on every read. Finalized
// months are read from their settlement records and never recomputed until
// the month is reopened.
type SettlementService struct {
	store   storage.Store
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewSettlementService creates a new SettlementService. m may be nil.
func NewSettlementService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *SettlementService {
	return &SettlementService{
		store:   store,
		events:  publisher,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// monthView is a month's settlement as currently stored or computed.
type monthView struct {
	month      string
	settlement *calculator.Settlement
	records    []*models.SettlementRecord
	finalized  bool
}

// GetSettlement returns the settlement of a month, the current one by default.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	month, err := resolveMonth(req.Msg.Month, s.now())
	if err != nil {
		return nil, err
	}
	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	view, err := s.loadMonth(ctx, member.HouseholdID, month, members)
	if err != nil {
		s.logger.Error("GetSettlement failed", "household_id", member.HouseholdID, "month", month, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetSettlementResponse{
		Settlement: toAPISettlement(month, view.finalized, view.settlement, members),
	}), nil
}

// SaveSettlement stores the month's current nets as draft records.
func (s *SettlementService) SaveSettlement(ctx context.Context, req *connect.Request[api.SaveSettlementRequest]) (*connect.Response[api.SaveSettlementResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	month, err := resolveMonth(req.Msg.Month, s.now())
	if err != nil {
		return nil, err
	}
	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	settlement, err := s.liveSettlement(ctx, member.HouseholdID, month, members)
	if err != nil {
		return nil, toConnectError(err)
	}
	records := recordsFor(settlement, members)
	if err := s.store.SaveSettlementRecords(ctx, member.HouseholdID, month, records, false); err != nil {
		s.logger.Warn("SaveSettlement failed", "household_id", member.HouseholdID, "month", month, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.SaveSettlementResponse{
		Settlement: toAPISettlement(month, false, settlement, members),
		Records:    toAPIRecords(records, members),
	}
	s.metrics.SettlementAction("saved")
	s.publish(ctx, events.New(events.SettlementSaved, member.HouseholdID, month, member.UserID, resp.Settlement))

	s.logger.Info("Settlement saved", "household_id", member.HouseholdID, "month", month)
	return connect.NewResponse(resp), nil
}

// FinalizeSettlement locks the month with its current nets. Finalizing a
// month that is already finalized returns the stored records unchanged.
func (s *SettlementService) FinalizeSettlement(ctx context.Context, req *connect.Request[api.FinalizeSettlementRequest]) (*connect.Response[api.FinalizeSettlementResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	month, err := resolveMonth(req.Msg.Month, s.now())
	if err != nil {
		return nil, err
	}
	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	view, err := s.loadMonth(ctx, member.HouseholdID, month, members)
	if err != nil {
		return nil, toConnectError(err)
	}
	if view.finalized {
		return s.alreadyFinalized(view, members), nil
	}

	// The records are computed from the expenses read inside the finalizing
	// transaction, not from view, so an entry written in between is covered.
	var settlement *calculator.Settlement
	records, err := s.store.FinalizeMonth(ctx, member.HouseholdID, month, func(expenses []*models.Entry) ([]*models.SettlementRecord, error) {
		var err error
		settlement, err = calculate(expenses, members)
		if err != nil {
			return nil, err
		}
		return recordsFor(settlement, members), nil
	})
	if errors.Is(err, storage.ErrMonthFinalized) {
		// Another request finalized the month first.
		view, err = s.loadMonth(ctx, member.HouseholdID, month, members)
		if err != nil {
			return nil, toConnectError(err)
		}
		return s.alreadyFinalized(view, members), nil
	}
	if err != nil {
		s.logger.Error("FinalizeSettlement failed", "household_id", member.HouseholdID, "month", month, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.FinalizeSettlementResponse{
		Settlement: toAPISettlement(month, true, settlement, members),
		Records:    toAPIRecords(records, members),
	}
	s.metrics.SettlementAction("finalized")
	s.publish(ctx, events.New(events.SettlementFinalized, member.HouseholdID, month, member.UserID, resp.Settlement))

	s.logger.Info("Settlement finalized", "household_id", member.HouseholdID, "month", month,
		"total_shared", settlement.TotalShared, "transfers", len(settlement.Transfers))
	return connect.NewResponse(resp), nil
}

func (s *SettlementService) alreadyFinalized(view *monthView, members *memberIndex) *connect.Response[api.FinalizeSettlementResponse] {
	return connect.NewResponse(&api.FinalizeSettlementResponse{
		Settlement:       toAPISettlement(view.month, true, view.settlement, members),
		Records:          toAPIRecords(view.records, members),
		AlreadyFinalized: true,
	})
}

// ReopenSettlement unlocks a finalized month. Its settlement is computed
// live again until the next finalize.
func (s *SettlementService) ReopenSettlement(ctx context.Context, req *connect.Request[api.ReopenSettlementRequest]) (*connect.Response[api.ReopenSettlementResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if req.Msg.Month == "" {
		return nil, invalidArgument("month is required")
	}
	month, err := resolveMonth(req.Msg.Month, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.ReopenMonth(ctx, member.HouseholdID, month)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("%s: %w", month, errNotFinalized))
	}
	if err != nil {
		s.logger.Error("ReopenSettlement failed", "household_id", member.HouseholdID, "month", month, "error", err)
		return nil, toConnectError(err)
	}

	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}
	settlement, err := s.liveSettlement(ctx, member.HouseholdID, month, members)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ReopenSettlementResponse{Settlement: toAPISettlement(month, false, settlement, members)}
	s.metrics.SettlementAction("reopened")
	s.publish(ctx, events.New(events.SettlementReopened, member.HouseholdID, month, member.UserID, nil))

	s.logger.Info("Settlement reopened", "household_id", member.HouseholdID, "month", month)
	return connect.NewResponse(resp), nil
}

// GetCumulativeSettlement returns every member's running balance over all
// months up to and including the requested one, net of recorded payments.
func (s *SettlementService) GetCumulativeSettlement(ctx context.Context, req *connect.Request[api.GetCumulativeSettlementRequest]) (*connect.Response[api.GetCumulativeSettlementResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	month, err := resolveMonth(req.Msg.Month, s.now())
	if err != nil {
		return nil, err
	}
	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances, err := s.cumulative(ctx, member.HouseholdID, month, members)
	if err != nil {
		s.logger.Error("GetCumulativeSettlement failed", "household_id", member.HouseholdID, "month", month, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetCumulativeSettlementResponse{Month: month, Balances: balances}), nil
}

func (s *SettlementService) cumulative(ctx context.Context, householdID, month string, members *memberIndex) ([]*api.CumulativeBalance, error) {
	_, monthEnd, err := models.MonthRange(month)
	if err != nil {
		return nil, err
	}
	shared := true
	entries, err := s.store.ListAllEntries(ctx, householdID, storage.EntryQuery{
		EntryFilter: models.EntryFilter{Types: []string{models.EntryExpense}, Shared: &shared},
		To:          monthEnd,
	})
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSettlementRecordsUpTo(ctx, householdID, month)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, householdID, month)
	if err != nil {
		return nil, err
	}

	entriesByMonth := make(map[string][]*models.Entry)
	for _, e := range entries {
		entriesByMonth[e.Month()] = append(entriesByMonth[e.Month()], e)
	}
	finalizedByMonth := make(map[string][]*models.SettlementRecord)
	for _, r := range records {
		if r.IsFinalized {
			finalizedByMonth[r.Month] = append(finalizedByMonth[r.Month], r)
		}
	}

	var months []calculator.MonthNet
	for m, recs := range finalizedByMonth {
		nets, err := recordNets(recs, members)
		if err != nil {
			return nil, err
		}
		months = append(months, calculator.MonthNet{Month: m, Nets: nets, Finalized: true})
	}
	for m, monthEntries := range entriesByMonth {
		if _, ok := finalizedByMonth[m]; ok {
			continue
		}
		settlement, err := calculate(monthEntries, members)
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", m, err)
		}
		nets := make(map[string]int64, len(settlement.Balances))
		for _, b := range settlement.Balances {
			nets[b.MemberID] = b.Net
		}
		months = append(months, calculator.MonthNet{Month: m, Nets: nets})
	}

	paid := make([]calculator.Payment, len(payments))
	for i, p := range payments {
		paid[i] = calculator.Payment{Month: p.Month(), From: p.FromMemberID, To: p.ToMemberID, Amount: p.Amount}
	}

	result, err := calculator.CalculateCumulative(months, paid)
	if err != nil {
		return nil, err
	}
	byParty := make(map[string]calculator.CumulativeBalance, len(result))
	for _, b := range result {
		byParty[b.PartyID] = b
	}

	out := make([]*api.CumulativeBalance, 0, len(members.members))
	for _, m := range members.members {
		b := byParty[m.ID]
		bal := &api.CumulativeBalance{
			MemberID: m.ID,
			UserID:   m.UserID,
			Name:     m.UserName,
			Balance:  b.Balance,
			History:  make([]*api.CumulativePoint, len(b.History)),
		}
		for i, p := range b.History {
			bal.History[i] = &api.CumulativePoint{
				Month:     p.Month,
				Net:       p.Net,
				Payments:  p.Payments,
				Running:   p.Running,
				Finalized: p.Finalized,
			}
		}
		out = append(out, bal)
	}
	return out, nil
}

// RecordPayment records money paid from one member to another.
func (s *SettlementService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.Amount <= 0 {
		return nil, invalidArgument("amount must be positive")
	}
	if msg.FromMemberID == msg.ToMemberID {
		return nil, invalidArgument("a member cannot pay themselves")
	}
	paidOn := msg.PaidOn
	if paidOn == "" {
		paidOn = s.now().Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, paidOn); err != nil {
		return nil, invalidArgument("paid_on must be YYYY-MM-DD, got %q", paidOn)
	}

	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}
	for _, id := range []string{msg.FromMemberID, msg.ToMemberID} {
		if _, ok := members.byID[id]; !ok {
			return nil, invalidArgument("%q is not a household member", id)
		}
	}

	payment := &models.SettlementPayment{
		HouseholdID:     member.HouseholdID,
		FromMemberID:    msg.FromMemberID,
		ToMemberID:      msg.ToMemberID,
		Amount:          msg.Amount,
		PaidOn:          paidOn,
		CreatedByUserID: member.UserID,
		Note:            msg.Note,
		CreatedAt:       s.now().Unix(),
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("RecordPayment failed", "household_id", member.HouseholdID, "error", err)
		return nil, toConnectError(err)
	}

	out := toAPIPayment(payment, members)
	s.metrics.PaymentAction("recorded")
	s.publish(ctx, events.New(events.PaymentRecorded, member.HouseholdID, payment.Month(), member.UserID, out))

	s.logger.Info("Payment recorded", "household_id", member.HouseholdID, "payment_id", payment.ID, "amount", payment.Amount)
	return connect.NewResponse(&api.RecordPaymentResponse{Payment: out}), nil
}

// ListPayments returns the household's payments, newest first.
func (s *SettlementService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if req.Msg.Month != "" {
		if _, err := resolveMonth(req.Msg.Month, s.now()); err != nil {
			return nil, err
		}
	}
	members, err := listMemberIndex(ctx, s.store, member.HouseholdID)
	if err != nil {
		return nil, toConnectError(err)
	}

	payments, err := s.store.ListPayments(ctx, member.HouseholdID, req.Msg.Month)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p, members)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

// DeletePayment removes a recorded payment.
func (s *SettlementService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	member, err := currentMember(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("payment id is required")
	}
	payment, err := s.store.GetPayment(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if payment.HouseholdID != member.HouseholdID {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if err := s.store.DeletePayment(ctx, payment.ID); err != nil {
		return nil, toConnectError(err)
	}

	s.metrics.PaymentAction("deleted")
	s.publish(ctx, events.New(events.PaymentDeleted, member.HouseholdID, payment.Month(), member.UserID, map[string]string{"payment_id": payment.ID}))

	s.logger.Info("Payment deleted", "household_id", member.HouseholdID, "payment_id", payment.ID)
	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}

// loadMonth returns the month's settlement: from its records if finalized,
// computed from shared expenses otherwise.
func (s *SettlementService) loadMonth(ctx context.Context, householdID, month string, members *memberIndex) (*monthView, error) {
	records, err := s.store.ListSettlementRecords(ctx, householdID, month)
	if err != nil {
		return nil, err
	}
	live, err := s.liveSettlement(ctx, householdID, month, members)
	if err != nil {
		return nil, err
	}

	view := &monthView{month: month, settlement: live, records: records}
	if len(records) == 0 || !records[0].IsFinalized {
		return view, nil
	}

	view.finalized = true
	view.settlement, err = finalizedSettlement(live, records, members)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *SettlementService) liveSettlement(ctx context.Context, householdID, month string, members *memberIndex) (*calculator.Settlement, error) {
	entries, err := s.store.ListSharedExpenses(ctx, householdID, month, month)
	if err != nil {
		return nil, err
	}
	return calculate(entries, members)
}

func (s *SettlementService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "household_id", event.HouseholdID, "error", err)
	}
}

// calculate splits shared expenses equally among the household members.
func calculate(entries []*models.Entry, members *memberIndex) (*calculator.Settlement, error) {
	expenses := make([]calculator.SharedExpense, len(entries))
	for i, e := range entries {
		expenses[i] = calculator.SharedExpense{PayerMemberID: e.PayerMemberID, Amount: e.Amount}
	}
	return calculator.CalculateSettlement(expenses, members.ids())
}

// finalizedSettlement rebuilds a finalized month from its records. The nets
// come from the records; what each member paid comes from the live
// computation, which the finalize lock keeps unchanged.
func finalizedSettlement(live *calculator.Settlement, records []*models.SettlementRecord, members *memberIndex) (*calculator.Settlement, error) {
	paid := make(map[string]int64, len(live.Balances))
	for _, b := range live.Balances {
		paid[b.MemberID] = b.Paid
	}
	nets, err := recordNets(records, members)
	if err != nil {
		return nil, err
	}

	result := &calculator.Settlement{
		MemberCount: len(nets),
		TotalShared: live.TotalShared,
	}
	if len(nets) > 0 {
		result.FairShare = live.TotalShared / int64(len(nets))
	}
	for id, net := range nets {
		result.Balances = append(result.Balances, calculator.MemberBalance{
			MemberID: id,
			Paid:     paid[id],
			Share:    paid[id] - net,
			Net:      net,
		})
	}
	sort.Slice(result.Balances, func(i, j int) bool {
		return result.Balances[i].MemberID < result.Balances[j].MemberID
	})

	result.Transfers, err = calculator.MinimizeTransfers(nets)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recordNets keys record amounts by member ID.
func recordNets(records []*models.SettlementRecord, members *memberIndex) (map[string]int64, error) {
	nets := make(map[string]int64, len(records))
	for _, r := range records {
		m, ok := members.byUser[r.UserID]
		if !ok {
			return nil, fmt.Errorf("settlement record %s belongs to user %s outside the household", r.ID, r.UserID)
		}
		nets[m.ID] = r.SettlementAmount
	}
	return nets, nil
}

// recordsFor turns a settlement into one record per member.
func recordsFor(settlement *calculator.Settlement, members *memberIndex) []*models.SettlementRecord {
	records := make([]*models.SettlementRecord, 0, len(settlement.Balances))
	for _, b := range settlement.Balances {
		records = append(records, &models.SettlementRecord{
			UserID:           members.byID[b.MemberID].UserID,
			SettlementAmount: b.Net,
		})
	}
	return records
}
