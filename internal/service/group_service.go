package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/currency"
	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/rpc"
	"github.com/MichealAPI/payly/internal/storage"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store    storage.Store
	balances *BalanceService
}

var _ rpc.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, balances *BalanceService) *GroupService {
	return &GroupService{store: store, balances: balances}
}

// normalizeCurrency upper-cases a currency code so "usd" and "USD" share a ledger.
// Codes outside ISO 4217 are kept as their own ledger but logged.
func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && !currency.Known(code) {
		slog.Warn("Unknown currency code", "currency", code)
	}
	return code
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[rpc.CreateGroupRequest]) (*connect.Response[rpc.CreateGroupResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberEmails),
		"user_id", userID,
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connectError(invalidArgument("name required"))
	}

	members, err := usersByEmail(ctx, s.store, req.Msg.MemberEmails)
	if err != nil {
		slog.Warn("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	group := &models.Group{
		Name:      name,
		Currency:  normalizeCurrency(req.Msg.Currency),
		Members:   dedupe(append([]string{userID}, members...)),
		CreatedBy: userID,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	msg, err := groupMessage(ctx, s.store, group)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&rpc.CreateGroupResponse{Group: msg}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[rpc.GetGroupRequest]) (*connect.Response[rpc.GetGroupResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	msg, err := groupMessage(ctx, s.store, group)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&rpc.GetGroupResponse{Group: msg}), nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[rpc.ListGroupsRequest]) (*connect.Response[rpc.ListGroupsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	msgs := make([]*rpc.Group, len(groups))
	for i, group := range groups {
		if msgs[i], err = groupMessage(ctx, s.store, group); err != nil {
			slog.Error("ListGroups failed", "group_id", group.ID, "error", err)
			return nil, connectError(err)
		}
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&rpc.ListGroupsResponse{Groups: msgs}), nil
}

// AddMembers adds registered users to a group the caller belongs to.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[rpc.AddMembersRequest]) (*connect.Response[rpc.AddMembersResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received", "group_id", req.Msg.GroupID, "count", len(req.Msg.Emails))

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		slog.Warn("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	if len(req.Msg.Emails) == 0 {
		return nil, connectError(invalidArgument("at least one email required"))
	}

	ids, err := usersByEmail(ctx, s.store, req.Msg.Emails)
	if err != nil {
		slog.Warn("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	if err := s.store.AddGroupMembers(ctx, req.Msg.GroupID, ids); err != nil {
		slog.Error("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	msg, err := groupMessage(ctx, s.store, group)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Members added", "group_id", group.ID, "members_count", len(group.Members))
	return connect.NewResponse(&rpc.AddMembersResponse{Group: msg}), nil
}

// DeleteGroup removes a group with its expenses and settlements. Only the
// group's creator may delete it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[rpc.DeleteGroupRequest]) (*connect.Response[rpc.DeleteGroupResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, connectError(err)
	}
	if group.CreatedBy != userID {
		return nil, connectError(ErrForbidden)
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&rpc.DeleteGroupResponse{}), nil
}

// GetGroupBalances returns the caller's view of who owes whom in the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[rpc.GetGroupBalancesRequest]) (*connect.Response[rpc.GetGroupBalancesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID, "user_id", userID)

	gb, err := s.balances.GroupBalances(ctx, groupID, userID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}

	summary := make([]*rpc.BalanceSummary, len(gb.Summary))
	for i, line := range gb.Summary {
		summary[i] = &rpc.BalanceSummary{
			UserID:      line.Member.ID,
			DisplayName: line.Member.Name,
			Currency:    line.Currency,
			Amount:      line.Amount,
			Message:     line.Message,
		}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"debts_count", len(gb.Debts),
		"user_owes_count", len(gb.UserOwes),
		"owed_to_user_count", len(gb.OwedToUser),
	)

	return connect.NewResponse(&rpc.GetGroupBalancesResponse{
		Result:  gb.Result,
		Debts:   gb.Debts,
		Ledgers: gb.Ledgers,
		Summary: summary,
	}), nil
}

// SettleUp records a payment from the caller to another member.
func (s *GroupService) SettleUp(ctx context.Context, req *connect.Request[rpc.SettleUpRequest]) (*connect.Response[rpc.SettleUpResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SettleUp request received",
		"group_id", req.Msg.GroupID,
		"from", userID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, connectError(err)
	}
	switch {
	case !validAmount(req.Msg.Amount):
		return nil, connectError(invalidArgument("amount must be positive and at most %.0f", maxAmount))
	case req.Msg.ToUserID == userID:
		return nil, connectError(invalidArgument("cannot settle with yourself"))
	case !group.HasMember(req.Msg.ToUserID):
		return nil, connectError(invalidArgument("recipient %q is not a group member", req.Msg.ToUserID))
	}

	code := normalizeCurrency(req.Msg.Currency)
	if code == "" {
		code = group.Currency
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: userID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		Currency:   code,
		Note:       strings.TrimSpace(req.Msg.Note),
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("SettleUp failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&rpc.SettleUpResponse{Settlement: settlementMessage(settlement)}), nil
}

// ListSettlements returns the group's settlements in the order they were recorded.
func (s *GroupService) ListSettlements(ctx context.Context, req *connect.Request[rpc.ListSettlementsRequest]) (*connect.Response[rpc.ListSettlementsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, connectError(err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	msgs := make([]*rpc.Settlement, len(settlements))
	for i, st := range settlements {
		msgs[i] = settlementMessage(st)
	}
	return connect.NewResponse(&rpc.ListSettlementsResponse{Settlements: msgs}), nil
}

// DeleteSettlement removes a settlement. Only its payer, its recipient or the
// member who recorded it may delete it.
func (s *GroupService) DeleteSettlement(ctx context.Context, req *connect.Request[rpc.DeleteSettlementRequest]) (*connect.Response[rpc.DeleteSettlementResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, connectError(err)
	}
	if _, err := memberGroup(ctx, s.store, settlement.GroupID, userID); err != nil {
		return nil, connectError(err)
	}
	if !settlement.Involves(userID) {
		return nil, connectError(ErrForbidden)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&rpc.DeleteSettlementResponse{}), nil
}

func settlementMessage(st *models.Settlement) *rpc.Settlement {
	return &rpc.Settlement{
		ID:         st.ID,
		GroupID:    st.GroupID,
		FromUserID: st.FromUserID,
		ToUserID:   st.ToUserID,
		Amount:     st.Amount,
		Currency:   st.Currency,
		Note:       st.Note,
		CreatedBy:  st.CreatedBy,
		CreatedAt:  st.CreatedAt,
	}
}

// dedupe drops repeated IDs, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
