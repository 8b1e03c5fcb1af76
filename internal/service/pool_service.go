package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/internal/models"
	"github.com/mmynk/splitpool/pkg/api"
)

// PoolService implements the Connect PoolService.
type PoolService struct {
	ledger *ledger.Ledger
}

// NewPoolService creates a PoolService over the given ledger.
func NewPoolService(l *ledger.Ledger) *PoolService {
	return &PoolService{ledger: l}
}

// CreatePool creates a pool with the caller as its only member.
func (s *PoolService) CreatePool(ctx context.Context, req *connect.Request[api.CreatePoolRequest]) (*connect.Response[api.CreatePoolResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreatePool request received", "member_id", memberID, "name", req.Msg.Name)

	pool, err := s.ledger.CreatePool(ctx, memberID, req.Msg.Name, req.Msg.Description)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreatePoolResponse{Pool: toAPIPool(pool)}), nil
}

// GetPool returns a pool the caller belongs to.
func (s *PoolService) GetPool(ctx context.Context, req *connect.Request[api.GetPoolRequest]) (*connect.Response[api.GetPoolResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetPool request received", "pool_id", req.Msg.PoolID)

	pool, err := s.ledger.GetPool(ctx, memberID, req.Msg.PoolID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetPoolResponse{Pool: toAPIPool(pool)}), nil
}

// ListPools returns every pool the caller belongs to, newest first.
func (s *PoolService) ListPools(ctx context.Context, _ *connect.Request[api.ListPoolsRequest]) (*connect.Response[api.ListPoolsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	pools, err := s.ledger.ListPools(ctx, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListPoolsResponse{Pools: make([]*api.Pool, len(pools))}
	for i, p := range pools {
		resp.Pools[i] = toAPIPool(p)
	}
	slog.Info("ListPools successful", "member_id", memberID, "count", len(pools))
	return connect.NewResponse(resp), nil
}

// AddMember adds a registered member to the pool by id or email.
func (s *PoolService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "pool_id", req.Msg.PoolID, "new_member_id", req.Msg.MemberID)

	role := models.Role(req.Msg.Role)
	var membership *models.PoolMembership
	switch {
	case req.Msg.MemberID != "":
		membership, err = s.ledger.AddMember(ctx, memberID, req.Msg.PoolID, req.Msg.MemberID, role)
	case req.Msg.Email != "":
		membership, err = s.ledger.AddMemberByEmail(ctx, memberID, req.Msg.PoolID, req.Msg.Email, role)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("member id or email is required"))
	}
	if err != nil {
		return nil, toConnectError(err)
	}

	out := toAPIMembership(*membership)
	return connect.NewResponse(&api.AddMemberResponse{Membership: &out}), nil
}

// RemoveMember removes a member who has no open obligations in the pool.
func (s *PoolService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "pool_id", req.Msg.PoolID, "removed_id", req.Msg.MemberID)

	if err := s.ledger.RemoveMember(ctx, memberID, req.Msg.PoolID, req.Msg.MemberID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// UpdateDefaultSplits sets members' default split percentages.
func (s *PoolService) UpdateDefaultSplits(ctx context.Context, req *connect.Request[api.UpdateDefaultSplitsRequest]) (*connect.Response[api.UpdateDefaultSplitsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateDefaultSplits request received", "pool_id", req.Msg.PoolID, "splits_count", len(req.Msg.Splits))

	splits := make(map[string]decimal.Decimal, len(req.Msg.Splits))
	for _, sp := range req.Msg.Splits {
		if _, dup := splits[sp.MemberID]; dup {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("member %s listed twice", sp.MemberID))
		}
		splits[sp.MemberID] = sp.Percentage
	}

	pool, err := s.ledger.UpdateDefaultSplits(ctx, memberID, req.Msg.PoolID, splits)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateDefaultSplitsResponse{Pool: toAPIPool(pool)}), nil
}

// GetBalances returns the caller's net balance with every other member.
func (s *PoolService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	balances, err := s.ledger.GetBalances(ctx, memberID, req.Msg.PoolID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// GetPoolSummary returns every member's totals and suggested transfers.
func (s *PoolService) GetPoolSummary(ctx context.Context, req *connect.Request[api.GetPoolSummaryRequest]) (*connect.Response[api.GetPoolSummaryResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.ledger.GetPoolSummary(ctx, memberID, req.Msg.PoolID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toAPISummary(summary)), nil
}

// SettlePool marks every unsettled line item in the pool as settled.
func (s *PoolService) SettlePool(ctx context.Context, req *connect.Request[api.SettlePoolRequest]) (*connect.Response[api.SettlePoolResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SettlePool request received", "pool_id", req.Msg.PoolID, "member_id", memberID)

	settlement, err := s.ledger.SettlePool(ctx, memberID, req.Msg.PoolID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SettlePoolResponse{
		SettlementID: settlement.ID,
		SettledCount: settlement.LineItemCount,
		TotalAmount:  settlement.TotalAmount,
	}), nil
}

// ListSettlements returns the pool's settle ups, newest first.
func (s *PoolService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListSettlements(ctx, memberID, req.Msg.PoolID)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListSettlementsResponse{Settlements: make([]api.Settlement, len(settlements))}
	for i, st := range settlements {
		resp.Settlements[i] = toAPISettlement(st)
	}
	return connect.NewResponse(resp), nil
}

// ListActivity returns the pool's most recent activity events.
func (s *PoolService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.ledger.ListActivity(ctx, memberID, req.Msg.PoolID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListActivityResponse{Events: make([]api.ActivityEvent, len(events))}
	for i, e := range events {
		resp.Events[i] = toAPIEvent(e)
	}
	return connect.NewResponse(resp), nil
}
