package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/pkg/api"
)

// PoolServiceName is the fully-qualified name of the PoolService service.
const PoolServiceName = "splitpool.v1.PoolService"

// Procedure names, usable as http.ServeMux patterns and in interceptors.
const (
	PoolServiceCreatePoolProcedure          = "/splitpool.v1.PoolService/CreatePool"
	PoolServiceGetPoolProcedure             = "/splitpool.v1.PoolService/GetPool"
	PoolServiceListPoolsProcedure           = "/splitpool.v1.PoolService/ListPools"
	PoolServiceAddMemberProcedure           = "/splitpool.v1.PoolService/AddMember"
	PoolServiceRemoveMemberProcedure        = "/splitpool.v1.PoolService/RemoveMember"
	PoolServiceUpdateDefaultSplitsProcedure = "/splitpool.v1.PoolService/UpdateDefaultSplits"
	PoolServiceGetBalancesProcedure         = "/splitpool.v1.PoolService/GetBalances"
	PoolServiceGetPoolSummaryProcedure      = "/splitpool.v1.PoolService/GetPoolSummary"
	PoolServiceSettlePoolProcedure          = "/splitpool.v1.PoolService/SettlePool"
	PoolServiceListSettlementsProcedure     = "/splitpool.v1.PoolService/ListSettlements"
	PoolServiceListActivityProcedure        = "/splitpool.v1.PoolService/ListActivity"
)

// PoolServiceClient is a client for the splitpool.v1.PoolService service.
type PoolServiceClient interface {
	CreatePool(context.Context, *connect.Request[api.CreatePoolRequest]) (*connect.Response[api.CreatePoolResponse], error)
	GetPool(context.Context, *connect.Request[api.GetPoolRequest]) (*connect.Response[api.GetPoolResponse], error)
	ListPools(context.Context, *connect.Request[api.ListPoolsRequest]) (*connect.Response[api.ListPoolsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	UpdateDefaultSplits(context.Context, *connect.Request[api.UpdateDefaultSplitsRequest]) (*connect.Response[api.UpdateDefaultSplitsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetPoolSummary(context.Context, *connect.Request[api.GetPoolSummaryRequest]) (*connect.Response[api.GetPoolSummaryResponse], error)
	SettlePool(context.Context, *connect.Request[api.SettlePoolRequest]) (*connect.Response[api.SettlePoolResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
}

// NewPoolServiceClient constructs a client for the splitpool.v1.PoolService service. baseURL is the
// server root, e.g. http://localhost:8080.
func NewPoolServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PoolServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &poolServiceClient{
		createPool:          connect.NewClient[api.CreatePoolRequest, api.CreatePoolResponse](httpClient, baseURL+PoolServiceCreatePoolProcedure, opt),
		getPool:             connect.NewClient[api.GetPoolRequest, api.GetPoolResponse](httpClient, baseURL+PoolServiceGetPoolProcedure, opt),
		listPools:           connect.NewClient[api.ListPoolsRequest, api.ListPoolsResponse](httpClient, baseURL+PoolServiceListPoolsProcedure, opt),
		addMember:           connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+PoolServiceAddMemberProcedure, opt),
		removeMember:        connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+PoolServiceRemoveMemberProcedure, opt),
		updateDefaultSplits: connect.NewClient[api.UpdateDefaultSplitsRequest, api.UpdateDefaultSplitsResponse](httpClient, baseURL+PoolServiceUpdateDefaultSplitsProcedure, opt),
		getBalances:         connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+PoolServiceGetBalancesProcedure, opt),
		getPoolSummary:      connect.NewClient[api.GetPoolSummaryRequest, api.GetPoolSummaryResponse](httpClient, baseURL+PoolServiceGetPoolSummaryProcedure, opt),
		settlePool:          connect.NewClient[api.SettlePoolRequest, api.SettlePoolResponse](httpClient, baseURL+PoolServiceSettlePoolProcedure, opt),
		listSettlements:     connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+PoolServiceListSettlementsProcedure, opt),
		listActivity:        connect.NewClient[api.ListActivityRequest, api.ListActivityResponse](httpClient, baseURL+PoolServiceListActivityProcedure, opt),
	}
}

type poolServiceClient struct {
	createPool          *connect.Client[api.CreatePoolRequest, api.CreatePoolResponse]
	getPool             *connect.Client[api.GetPoolRequest, api.GetPoolResponse]
	listPools           *connect.Client[api.ListPoolsRequest, api.ListPoolsResponse]
	addMember           *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember        *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	updateDefaultSplits *connect.Client[api.UpdateDefaultSplitsRequest, api.UpdateDefaultSplitsResponse]
	getBalances         *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getPoolSummary      *connect.Client[api.GetPoolSummaryRequest, api.GetPoolSummaryResponse]
	settlePool          *connect.Client[api.SettlePoolRequest, api.SettlePoolResponse]
	listSettlements     *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	listActivity        *connect.Client[api.ListActivityRequest, api.ListActivityResponse]
}

func (c *poolServiceClient) CreatePool(ctx context.Context, req *connect.Request[api.CreatePoolRequest]) (*connect.Response[api.CreatePoolResponse], error) {
	return c.createPool.CallUnary(ctx, req)
}

func (c *poolServiceClient) GetPool(ctx context.Context, req *connect.Request[api.GetPoolRequest]) (*connect.Response[api.GetPoolResponse], error) {
	return c.getPool.CallUnary(ctx, req)
}

func (c *poolServiceClient) ListPools(ctx context.Context, req *connect.Request[api.ListPoolsRequest]) (*connect.Response[api.ListPoolsResponse], error) {
	return c.listPools.CallUnary(ctx, req)
}

func (c *poolServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *poolServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *poolServiceClient) UpdateDefaultSplits(ctx context.Context, req *connect.Request[api.UpdateDefaultSplitsRequest]) (*connect.Response[api.UpdateDefaultSplitsResponse], error) {
	return c.updateDefaultSplits.CallUnary(ctx, req)
}

func (c *poolServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *poolServiceClient) GetPoolSummary(ctx context.Context, req *connect.Request[api.GetPoolSummaryRequest]) (*connect.Response[api.GetPoolSummaryResponse], error) {
	return c.getPoolSummary.CallUnary(ctx, req)
}

func (c *poolServiceClient) SettlePool(ctx context.Context, req *connect.Request[api.SettlePoolRequest]) (*connect.Response[api.SettlePoolResponse], error) {
	return c.settlePool.CallUnary(ctx, req)
}

func (c *poolServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *poolServiceClient) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

// PoolServiceHandler is implemented by the server side of the splitpool.v1.PoolService service.
// PoolService manages pools, memberships, balances and settle ups.
type PoolServiceHandler interface {
	CreatePool(context.Context, *connect.Request[api.CreatePoolRequest]) (*connect.Response[api.CreatePoolResponse], error)
	GetPool(context.Context, *connect.Request[api.GetPoolRequest]) (*connect.Response[api.GetPoolResponse], error)
	ListPools(context.Context, *connect.Request[api.ListPoolsRequest]) (*connect.Response[api.ListPoolsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	UpdateDefaultSplits(context.Context, *connect.Request[api.UpdateDefaultSplitsRequest]) (*connect.Response[api.UpdateDefaultSplitsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetPoolSummary(context.Context, *connect.Request[api.GetPoolSummaryRequest]) (*connect.Response[api.GetPoolSummaryResponse], error)
	SettlePool(context.Context, *connect.Request[api.SettlePoolRequest]) (*connect.Response[api.SettlePoolResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
}

// NewPoolServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPoolServiceHandler(svc PoolServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	return "/splitpool.v1.PoolService/", route(map[string]*connect.Handler{
		PoolServiceCreatePoolProcedure:          connect.NewUnaryHandler(PoolServiceCreatePoolProcedure, svc.CreatePool, opt),
		PoolServiceGetPoolProcedure:             connect.NewUnaryHandler(PoolServiceGetPoolProcedure, svc.GetPool, opt),
		PoolServiceListPoolsProcedure:           connect.NewUnaryHandler(PoolServiceListPoolsProcedure, svc.ListPools, opt),
		PoolServiceAddMemberProcedure:           connect.NewUnaryHandler(PoolServiceAddMemberProcedure, svc.AddMember, opt),
		PoolServiceRemoveMemberProcedure:        connect.NewUnaryHandler(PoolServiceRemoveMemberProcedure, svc.RemoveMember, opt),
		PoolServiceUpdateDefaultSplitsProcedure: connect.NewUnaryHandler(PoolServiceUpdateDefaultSplitsProcedure, svc.UpdateDefaultSplits, opt),
		PoolServiceGetBalancesProcedure:         connect.NewUnaryHandler(PoolServiceGetBalancesProcedure, svc.GetBalances, opt),
		PoolServiceGetPoolSummaryProcedure:      connect.NewUnaryHandler(PoolServiceGetPoolSummaryProcedure, svc.GetPoolSummary, opt),
		PoolServiceSettlePoolProcedure:          connect.NewUnaryHandler(PoolServiceSettlePoolProcedure, svc.SettlePool, opt),
		PoolServiceListSettlementsProcedure:     connect.NewUnaryHandler(PoolServiceListSettlementsProcedure, svc.ListSettlements, opt),
		PoolServiceListActivityProcedure:        connect.NewUnaryHandler(PoolServiceListActivityProcedure, svc.ListActivity, opt),
	})
}
