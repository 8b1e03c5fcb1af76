package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitpool/internal/auth"
	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/internal/metrics"
	"github.com/mmynk/splitpool/internal/middleware"
	"github.com/mmynk/splitpool/internal/storage/sqlite"
	"github.com/mmynk/splitpool/pkg/api"
	"github.com/mmynk/splitpool/pkg/api/apiconnect"
)

type testServer struct {
	auth     apiconnect.AuthServiceClient
	pools    apiconnect.PoolServiceClient
	expenses apiconnect.ExpenseServiceClient
	metrics  *metrics.Registry
}

// setupTestServer starts the three services behind the production interceptor
// chain on a fresh database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "splitpool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := metrics.NewRegistry()
	l := ledger.New(store, ledger.WithMetrics(reg))
	jwtManager := auth.NewJWTManager("service-test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticatorWithCost(store, bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(
		reg.Interceptor(),
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, l, logger), interceptors))
	mux.Handle(apiconnect.NewPoolServiceHandler(NewPoolService(l), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		pools:    apiconnect.NewPoolServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		metrics:  reg,
	}
}

// register creates a member and returns its id and bearer token.
func (s *testServer) register(t *testing.T, email, firstName string) (string, string) {
	t.Helper()
	resp, err := s.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:     email,
		FirstName: firstName,
		Password:  "correct horse",
	}))
	require.NoError(t, err)
	return resp.Msg.Member.ID, resp.Msg.Token
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func amounts(items []api.LineItem) []string {
	out := make([]string, len(items))
	for i, li := range items {
		out[i] = li.Amount.StringFixed(2)
	}
	return out
}

func weight(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestAuthService(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	aliceID, token := s.register(t, "Alice@Example.com", "Alice")

	t.Run("login", func(t *testing.T) {
		resp, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "correct horse",
		}))
		require.NoError(t, err)
		assert.Equal(t, aliceID, resp.Msg.Member.ID)
		assert.NotEmpty(t, resp.Msg.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong password",
		}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:     "alice@example.com",
			FirstName: "Alice",
			Password:  "correct horse",
		}))
		assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:     "bob@example.com",
			FirstName: "Bob",
			Password:  "short",
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("current member", func(t *testing.T) {
		resp, err := s.auth.GetCurrentMember(ctx, withToken(token, &api.GetCurrentMemberRequest{}))
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", resp.Msg.Member.Email)
		assert.Equal(t, "Alice", resp.Msg.Member.FirstName)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := s.auth.GetCurrentMember(ctx, connect.NewRequest(&api.GetCurrentMemberRequest{}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := s.auth.GetCurrentMember(ctx, withToken("not-a-jwt", &api.GetCurrentMemberRequest{}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("update profile", func(t *testing.T) {
		handle := "@alice"
		resp, err := s.auth.UpdateProfile(ctx, withToken(token, &api.UpdateProfileRequest{PaymentHandle: &handle}))
		require.NoError(t, err)
		assert.Equal(t, "@alice", resp.Msg.Member.PaymentHandle)
		assert.Equal(t, "Alice", resp.Msg.Member.FirstName)

		blank := " "
		_, err = s.auth.UpdateProfile(ctx, withToken(token, &api.UpdateProfileRequest{FirstName: &blank}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

// poolOfThree registers three members and puts them in one pool created by the first.
func poolOfThree(t *testing.T, s *testServer) (pool *api.Pool, ids, tokens []string) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		id, token := s.register(t, name+"@example.com", name)
		ids = append(ids, id)
		tokens = append(tokens, token)
	}

	created, err := s.pools.CreatePool(ctx, withToken(tokens[0], &api.CreatePoolRequest{Name: "Roommates"}))
	require.NoError(t, err)

	_, err = s.pools.AddMember(ctx, withToken(tokens[0], &api.AddMemberRequest{
		PoolID: created.Msg.Pool.ID,
		Email:  "BOB@example.com",
	}))
	require.NoError(t, err)
	_, err = s.pools.AddMember(ctx, withToken(tokens[0], &api.AddMemberRequest{
		PoolID:   created.Msg.Pool.ID,
		MemberID: ids[2],
	}))
	require.NoError(t, err)

	got, err := s.pools.GetPool(ctx, withToken(tokens[0], &api.GetPoolRequest{PoolID: created.Msg.Pool.ID}))
	require.NoError(t, err)
	return got.Msg.Pool, ids, tokens
}

func TestPoolService_Membership(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	pool, ids, tokens := poolOfThree(t, s)

	require.Len(t, pool.Members, 3)
	assert.Equal(t, ids[0], pool.Members[0].MemberID)
	assert.Equal(t, "admin", pool.Members[0].Role)
	assert.Equal(t, "alice", pool.Members[0].DisplayName)
	assert.Equal(t, "bob", pool.Members[1].DisplayName)
	assert.Equal(t, "100", pool.Members[0].DefaultSplitPercentage.String())
	assert.Equal(t, "member", pool.Members[1].Role)

	t.Run("outsider cannot see the pool", func(t *testing.T) {
		_, outsider := s.register(t, "dave@example.com", "Dave")
		_, err := s.pools.GetPool(ctx, withToken(outsider, &api.GetPoolRequest{PoolID: pool.ID}))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	t.Run("add requires id or email", func(t *testing.T) {
		_, err := s.pools.AddMember(ctx, withToken(tokens[0], &api.AddMemberRequest{PoolID: pool.ID}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("add twice", func(t *testing.T) {
		_, err := s.pools.AddMember(ctx, withToken(tokens[0], &api.AddMemberRequest{PoolID: pool.ID, MemberID: ids[1]}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})

	t.Run("only admins manage membership", func(t *testing.T) {
		_, err := s.pools.AddMember(ctx, withToken(tokens[1], &api.AddMemberRequest{PoolID: pool.ID, MemberID: ids[2]}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

		_, err = s.pools.RemoveMember(ctx, withToken(tokens[1], &api.RemoveMemberRequest{PoolID: pool.ID, MemberID: ids[2]}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

		_, err = s.pools.UpdateDefaultSplits(ctx, withToken(tokens[1], &api.UpdateDefaultSplitsRequest{
			PoolID: pool.ID,
			Splits: []api.DefaultSplit{{MemberID: ids[1], Percentage: decimal.Zero}},
		}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("list pools", func(t *testing.T) {
		resp, err := s.pools.ListPools(ctx, withToken(tokens[1], &api.ListPoolsRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Pools, 1)
		assert.Equal(t, pool.ID, resp.Msg.Pools[0].ID)
	})

	t.Run("default splits must total 100", func(t *testing.T) {
		_, err := s.pools.UpdateDefaultSplits(ctx, withToken(tokens[0], &api.UpdateDefaultSplitsRequest{
			PoolID: pool.ID,
			Splits: []api.DefaultSplit{{MemberID: ids[0], Percentage: decimal.NewFromInt(50)}},
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

		_, err = s.pools.UpdateDefaultSplits(ctx, withToken(tokens[0], &api.UpdateDefaultSplitsRequest{
			PoolID: pool.ID,
			Splits: []api.DefaultSplit{
				{MemberID: ids[0], Percentage: decimal.NewFromInt(50)},
				{MemberID: ids[0], Percentage: decimal.NewFromInt(50)},
			},
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

		resp, err := s.pools.UpdateDefaultSplits(ctx, withToken(tokens[0], &api.UpdateDefaultSplitsRequest{
			PoolID: pool.ID,
			Splits: []api.DefaultSplit{
				{MemberID: ids[0], Percentage: decimal.NewFromInt(50)},
				{MemberID: ids[1], Percentage: decimal.NewFromInt(50)},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, "50", resp.Msg.Pool.Members[1].DefaultSplitPercentage.String())
	})

	t.Run("remove member with a default share", func(t *testing.T) {
		_, err := s.pools.RemoveMember(ctx, withToken(tokens[0], &api.RemoveMemberRequest{PoolID: pool.ID, MemberID: ids[1]}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

		_, err = s.pools.RemoveMember(ctx, withToken(tokens[0], &api.RemoveMemberRequest{PoolID: pool.ID, MemberID: ids[2]}))
		require.NoError(t, err)

		resp, err := s.pools.GetPool(ctx, withToken(tokens[0], &api.GetPoolRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Pool.Members, 2)
	})
}

func TestExpenseService_SplitAndSettle(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	pool, ids, tokens := poolOfThree(t, s)
	alice, bob, carol := ids[0], ids[1], ids[2]

	created, err := s.expenses.CreateExpense(ctx, withToken(tokens[0], &api.CreateExpenseRequest{
		PoolID:  pool.ID,
		PayerID: alice,
		Name:    "Groceries",
		Amount:  decimal.NewFromInt(100),
	}))
	require.NoError(t, err)
	expense := created.Msg.Expense
	assert.Equal(t, "equal", expense.SplitMethod)
	assert.Equal(t, []string{"33.34", "33.33", "33.33"}, amounts(expense.LineItems))

	t.Run("amount split that does not add up", func(t *testing.T) {
		_, err := s.expenses.CreateExpense(ctx, withToken(tokens[1], &api.CreateExpenseRequest{
			PoolID:  pool.ID,
			PayerID: bob,
			Name:    "Dinner",
			Amount:  decimal.NewFromInt(100),
			Split: api.Split{Method: "amount", Members: []api.SplitMember{
				{MemberID: alice, Weight: weight("50")},
				{MemberID: bob, Weight: weight("40")},
			}},
		}))
		require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, "100.00", connectErr.Meta().Get(SplitExpectedKey))
		assert.Equal(t, "90.00", connectErr.Meta().Get(SplitComputedKey))
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SplitRejections.WithLabelValues("amount")))
	})

	t.Run("preview percentage split", func(t *testing.T) {
		resp, err := s.expenses.PreviewSplit(ctx, withToken(tokens[2], &api.PreviewSplitRequest{
			PoolID: pool.ID,
			Amount: decimal.NewFromInt(50),
			Split: api.Split{Method: "percentage", Members: []api.SplitMember{
				{MemberID: bob, Weight: weight("60")},
				{MemberID: carol, Weight: weight("40")},
			}},
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"30.00", "20.00"}, amounts(resp.Msg.LineItems))
	})

	t.Run("balances", func(t *testing.T) {
		resp, err := s.pools.GetBalances(ctx, withToken(tokens[1], &api.GetBalancesRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Balances, 1)
		assert.Equal(t, alice, resp.Msg.Balances[0].OtherMemberID)
		assert.Equal(t, "-33.33", resp.Msg.Balances[0].Amount.StringFixed(2))
		assert.Equal(t, "outbound", resp.Msg.Balances[0].Direction)

		summary, err := s.pools.GetPoolSummary(ctx, withToken(tokens[0], &api.GetPoolSummaryRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		assert.Len(t, summary.Msg.Balances, 3)
		for _, b := range summary.Msg.Balances {
			assert.NotEmpty(t, b.DisplayName, b.MemberID)
		}
		assert.Len(t, summary.Msg.Transfers, 2)
		for _, tr := range summary.Msg.Transfers {
			assert.Equal(t, alice, tr.To)
		}
	})

	t.Run("list expenses with own share", func(t *testing.T) {
		resp, err := s.expenses.ListExpenses(ctx, withToken(tokens[2], &api.ListExpensesRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Expenses, 1)
		assert.Equal(t, expense.ID, resp.Msg.Expenses[0].Expense.ID)
		assert.Equal(t, "33.33", resp.Msg.Expenses[0].YourShare.StringFixed(2))
	})

	t.Run("settle", func(t *testing.T) {
		resp, err := s.pools.SettlePool(ctx, withToken(tokens[1], &api.SettlePoolRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Msg.SettledCount)
		assert.Equal(t, "100.00", resp.Msg.TotalAmount.StringFixed(2))

		again, err := s.pools.SettlePool(ctx, withToken(tokens[1], &api.SettlePoolRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		assert.Zero(t, again.Msg.SettledCount)
		assert.Empty(t, again.Msg.SettlementID)

		balances, err := s.pools.GetBalances(ctx, withToken(tokens[1], &api.GetBalancesRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		assert.Empty(t, balances.Msg.Balances)

		settlements, err := s.pools.ListSettlements(ctx, withToken(tokens[0], &api.ListSettlementsRequest{PoolID: pool.ID}))
		require.NoError(t, err)
		require.Len(t, settlements.Msg.Settlements, 1)
		assert.Equal(t, bob, settlements.Msg.Settlements[0].SettledBy)
	})

	t.Run("settled expense is frozen", func(t *testing.T) {
		_, err := s.expenses.DeleteExpense(ctx, withToken(tokens[0], &api.DeleteExpenseRequest{ExpenseID: expense.ID}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

		got, err := s.expenses.GetExpense(ctx, withToken(tokens[0], &api.GetExpenseRequest{ExpenseID: expense.ID}))
		require.NoError(t, err)
		assert.True(t, got.Msg.Expense.IsSettled)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ExpensesCreated.WithLabelValues("equal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PoolsSettled))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.RPCRequests.WithLabelValues(
		apiconnect.PoolServiceSettlePoolProcedure, "ok")))
}

func TestExpenseService_UpdateDelete(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	pool, ids, tokens := poolOfThree(t, s)

	created, err := s.expenses.CreateExpense(ctx, withToken(tokens[0], &api.CreateExpenseRequest{
		PoolID:   pool.ID,
		PayerID:  ids[0],
		Name:     "Rent",
		Amount:   decimal.NewFromInt(10),
		Category: "housing",
		Split:    api.Split{Method: "default"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.00"}, amounts(created.Msg.Expense.LineItems))

	updated, err := s.expenses.UpdateExpense(ctx, withToken(tokens[1], &api.UpdateExpenseRequest{
		ExpenseID: created.Msg.Expense.ID,
		PayerID:   ids[1],
		Name:      "Rent",
		Amount:    decimal.NewFromInt(10),
		Category:  "housing",
	}))
	require.NoError(t, err)
	assert.Equal(t, ids[1], updated.Msg.Expense.PayerID)
	assert.Equal(t, []string{"3.34", "3.33", "3.33"}, amounts(updated.Msg.Expense.LineItems))

	_, err = s.expenses.UpdateExpense(ctx, withToken(tokens[1], &api.UpdateExpenseRequest{
		ExpenseID: created.Msg.Expense.ID,
		PayerID:   ids[1],
		Name:      " ",
		Amount:    decimal.NewFromInt(10),
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = s.expenses.DeleteExpense(ctx, withToken(tokens[2], &api.DeleteExpenseRequest{ExpenseID: created.Msg.Expense.ID}))
	require.NoError(t, err)

	_, err = s.expenses.GetExpense(ctx, withToken(tokens[2], &api.GetExpenseRequest{ExpenseID: created.Msg.Expense.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	activity, err := s.pools.ListActivity(ctx, withToken(tokens[0], &api.ListActivityRequest{PoolID: pool.ID}))
	require.NoError(t, err)
	assert.Empty(t, activity.Msg.Events, "no recorder is wired in this server")
}

func TestExpenseService_CategoryRules(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	_, token := s.register(t, "alice@example.com", "Alice")

	rule, err := s.expenses.CreateCategoryRule(ctx, withToken(token, &api.CreateCategoryRuleRequest{
		Pattern:  `\b(uber|lyft)\b`,
		Category: "transport",
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, rule.Msg.Rule.Position)

	_, err = s.expenses.CreateCategoryRule(ctx, withToken(token, &api.CreateCategoryRuleRequest{Pattern: "x"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	suggested, err := s.expenses.SuggestCategory(ctx, withToken(token, &api.SuggestCategoryRequest{Name: "Uber to airport"}))
	require.NoError(t, err)
	assert.True(t, suggested.Msg.Found)
	assert.Equal(t, "transport", suggested.Msg.Category)

	miss, err := s.expenses.SuggestCategory(ctx, withToken(token, &api.SuggestCategoryRequest{Name: "Groceries"}))
	require.NoError(t, err)
	assert.False(t, miss.Msg.Found)

	_, err = s.expenses.DeleteCategoryRule(ctx, withToken(token, &api.DeleteCategoryRuleRequest{RuleID: rule.Msg.Rule.ID}))
	require.NoError(t, err)

	rules, err := s.expenses.ListCategoryRules(ctx, withToken(token, &api.ListCategoryRulesRequest{}))
	require.NoError(t, err)
	assert.Empty(t, rules.Msg.Rules)

	_, err = s.expenses.DeleteCategoryRule(ctx, withToken(token, &api.DeleteCategoryRuleRequest{RuleID: rule.Msg.Rule.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}
