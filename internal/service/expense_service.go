package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
}

// NewExpenseService creates an ExpenseService over the given ledger.
func NewExpenseService(l *ledger.Ledger) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// CreateExpense records an expense and its line items.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"pool_id", req.Msg.PoolID,
		"name", req.Msg.Name,
		"amount", req.Msg.Amount.StringFixed(2),
		"split_method", req.Msg.Split.Method,
		"members_count", len(req.Msg.Split.Members),
	)

	expense, err := s.ledger.CreateExpense(ctx, memberID, ledger.ExpenseInput{
		PoolID:      req.Msg.PoolID,
		PayerID:     req.Msg.PayerID,
		Name:        req.Msg.Name,
		Amount:      req.Msg.Amount,
		Category:    req.Msg.Category,
		Description: req.Msg.Description,
		Notes:       req.Msg.Notes,
		Split:       fromAPISplit(req.Msg.Split),
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns an expense with its line items.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.ledger.GetExpense(ctx, memberID, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an unsettled expense and its line items.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.ledger.UpdateExpense(ctx, memberID, req.Msg.ExpenseID, ledger.ExpenseInput{
		PayerID:     req.Msg.PayerID,
		Name:        req.Msg.Name,
		Amount:      req.Msg.Amount,
		Category:    req.Msg.Category,
		Description: req.Msg.Description,
		Notes:       req.Msg.Notes,
		Split:       fromAPISplit(req.Msg.Split),
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an unsettled expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := s.ledger.DeleteExpense(ctx, memberID, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the pool's expenses, newest first, with the caller's share.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := s.ledger.ListRecentExpenses(ctx, memberID, ledger.ExpenseQuery{
		PoolID:    req.Msg.PoolID,
		Category:  req.Msg.Category,
		PayerID:   req.Msg.PayerID,
		From:      req.Msg.From,
		To:        req.Msg.To,
		IsSettled: req.Msg.IsSettled,
		Limit:     req.Msg.Limit,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ListExpensesResponse{Expenses: make([]api.ExpenseSummary, len(summaries))}
	for i, sum := range summaries {
		resp.Expenses[i] = api.ExpenseSummary{
			Expense:   toAPIExpense(&sum.Expense),
			YourShare: sum.MemberShare,
		}
	}
	slog.Info("ListExpenses successful", "pool_id", req.Msg.PoolID, "count", len(summaries))
	return connect.NewResponse(resp), nil
}

// PreviewSplit computes line items without saving anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.ledger.PreviewSplit(ctx, memberID, req.Msg.PoolID, req.Msg.Amount, fromAPISplit(req.Msg.Split))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PreviewSplitResponse{LineItems: toAPILineItems(items)}), nil
}

// CreateCategoryRule appends a category rule for the caller.
func (s *ExpenseService) CreateCategoryRule(ctx context.Context, req *connect.Request[api.CreateCategoryRuleRequest]) (*connect.Response[api.CreateCategoryRuleResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateCategoryRule request received", "member_id", memberID, "category", req.Msg.Category)

	rule, err := s.ledger.CreateCategoryRule(ctx, memberID, req.Msg.Pattern, req.Msg.Category)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := toAPIRule(*rule)
	return connect.NewResponse(&api.CreateCategoryRuleResponse{Rule: &out}), nil
}

// ListCategoryRules returns the caller's rules in match order.
func (s *ExpenseService) ListCategoryRules(ctx context.Context, _ *connect.Request[api.ListCategoryRulesRequest]) (*connect.Response[api.ListCategoryRulesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := s.ledger.ListCategoryRules(ctx, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListCategoryRulesResponse{Rules: make([]api.CategoryRule, len(rules))}
	for i, r := range rules {
		resp.Rules[i] = toAPIRule(r)
	}
	return connect.NewResponse(resp), nil
}

// DeleteCategoryRule removes one of the caller's rules.
func (s *ExpenseService) DeleteCategoryRule(ctx context.Context, req *connect.Request[api.DeleteCategoryRuleRequest]) (*connect.Response[api.DeleteCategoryRuleResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteCategoryRule(ctx, memberID, req.Msg.RuleID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteCategoryRuleResponse{}), nil
}

// SuggestCategory classifies an expense name with the caller's rules.
func (s *ExpenseService) SuggestCategory(ctx context.Context, req *connect.Request[api.SuggestCategoryRequest]) (*connect.Response[api.SuggestCategoryResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}

	category, ok, err := s.ledger.SuggestCategory(ctx, memberID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SuggestCategoryResponse{Category: category, Found: ok}), nil
}
