package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "splitpool.v1.ExpenseService"

// Procedure names, usable as http.ServeMux patterns and in interceptors.
const (
	ExpenseServiceCreateExpenseProcedure      = "/splitpool.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure         = "/splitpool.v1.ExpenseService/GetExpense"
	ExpenseServiceUpdateExpenseProcedure      = "/splitpool.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure      = "/splitpool.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure       = "/splitpool.v1.ExpenseService/ListExpenses"
	ExpenseServicePreviewSplitProcedure       = "/splitpool.v1.ExpenseService/PreviewSplit"
	ExpenseServiceCreateCategoryRuleProcedure = "/splitpool.v1.ExpenseService/CreateCategoryRule"
	ExpenseServiceListCategoryRulesProcedure  = "/splitpool.v1.ExpenseService/ListCategoryRules"
	ExpenseServiceDeleteCategoryRuleProcedure = "/splitpool.v1.ExpenseService/DeleteCategoryRule"
	ExpenseServiceSuggestCategoryProcedure    = "/splitpool.v1.ExpenseService/SuggestCategory"
)

// ExpenseServiceClient is a client for the splitpool.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateCategoryRule(context.Context, *connect.Request[api.CreateCategoryRuleRequest]) (*connect.Response[api.CreateCategoryRuleResponse], error)
	ListCategoryRules(context.Context, *connect.Request[api.ListCategoryRulesRequest]) (*connect.Response[api.ListCategoryRulesResponse], error)
	DeleteCategoryRule(context.Context, *connect.Request[api.DeleteCategoryRuleRequest]) (*connect.Response[api.DeleteCategoryRuleResponse], error)
	SuggestCategory(context.Context, *connect.Request[api.SuggestCategoryRequest]) (*connect.Response[api.SuggestCategoryResponse], error)
}

// NewExpenseServiceClient constructs a client for the splitpool.v1.ExpenseService service. baseURL is the
// server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &expenseServiceClient{
		createExpense:      connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opt),
		getExpense:         connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opt),
		updateExpense:      connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opt),
		deleteExpense:      connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opt),
		listExpenses:       connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opt),
		previewSplit:       connect.NewClient[api.PreviewSplitRequest, api.PreviewSplitResponse](httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opt),
		createCategoryRule: connect.NewClient[api.CreateCategoryRuleRequest, api.CreateCategoryRuleResponse](httpClient, baseURL+ExpenseServiceCreateCategoryRuleProcedure, opt),
		listCategoryRules:  connect.NewClient[api.ListCategoryRulesRequest, api.ListCategoryRulesResponse](httpClient, baseURL+ExpenseServiceListCategoryRulesProcedure, opt),
		deleteCategoryRule: connect.NewClient[api.DeleteCategoryRuleRequest, api.DeleteCategoryRuleResponse](httpClient, baseURL+ExpenseServiceDeleteCategoryRuleProcedure, opt),
		suggestCategory:    connect.NewClient[api.SuggestCategoryRequest, api.SuggestCategoryResponse](httpClient, baseURL+ExpenseServiceSuggestCategoryProcedure, opt),
	}
}

type expenseServiceClient struct {
	createExpense      *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense         *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	updateExpense      *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	deleteExpense      *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses       *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	previewSplit       *connect.Client[api.PreviewSplitRequest, api.PreviewSplitResponse]
	createCategoryRule *connect.Client[api.CreateCategoryRuleRequest, api.CreateCategoryRuleResponse]
	listCategoryRules  *connect.Client[api.ListCategoryRulesRequest, api.ListCategoryRulesResponse]
	deleteCategoryRule *connect.Client[api.DeleteCategoryRuleRequest, api.DeleteCategoryRuleResponse]
	suggestCategory    *connect.Client[api.SuggestCategoryRequest, api.SuggestCategoryResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateCategoryRule(ctx context.Context, req *connect.Request[api.CreateCategoryRuleRequest]) (*connect.Response[api.CreateCategoryRuleResponse], error) {
	return c.createCategoryRule.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListCategoryRules(ctx context.Context, req *connect.Request[api.ListCategoryRulesRequest]) (*connect.Response[api.ListCategoryRulesResponse], error) {
	return c.listCategoryRules.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteCategoryRule(ctx context.Context, req *connect.Request[api.DeleteCategoryRuleRequest]) (*connect.Response[api.DeleteCategoryRuleResponse], error) {
	return c.deleteCategoryRule.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SuggestCategory(ctx context.Context, req *connect.Request[api.SuggestCategoryRequest]) (*connect.Response[api.SuggestCategoryResponse], error) {
	return c.suggestCategory.CallUnary(ctx, req)
}

// ExpenseServiceHandler is implemented by the server side of the splitpool.v1.ExpenseService service.
// ExpenseService manages the expense ledger and category rules.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateCategoryRule(context.Context, *connect.Request[api.CreateCategoryRuleRequest]) (*connect.Response[api.CreateCategoryRuleResponse], error)
	ListCategoryRules(context.Context, *connect.Request[api.ListCategoryRulesRequest]) (*connect.Response[api.ListCategoryRulesResponse], error)
	DeleteCategoryRule(context.Context, *connect.Request[api.DeleteCategoryRuleRequest]) (*connect.Response[api.DeleteCategoryRuleResponse], error)
	SuggestCategory(context.Context, *connect.Request[api.SuggestCategoryRequest]) (*connect.Response[api.SuggestCategoryResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	return "/splitpool.v1.ExpenseService/", route(map[string]*connect.Handler{
		ExpenseServiceCreateExpenseProcedure:      connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opt),
		ExpenseServiceGetExpenseProcedure:         connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opt),
		ExpenseServiceUpdateExpenseProcedure:      connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opt),
		ExpenseServiceDeleteExpenseProcedure:      connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opt),
		ExpenseServiceListExpensesProcedure:       connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opt),
		ExpenseServicePreviewSplitProcedure:       connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opt),
		ExpenseServiceCreateCategoryRuleProcedure: connect.NewUnaryHandler(ExpenseServiceCreateCategoryRuleProcedure, svc.CreateCategoryRule, opt),
		ExpenseServiceListCategoryRulesProcedure:  connect.NewUnaryHandler(ExpenseServiceListCategoryRulesProcedure, svc.ListCategoryRules, opt),
		ExpenseServiceDeleteCategoryRuleProcedure: connect.NewUnaryHandler(ExpenseServiceDeleteCategoryRuleProcedure, svc.DeleteCategoryRule, opt),
		ExpenseServiceSuggestCategoryProcedure:    connect.NewUnaryHandler(ExpenseServiceSuggestCategoryProcedure, svc.SuggestCategory, opt),
	})
}
