package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "splitpool.v1.AuthService"

// Procedure names, usable as http.ServeMux patterns and in interceptors.
const (
	AuthServiceRegisterProcedure         = "/splitpool.v1.AuthService/Register"
	AuthServiceLoginProcedure            = "/splitpool.v1.AuthService/Login"
	AuthServiceGetCurrentMemberProcedure = "/splitpool.v1.AuthService/GetCurrentMember"
	AuthServiceUpdateProfileProcedure    = "/splitpool.v1.AuthService/UpdateProfile"
)

// AuthServiceClient is a client for the splitpool.v1.AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentMember(context.Context, *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
}

// NewAuthServiceClient constructs a client for the splitpool.v1.AuthService service. baseURL is the
// server root, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &authServiceClient{
		register:         connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opt),
		login:            connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opt),
		getCurrentMember: connect.NewClient[api.GetCurrentMemberRequest, api.GetCurrentMemberResponse](httpClient, baseURL+AuthServiceGetCurrentMemberProcedure, opt),
		updateProfile:    connect.NewClient[api.UpdateProfileRequest, api.UpdateProfileResponse](httpClient, baseURL+AuthServiceUpdateProfileProcedure, opt),
	}
}

type authServiceClient struct {
	register         *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login            *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentMember *connect.Client[api.GetCurrentMemberRequest, api.GetCurrentMemberResponse]
	updateProfile    *connect.Client[api.UpdateProfileRequest, api.UpdateProfileResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentMember(ctx context.Context, req *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error) {
	return c.getCurrentMember.CallUnary(ctx, req)
}

func (c *authServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the server side of the splitpool.v1.AuthService service.
// AuthService authenticates members and manages their profile.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentMember(context.Context, *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	return "/splitpool.v1.AuthService/", route(map[string]*connect.Handler{
		AuthServiceRegisterProcedure:         connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opt),
		AuthServiceLoginProcedure:            connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opt),
		AuthServiceGetCurrentMemberProcedure: connect.NewUnaryHandler(AuthServiceGetCurrentMemberProcedure, svc.GetCurrentMember, opt),
		AuthServiceUpdateProfileProcedure:    connect.NewUnaryHandler(AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opt),
	})
}
