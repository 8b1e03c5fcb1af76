package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/internal/auth"
	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	ledger        *ledger.Ledger
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, l *ledger.Ledger, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		ledger:        l,
		logger:        logger,
	}
}

// Register creates a new member account and signs them in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	member, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.FirstName, req.Msg.LastName, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, authError(err)
	}

	token, err := s.jwtManager.Generate(member)
	if err != nil {
		s.logger.Error("Failed to generate token", "member_id", member.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Member registered", "member_id", member.ID)
	return connect.NewResponse(&api.RegisterResponse{Member: toAPIMember(member), Token: token}), nil
}

// Login authenticates a member and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	member, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, authError(err)
	}

	token, err := s.jwtManager.Generate(member)
	if err != nil {
		s.logger.Error("Failed to generate token", "member_id", member.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Member logged in", "member_id", member.ID)
	return connect.NewResponse(&api.LoginResponse{Member: toAPIMember(member), Token: token}), nil
}

// GetCurrentMember returns the authenticated member's profile.
func (s *AuthService) GetCurrentMember(ctx context.Context, _ *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	member, err := s.ledger.GetMember(ctx, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetCurrentMemberResponse{Member: toAPIMember(member)}), nil
}

// UpdateProfile changes the authenticated member's profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("UpdateProfile request", "member_id", memberID)

	member, err := s.ledger.UpdateProfile(ctx, memberID, ledger.ProfileUpdate{
		FirstName:     req.Msg.FirstName,
		LastName:      req.Msg.LastName,
		Bio:           req.Msg.Bio,
		PaymentHandle: req.Msg.PaymentHandle,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateProfileResponse{Member: toAPIMember(member)}), nil
}
