package api

import (
	"context"

	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/presence"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"go.uber.org/zap"
)

// AuthService implements the AuthService gRPC service.
type AuthService struct {
	pairchatv1.UnimplementedAuthServiceServer

	accounts *auth.Service
	tracker  *presence.Tracker
	logger   *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(accounts *auth.Service, tracker *presence.Tracker, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, tracker: tracker, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, req *pairchatv1.RegisterRequest) (*pairchatv1.RegisterResponse, error) {
	profile, err := s.accounts.Register(ctx, auth.Registration{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return nil, toStatus(s.logger, "register", err)
	}
	return &pairchatv1.RegisterResponse{Profile: *profile}, nil
}

func (s *AuthService) Login(ctx context.Context, req *pairchatv1.LoginRequest) (*pairchatv1.LoginResponse, error) {
	token, profile, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(s.logger, "login", err)
	}
	return &pairchatv1.LoginResponse{Token: token, Profile: *profile}, nil
}

// Logout marks the caller disconnected. Tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, _ *pairchatv1.LogoutRequest) (*pairchatv1.LogoutResponse, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.tracker.Disconnect(ctx, self); err != nil {
		return nil, toStatus(s.logger, "logout", err)
	}
	s.logger.Info("participant logged out", zap.String("participant", self))
	return &pairchatv1.LogoutResponse{}, nil
}
