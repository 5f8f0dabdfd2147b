package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/xoulomon/stellarsave/internal/auth"
)

const AuthServiceName = "stellarsave.v1.AuthService"

const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"
)

// AuthService registers principals and issues session tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// NewAuthServiceHandler builds the HTTP handler for svc and returns the path
// to mount it on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	return "/" + AuthServiceName + "/", mux
}

// Register creates a principal and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Info("Register request received", "address", req.Msg.Address)

	principal, err := s.authenticator.Register(ctx, req.Msg.Address, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "address", req.Msg.Address, "error", err)
		switch {
		case errors.Is(err, auth.ErrAddressTaken):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidAddress):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(principal.Address)
	if err != nil {
		s.logger.Error("Failed to generate token", "address", principal.Address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Principal registered", "address", principal.Address)
	return connect.NewResponse(&AuthResponse{Address: principal.Address, Token: token}), nil
}

// Login checks the password and returns a token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Info("Login request received", "address", req.Msg.Address)

	if req.Msg.Address == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	principal, err := s.authenticator.Authenticate(ctx, req.Msg.Address, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "address", req.Msg.Address, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(principal.Address)
	if err != nil {
		s.logger.Error("Failed to generate token", "address", principal.Address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Principal logged in", "address", principal.Address)
	return connect.NewResponse(&AuthResponse{Address: principal.Address, Token: token}), nil
}
