package grpc

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/api"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/principal"
	"github.com/dmitrijs2005/gophauth/internal/server/result"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*models.LoginResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res := s.auth.Login(ctx, req.Email, req.Password)
	if !res.IsSuccess() {
		return nil, toStatus(res.Errors)
	}
	return &res.Value, nil
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *api.RefreshSessionRequest) (*models.Session, error) {
	if err := api.Validate(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res := s.auth.RefreshSession(ctx, req.RefreshToken)
	if !res.IsSuccess() {
		return nil, toStatus(res.Errors)
	}
	return &res.Value, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.LogoutRequest) (*api.LogoutResponse, error) {
	res := s.auth.Logout(ctx, principal.FromContext(ctx), headerSignal{})
	if !res.IsSuccess() {
		return nil, toStatus(res.Errors)
	}
	return &api.LogoutResponse{Message: res.Value}, nil
}

// toStatus converts the first catalogue error to a gRPC status. The message
// carries "Code: Description".
func toStatus(errs []result.Error) error {
	if len(errs) == 0 {
		return status.Error(codes.Unknown, "unknown error")
	}
	e := errs[0]
	return status.Error(codeFor(e.HTTPStatus), e.Error())
}

func codeFor(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusRequestTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
