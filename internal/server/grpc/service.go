package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/api"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
)

const (
	ServiceName              = "gophauth.AuthService"
	LoginFullMethod          = "/" + ServiceName + "/Login"
	RefreshSessionFullMethod = "/" + ServiceName + "/RefreshSession"
	LogoutFullMethod         = "/" + ServiceName + "/Logout"
)

// AuthServiceServer is the server API of gophauth.AuthService.
type AuthServiceServer interface {
	Login(context.Context, *api.LoginRequest) (*models.LoginResponse, error)
	RefreshSession(context.Context, *api.RefreshSessionRequest) (*models.Session, error)
	Logout(context.Context, *api.LogoutRequest) (*api.LogoutResponse, error)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&authServiceDesc, srv)
}

func loginHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(api.LoginRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServiceServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LoginFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServiceServer).Login(ctx, req.(*api.LoginRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func refreshSessionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(api.RefreshSessionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServiceServer).RefreshSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RefreshSessionFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServiceServer).RefreshSession(ctx, req.(*api.RefreshSessionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func logoutHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(api.LogoutRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServiceServer).Logout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogoutFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServiceServer).Logout(ctx, req.(*api.LogoutRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: loginHandler},
		{MethodName: "RefreshSession", Handler: refreshSessionHandler},
		{MethodName: "Logout", Handler: logoutHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth.json",
}

// AuthServiceClient calls gophauth.AuthService with the JSON codec.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func (c *AuthServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *AuthServiceClient) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*models.LoginResponse, error) {
	out := new(models.LoginResponse)
	if err := c.invoke(ctx, LoginFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) RefreshSession(ctx context.Context, in *api.RefreshSessionRequest, opts ...grpc.CallOption) (*models.Session, error) {
	out := new(models.Session)
	if err := c.invoke(ctx, RefreshSessionFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *api.LogoutRequest, opts ...grpc.CallOption) (*api.LogoutResponse, error) {
	out := new(api.LogoutResponse)
	if err := c.invoke(ctx, LogoutFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
