package rpcapi

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/metrics"
	"github.com/domunity/backend/internal/middleware"
)

// publicMethods lists the full method names callable without a token.
var publicMethods = map[string]bool{
	"/domunity.AuthService/Login":                  true,
	"/domunity.AuthService/Register":               true,
	"/domunity.AuthService/RefreshToken":           true,
	"/domunity.AuthService/ForgotPassword":         true,
	"/domunity.ContactService/SendContactForm":     true,
	"/domunity.ContactService/RequestOffer":        true,
	"/domunity.ContactService/RequestPresentation": true,
	"/domunity.HealthService/Check":                true,
	"/domunity.DiscoveryService/ListServices":      true,
}

// unaryInterceptor enforces bearer authentication, records call metrics and
// normalizes errors into grpc statuses.
func (s *Server) unaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	if !publicMethods[info.FullMethod] {
		u, err := s.authenticate(ctx)
		if err != nil {
			statusErr := toStatusError(err)
			metrics.RecordRPC(info.FullMethod, status.Code(statusErr).String(), time.Since(start))
			return nil, statusErr
		}
		ctx = middleware.WithUser(ctx, u)
	}

	resp, err := handler(ctx, req)
	if err != nil {
		err = toStatusError(err)
		s.log.WithError(err).WithField("method", info.FullMethod).Debug("rpc call failed")
	}
	metrics.RecordRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *Server) authenticate(ctx context.Context) (user.User, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return user.User{}, apperrors.Unauthorized("missing authorization metadata")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return user.User{}, apperrors.Unauthorized("missing authorization metadata")
	}
	token := values[0]
	if parts := strings.SplitN(token, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		token = parts[1]
	}
	if token == "" {
		return user.User{}, apperrors.Unauthorized("missing authorization metadata")
	}
	return s.app.Auth.Authenticate(ctx, token)
}

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return apperrors.GetServiceError(err).GRPCStatus().Err()
}
