package rpcapi

import (
	"context"
	"net"
	"runtime"

	"google.golang.org/grpc"

	app "github.com/domunity/backend/internal/app"
	"github.com/domunity/backend/pkg/logger"
)

// Server hosts the RPC surface. It satisfies system.Service so the
// application manager controls its lifecycle.
type Server struct {
	addr string
	app  *app.Application
	log  *logger.Logger
	srv  *grpc.Server
	lis  net.Listener
}

// NewServer builds the RPC server with all services registered.
func NewServer(application *app.Application, addr string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("rpcapi")
	}
	s := &Server{addr: addr, app: application, log: log}
	s.srv = grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.NumStreamWorkers(uint32(runtime.GOMAXPROCS(0))),
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	registerServices(s.srv, application)
	return s
}

// Name implements system.Service.
func (s *Server) Name() string { return "rpcapi" }

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.lis = lis
	s.log.WithField("addr", lis.Addr().String()).Info("rpc server listening")

	go func() {
		if err := s.srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			s.log.WithError(err).Error("rpc server stopped")
		}
	}()
	return nil
}

// Stop drains in-flight calls, falling back to a hard stop when the context
// expires first.
func (s *Server) Stop(ctx context.Context) error {
	if s.lis == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.srv.Stop()
		<-done
	}
	return nil
}

// Addr returns the bound listener address. Useful when addr was ":0".
func (s *Server) Addr() string {
	if s.lis == nil {
		return s.addr
	}
	return s.lis.Addr().String()
}
