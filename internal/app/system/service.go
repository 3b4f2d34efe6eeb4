package system

import "context"

// Service is a long-running component owned by the Manager: the RPC server,
// background workers and anything else with a lifecycle. Start is called once
// during boot; Stop must honour the context deadline during shutdown.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
