// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/metalforge/conductor/pkg/coreerrors"
)

// opHandler is the signature every RPC operation handler implements: it
// decodes its own request shape from req (via decodeRequest), and it returns
// either a response to encode or an error to translate into a micro error
// reply.
type opHandler func(ctx context.Context, req micro.Request) (any, error)

// registerRPC builds the NATS micro service and registers one endpoint per
// named operation under two groups: the plain "<prefix>.<operation>"
// subject any client calls, and a host-scoped "<prefix>.<host>.<operation>"
// subject only this conductor subscribes to, which owning-conductor
// forwarding (see forward in rpc_handlers.go) targets directly so a
// request that lands on the wrong conductor is re-routed exactly once.
func (c *Conductor) registerRPC(nc *nats.Conn) (micro.Service, error) {
	svc, err := micro.AddService(nc, micro.Config{
		Name:        "conductor",
		Description: "bare-metal provisioning conductor RPC surface",
		Version:     c.cfg.RPCServiceVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("add micro service: %w", err)
	}

	general := svc.AddGroup(c.cfg.RPCSubjectPrefix)
	hostScoped := svc.AddGroup(c.cfg.RPCSubjectPrefix + "." + c.cfg.Host)
	for name, handler := range c.operations() {
		if err := general.AddEndpoint(name, c.wrap(name, handler)); err != nil {
			return nil, fmt.Errorf("register endpoint %s: %w", name, err)
		}
		if err := hostScoped.AddEndpoint(name, c.wrap(name, handler)); err != nil {
			return nil, fmt.Errorf("register host-scoped endpoint %s: %w", name, err)
		}
	}
	return svc, nil
}

// rawResponse is returned by forward to carry an already-encoded reply
// from the owning conductor back through respond without re-marshaling it.
type rawResponse []byte

// wrap adapts an opHandler into a micro.Handler: it decodes nothing itself
// (handlers read req.Data() directly so each can use its own request
// shape), runs the handler, and encodes the result or translates the error.
func (c *Conductor) wrap(name string, handler opHandler) micro.Handler {
	return micro.HandlerFunc(func(req micro.Request) {
		ctx := context.Background()
		resp, err := handler(ctx, req)
		if err != nil {
			c.respondError(ctx, req, name, err)
			return
		}
		c.respond(ctx, req, resp)
	})
}

func (c *Conductor) respond(ctx context.Context, req micro.Request, v any) {
	if raw, ok := v.(rawResponse); ok {
		if err := req.Respond(raw); err != nil {
			c.logger.ErrorContext(ctx, "failed to send forwarded RPC response", "subject", req.Subject(), "error", err)
		}
		return
	}
	if v == nil {
		v = struct{}{}
	}
	body, err := json.Marshal(v)
	if err != nil {
		c.respondError(ctx, req, req.Subject(), fmt.Errorf("%w: encoding response: %w", coreerrors.ErrInternal, err))
		return
	}
	if err := req.Respond(body); err != nil {
		c.logger.ErrorContext(ctx, "failed to send RPC response", "subject", req.Subject(), "error", err)
	}
}

func (c *Conductor) respondError(ctx context.Context, req micro.Request, op string, err error) {
	c.logger.ErrorContext(ctx, "RPC operation failed", "operation", op, "error", err)
	code := rpcErrorCode(err)
	if rerr := req.Error(code, err.Error(), nil); rerr != nil {
		c.logger.ErrorContext(ctx, "failed to send RPC error response", "operation", op, "error", rerr)
	}
}

// rpcErrorCode maps a coreerrors Kind to a short code a caller can branch
// on without parsing the error string.
func rpcErrorCode(err error) string {
	switch coreerrors.KindOf(err) {
	case coreerrors.KindClient:
		return "client_error"
	case coreerrors.KindConcurrency:
		return "concurrency_error"
	case coreerrors.KindDriver:
		return "driver_error"
	case coreerrors.KindStorage:
		return "storage_error"
	default:
		return "internal_error"
	}
}

func decodeRequest[T any](req micro.Request) (T, error) {
	var v T
	if len(req.Data()) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(req.Data(), &v); err != nil {
		return v, fmt.Errorf("%w: %w", coreerrors.ErrInvalidParameterValue, err)
	}
	return v, nil
}
