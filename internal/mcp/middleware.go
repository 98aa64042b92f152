package mcp

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultCallTimeout bounds a single tool call. stop_recording waits for the
// artifact write, so this is generous.
const DefaultCallTimeout = 2 * time.Minute

// callTimeoutMiddleware bounds tools/call requests with a deadline.
func callTimeoutMiddleware(timeout time.Duration) sdkmcp.Middleware {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method != "tools/call" {
				return next(ctx, method, req)
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, method, req)
		}
	}
}
