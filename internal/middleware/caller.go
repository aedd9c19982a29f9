package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
)

// requestInfo is shared by every middleware of one request. Auth records the
// caller in it so that outer middleware (the logger) can report who made the
// request after the handler returns.
type requestInfo struct {
	mu     sync.Mutex
	caller string
}

const requestInfoKey contextKey = "requestInfo"

func withRequestInfo(ctx context.Context) (context.Context, *requestInfo) {
	if ri := requestInfoFrom(ctx); ri != nil {
		return ctx, ri
	}
	ri := &requestInfo{}
	return context.WithValue(ctx, requestInfoKey, ri), ri
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	ri, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return ri
}

func (ri *requestInfo) setCaller(email string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.caller = email
}

func (ri *requestInfo) getCaller() string {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return ri.caller
}

// ClientKey identifies the client for rate limiting and idempotency: the
// authenticated email when a verified token was seen, otherwise the remote
// host. The port is dropped so one client does not get a bucket per connection.
func ClientKey(r *http.Request) string {
	if email := GetUserEmail(r.Context()); email != "" {
		return "user:" + strings.ToLower(email)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
