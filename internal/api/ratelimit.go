package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// limitExpensive rejects a client that calls generator- or catalog-backed operations too often.
func (s *Server) limitExpensive(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr())
	if !s.llmLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}
	next(ctx)
}

// clientIP strips the port from a remote address. RealIP middleware has already applied proxy headers.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
