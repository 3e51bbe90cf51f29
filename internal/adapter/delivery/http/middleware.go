package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an ID, echoed in the response, and logs its outcome.
// An incoming X-Request-ID is kept.
func RequestLogger(next fasthttp.RequestHandler, logger *zap.Logger) fasthttp.RequestHandler {
	logger = logger.Named("HTTP")
	return func(ctx *fasthttp.RequestCtx) {
		requestID := string(ctx.Request.Header.Peek(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Response.Header.Set(HeaderRequestID, requestID)

		start := time.Now()
		next(ctx)

		logger.Info("Request handled",
			zap.String("requestId", requestID),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("uri", ctx.RequestURI()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
