package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/logger"
	"storefront/pkg/tracing"
)

const TraceIDHeader = "X-Trace-ID"

// Tracing opens one server span per request. The span joins an upstream trace
// when the request carries a traceparent header, and is renamed to the matched
// route once routing is done, e.g. "PATCH /products/{product_id}".
// Only 5xx responses mark the span as failed; 4xx are the client's problem.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartServerSpan(r.Context(), r.Header, r.Method,
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("user_agent.original", r.UserAgent()),
			attribute.String("client.address", r.RemoteAddr),
		)
		defer span.End()

		if requestID := logger.RequestID(ctx); requestID != "" {
			span.SetAttributes(attribute.String("http.request.id", requestID))
		}
		if traceID := tracing.GetTraceID(ctx); traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		rw := wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		if rctx := chi.RouteContext(ctx); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
		}

		span.SetAttributes(attribute.Int("http.response.status_code", rw.statusCode))
		if rw.statusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
		}
	})
}

// annotateSession records on the request span whether storage was touched.
func annotateSession(r *http.Request, acquired bool) {
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Bool("db.session.acquired", acquired))
}
