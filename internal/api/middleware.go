package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/helpers"
	"github.com/openbuilders/campaign-api/internal/metrics"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WithMethod is a middleware that checks if the endpoint was called using a
// specific HTTP method and rejects it otherwise.
func WithMethod(next http.HandlerFunc, method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, fmt.Sprintf("Only %s method is allowed", method), http.StatusMethodNotAllowed)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// WithJSONResponse wraps an APIHandler into the {ok, data} envelope.
func WithJSONResponse(handler APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := handler(w, r)
		if err != nil {
			slog.Debug("API error", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Ok:        false,
				ErrorCode: err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, SuccessResponse{Ok: true, Data: data})
	}
}

// WithRequestID stores a new request id in the request context. The id is
// logged with every line of the request's audit trail.
func WithRequestID(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := helpers.NewRequestID(prefix)
			next.ServeHTTP(w, r.WithContext(helpers.WithRequestID(r.Context(), id)))
		})
	}
}

// WithDispatchResponse renders the result of a dispatch handler. Errors are
// rendered with the codes and texts of the channel.
func WithDispatchResponse(channel types.Channel, handler APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := handler(w, r)
		if err != nil {
			kind := apperrors.KindOf(err)
			code, message := dispatchCode(channel, kind)

			resp := DispatchErrorResponse{
				Status:  statusError,
				Code:    code,
				Message: message,
			}

			var se apperrors.ServiceError
			if errors.As(err, &se) && len(se.Details) > 0 {
				resp.Errors = se.Details
			}

			logError(r, "create error", code, err)
			writeJSON(w, httpStatus(kind), resp)
			return
		}

		writeJSON(w, http.StatusOK, data)
	}
}

func WithStatsResponse(handler APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := handler(w, r)
		if err != nil {
			kind := apperrors.KindOf(err)
			code, message := statsCode(kind)

			logError(r, "status error", code, err)
			writeJSON(w, httpStatus(kind), StatsErrorResponse{
				QueryStatus: statusError,
				Code:        code,
				Message:     message,
			})
			return
		}

		writeJSON(w, http.StatusOK, data)
	}
}

// WithRequestMetrics observes the latency of every routed request.
func WithRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		metrics.HTTPDuration.
			WithLabelValues(route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

func logError(r *http.Request, msg string, code APIErrorCode, err error) {
	slog.Info(msg,
		"component", "api",
		"uuid", helpers.RequestID(r.Context()),
		"path", r.URL.Path,
		"code", code,
		"error", err,
	)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("couldn't encode response", "error", err)
	}
}
