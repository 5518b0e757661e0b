package middle

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/gopaysafe/infra/logger"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// RequestLoggingMiddleware assigns a request id and logs every request once it completes.
// Bodies are never logged; they carry card data.
func RequestLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			ctx := logger.LogContext{
				RequestID: requestID,
				Fields: map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": rw.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
					"client_ip":   GetClientIP(r),
				},
			}
			if storeID, ok := GetStoreIDFromContext(r.Context()); ok {
				ctx.StoreID = strconv.Itoa(storeID)
			}

			message := r.Method + " " + r.URL.Path + " " + strconv.Itoa(rw.statusCode)
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				logger.Error(message, nil, ctx)
			case rw.statusCode >= http.StatusBadRequest:
				logger.Warn(message, ctx)
			default:
				logger.Info(message, ctx)
			}
		})
	}
}
