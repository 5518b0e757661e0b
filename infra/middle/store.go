package middle

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/response"
)

// StoreIDHeader selects the store scope of a request
const StoreIDHeader = "X-Store-ID"

// StoreIDKey is the context key of the store scope
const StoreIDKey config.CKey = "store_id"

// StoreMiddleware reads X-Store-ID into the request context. A missing header selects store 0.
func StoreMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID := 0
			if header := r.Header.Get(StoreIDHeader); header != "" {
				id, err := strconv.Atoi(header)
				if err != nil || id < 0 {
					response.Error(w, http.StatusBadRequest, "Invalid "+StoreIDHeader+" header", nil)
					return
				}
				storeID = id
			}

			ctx := context.WithValue(r.Context(), StoreIDKey, storeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStoreIDFromContext returns the store scope set by StoreMiddleware
func GetStoreIDFromContext(ctx context.Context) (int, bool) {
	storeID, ok := ctx.Value(StoreIDKey).(int)
	return storeID, ok
}
