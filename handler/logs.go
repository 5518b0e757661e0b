package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/gopaysafe/infra/middle"
	"github.com/mstgnz/gopaysafe/infra/opensearch"
	"github.com/mstgnz/gopaysafe/infra/response"
)

const (
	logsProvider = "paysafe"

	defaultLogHours = 24
	maxLogHours     = 720
	maxLogSize      = 1000
)

// LogSearcher defines the payment log queries
type LogSearcher interface {
	SearchLogs(ctx context.Context, filter opensearch.LogFilter) ([]opensearch.PaymentLog, error)
	GetTransactionLogs(ctx context.Context, provider, transactionID string) ([]opensearch.PaymentLog, error)
	GetRecentErrorLogs(ctx context.Context, provider string, hours int) ([]opensearch.PaymentLog, error)
	GetProviderStats(ctx context.Context, provider string, storeID *int, hours int) (map[string]any, error)
}

// LogsHandler handles logs related HTTP requests
type LogsHandler struct {
	logger LogSearcher
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logger LogSearcher) *LogsHandler {
	return &LogsHandler{
		logger: logger,
	}
}

// ListLogs lists the gateway exchanges matching the query filters
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	query := r.URL.Query()
	filter := opensearch.LogFilter{
		Provider:      logsProvider,
		TransactionID: query.Get("transactionId"),
		Operation:     query.Get("operation"),
		ErrorsOnly:    query.Get("errorsOnly") == "true",
	}

	storeID, err := logStoreScope(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid storeId parameter", err)
		return
	}
	filter.StoreID = storeID

	if filter.Hours, err = intParam(r, "hours", 0, maxLogHours); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid hours parameter", err)
		return
	}
	if filter.Size, err = intParam(r, "size", 0, maxLogSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid size parameter", err)
		return
	}

	logs, err := h.logger.SearchLogs(ctx, filter)
	if err != nil {
		writeLogError(w, "Failed to search logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", map[string]any{
		"provider": logsProvider,
		"count":    len(logs),
		"logs":     logs,
	})
}

// GetTransactionLogs returns every exchange that touched one gateway transaction
func (h *LogsHandler) GetTransactionLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	transactionID := chi.URLParam(r, "transactionID")
	if transactionID == "" {
		response.Error(w, http.StatusBadRequest, "transactionID parameter is required", nil)
		return
	}

	logs, err := h.logger.GetTransactionLogs(ctx, logsProvider, transactionID)
	if err != nil {
		writeLogError(w, "Failed to retrieve logs", err)
		return
	}

	// a store scoped caller only sees its own exchanges
	if storeID, ok := middle.GetStoreIDFromContext(r.Context()); ok && storeID > 0 {
		scoped := logs[:0]
		for _, entry := range logs {
			if entry.StoreID == storeID {
				scoped = append(scoped, entry)
			}
		}
		logs = scoped
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", map[string]any{
		"transactionId": transactionID,
		"count":         len(logs),
		"logs":          logs,
	})
}

// GetErrorLogs returns the failed exchanges of the last hours
func (h *LogsHandler) GetErrorLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	hours, err := intParam(r, "hours", defaultLogHours, maxLogHours)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid hours parameter", err)
		return
	}

	storeID, err := logStoreScope(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid storeId parameter", err)
		return
	}

	var logs []opensearch.PaymentLog
	if storeID == nil {
		logs, err = h.logger.GetRecentErrorLogs(ctx, logsProvider, hours)
	} else {
		logs, err = h.logger.SearchLogs(ctx, opensearch.LogFilter{
			Provider:   logsProvider,
			StoreID:    storeID,
			ErrorsOnly: true,
			Hours:      hours,
		})
	}
	if err != nil {
		writeLogError(w, "Failed to get error logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Error logs retrieved successfully", map[string]any{
		"hours": hours,
		"count": len(logs),
		"logs":  logs,
	})
}

// GetLogStats aggregates the exchanges of the last hours
func (h *LogsHandler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	hours, err := intParam(r, "hours", defaultLogHours, maxLogHours)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid hours parameter", err)
		return
	}

	storeID, err := logStoreScope(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid storeId parameter", err)
		return
	}

	stats, err := h.logger.GetProviderStats(ctx, logsProvider, storeID, hours)
	if err != nil {
		writeLogError(w, "Failed to retrieve log statistics", err)
		return
	}

	response.Success(w, http.StatusOK, "Log statistics retrieved successfully", map[string]any{
		"provider": logsProvider,
		"hours":    hours,
		"stats":    stats,
	})
}

// logStoreScope resolves the store filter. A store scoped caller is pinned to its own store.
func logStoreScope(r *http.Request) (*int, error) {
	if storeID, ok := middle.GetStoreIDFromContext(r.Context()); ok && storeID > 0 {
		return &storeID, nil
	}

	raw := r.URL.Query().Get("storeId")
	if raw == "" {
		return nil, nil
	}
	storeID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	if storeID < 0 {
		return nil, errors.New("storeId cannot be negative")
	}
	return &storeID, nil
}

func intParam(r *http.Request, name string, fallback, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 1 || value > max {
		return 0, errors.New(name + " must be between 1 and " + strconv.Itoa(max))
	}
	return value, nil
}

func writeLogError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, opensearch.ErrLoggingDisabled) {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", err)
		return
	}
	response.Error(w, http.StatusInternalServerError, message, err)
}
