package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// ErrLoggingDisabled is returned by queries when OpenSearch logging is turned off
var ErrLoggingDisabled = errors.New("logging is disabled")

// PaymentLog is one gateway exchange
type PaymentLog struct {
	Timestamp     time.Time   `json:"timestamp"`
	StoreID       int         `json:"store_id"`
	Provider      string      `json:"provider"`
	Operation     string      `json:"operation"`
	RequestID     string      `json:"request_id"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Sandbox       bool        `json:"sandbox"`
	Amount        string      `json:"amount,omitempty"`
	Status        string      `json:"status"`
	ErrorKind     string      `json:"error_kind,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	Request       RequestLog  `json:"request"`
	Response      ResponseLog `json:"response"`
}

// RequestLog represents request details
type RequestLog struct {
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
	Body     string `json:"body,omitempty"`
}

// ResponseLog represents response details
type ResponseLog struct {
	StatusCode       int    `json:"status_code"`
	Body             string `json:"body,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// LogFilter narrows a payment log search. Zero values do not filter.
type LogFilter struct {
	Provider      string
	StoreID       *int
	TransactionID string
	Operation     string
	ErrorsOnly    bool
	Hours         int
	Size          int
}

const defaultSearchSize = 100

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// IsEnabled reports whether documents are written
func (l *Logger) IsEnabled() bool {
	return l != nil && l.client != nil && l.client.IsEnabled()
}

// LogPayment indexes a gateway exchange. Request and response bodies are sanitized first.
func (l *Logger) LogPayment(ctx context.Context, entry PaymentLog) error {
	if !l.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}
	entry.Request.Body = SanitizeForLog(entry.Request.Body)
	entry.Response.Body = SanitizeForLog(entry.Response.Body)

	return l.index(ctx, l.client.GetLogIndexName(entry.Provider), entry)
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, event any) error {
	if !l.IsEnabled() {
		return nil
	}
	return l.index(ctx, SystemLogIndex, event)
}

func (l *Logger) index(ctx context.Context, indexName string, document any) error {
	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchLogs returns the newest payment logs of provider matching filter
func (l *Logger) SearchLogs(ctx context.Context, filter LogFilter) ([]PaymentLog, error) {
	if !l.IsEnabled() {
		return nil, ErrLoggingDisabled
	}

	size := filter.Size
	if size <= 0 {
		size = defaultSearchSize
	}

	searchQuery := map[string]any{
		"query": buildQuery(filter),
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": size,
	}

	res, err := l.search(ctx, filter.Provider, searchQuery)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source PaymentLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]PaymentLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetTransactionLogs retrieves every exchange that touched transactionID
func (l *Logger) GetTransactionLogs(ctx context.Context, provider, transactionID string) ([]PaymentLog, error) {
	return l.SearchLogs(ctx, LogFilter{Provider: provider, TransactionID: transactionID})
}

// GetRecentErrorLogs retrieves failed exchanges of the last hours
func (l *Logger) GetRecentErrorLogs(ctx context.Context, provider string, hours int) ([]PaymentLog, error) {
	return l.SearchLogs(ctx, LogFilter{Provider: provider, ErrorsOnly: true, Hours: hours})
}

// GetProviderStats aggregates the exchanges of the last hours
func (l *Logger) GetProviderStats(ctx context.Context, provider string, storeID *int, hours int) (map[string]any, error) {
	if !l.IsEnabled() {
		return nil, ErrLoggingDisabled
	}

	aggQuery := map[string]any{
		"query": buildQuery(LogFilter{StoreID: storeID, Hours: hours}),
		"aggs": map[string]any{
			"total_requests": map[string]any{
				"value_count": map[string]any{"field": "request_id"},
			},
			"error_count": map[string]any{
				"filter": map[string]any{
					"exists": map[string]any{"field": "error_kind"},
				},
			},
			"avg_processing_time": map[string]any{
				"avg": map[string]any{"field": "response.processing_time_ms"},
			},
			"operations": map[string]any{
				"terms": map[string]any{"field": "operation", "size": 10},
			},
			"error_kinds": map[string]any{
				"terms": map[string]any{"field": "error_kind", "size": 10},
			},
		},
		"size": 0,
	}

	res, err := l.search(ctx, provider, aggQuery)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var result struct {
		Aggregations map[string]any `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}

	return result.Aggregations, nil
}

func (l *Logger) search(ctx context.Context, provider string, query map[string]any) (*opensearchapi.Response, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{l.client.GetLogIndexName(provider)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if res.IsError() {
		defer res.Body.Close()
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	return res, nil
}

// buildQuery turns filter into a bool query, match_all when nothing filters
func buildQuery(filter LogFilter) map[string]any {
	var must []map[string]any

	if filter.StoreID != nil {
		must = append(must, map[string]any{
			"term": map[string]any{"store_id": *filter.StoreID},
		})
	}
	if filter.TransactionID != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"transaction_id": filter.TransactionID},
		})
	}
	if filter.Operation != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"operation": filter.Operation},
		})
	}
	if filter.ErrorsOnly {
		must = append(must, map[string]any{
			"exists": map[string]any{"field": "error_kind"},
		})
	}
	if filter.Hours > 0 {
		must = append(must, map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"gte": fmt.Sprintf("now-%dh", filter.Hours)},
			},
		})
	}

	if len(must) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": map[string]any{"must": must}}
}

var sensitiveFields = []string{
	"cardNumber", "card_number", "account_number", "cvv", "ccv", "cvc",
	"apiKey", "api_key", "userApiKey", "user-api-key", "developer-id", "user-id",
	"password", "token", "authorization",
}

var sensitivePatterns = buildSensitivePatterns()

func buildSensitivePatterns() map[string][]*regexp.Regexp {
	patterns := make(map[string][]*regexp.Regexp, len(sensitiveFields))
	for _, field := range sensitiveFields {
		quoted := regexp.QuoteMeta(field)
		patterns[field] = []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, quoted)),
			regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*'[^']*'`, quoted)),
			regexp.MustCompile(fmt.Sprintf(`\b%s=[^&\s]+`, quoted)),
		}
	}
	return patterns
}

// SanitizeForLog removes sensitive information from data before logging
func SanitizeForLog(data string) string {
	if data == "" {
		return data
	}

	result := data
	for _, field := range sensitiveFields {
		forms := sensitivePatterns[field]
		result = forms[0].ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		result = forms[1].ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		result = forms[2].ReplaceAllString(result, field+"=***REDACTED***")
	}

	return result
}
