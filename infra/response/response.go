package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response is a standardized API response structure
type Response struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a successful response with data
func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	resp := Response{
		Code:    statusCode,
		Success: true,
		Message: message,
		Data:    data,
	}
	write(w, resp)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := Response{
		Code:    statusCode,
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	write(w, resp)
}

// Fail writes an error response that still carries data, such as validation warnings
func Fail(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, Response{
		Code:    statusCode,
		Success: false,
		Message: message,
		Data:    data,
	})
}

// WriteJSON encodes v as the response body with statusCode
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

func write(w http.ResponseWriter, resp Response) {
	if err := WriteJSON(w, resp.Code, resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
