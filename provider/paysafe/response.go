package paysafe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var errEmptyBody = errors.New("empty response body")

// Envelope is the gateway response body
type Envelope struct {
	Transaction *Transaction    `json:"transaction"`
	Errors      json.RawMessage `json:"errors,omitempty"`
}

// Transaction holds the transaction fields the adapter reads.
// Every other field the gateway sends is kept untouched in Extra.
type Transaction struct {
	ID           FlexString  `json:"id"`
	AuthCode     FlexString  `json:"auth_code"`
	StatusID     FlexString  `json:"status_id"`
	ReasonCodeID FlexString  `json:"reason_code_id"`
	AvsEnhanced  FlexString  `json:"avs_enhanced"`
	CvvResponse  FlexString  `json:"cvv_response"`
	FirstSix     StringInt64 `json:"first_six"`
	LastFour     StringInt64 `json:"last_four"`
	Batch        StringInt64 `json:"batch"`
	Verbiage     FlexString  `json:"verbiage"`

	Extra map[string]json.RawMessage `json:"-"`
}

var transactionFields = []string{
	"id", "auth_code", "status_id", "reason_code_id", "avs_enhanced", "cvv_response",
	"first_six", "last_four", "batch", "verbiage",
}

// UnmarshalJSON decodes the typed fields and collects the rest into Extra
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type transactionAlias Transaction
	var decoded transactionAlias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range transactionFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		decoded.Extra = raw
	}

	*t = Transaction(decoded)
	return nil
}

// FlexString is text the gateway may send as a string, a number or a boolean.
// null decodes to an empty string.
type FlexString string

// UnmarshalJSON accepts any JSON scalar, keeping numbers and booleans in their literal form
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = FlexString(text)
		return nil
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("cannot unmarshal %s into a string", data)
	default:
		*s = FlexString(data)
		return nil
	}
}

// String returns the decoded text
func (s FlexString) String() string {
	return string(s)
}

// StringInt64 is an integer the gateway may send as a quoted string.
// null decodes to zero; a string that is not an integer fails decoding.
type StringInt64 int64

// UnmarshalJSON accepts null, a bare integer or a quoted integer
func (s *StringInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into an integer: %w", data, err)
	}
	*s = StringInt64(value)
	return nil
}

// MarshalJSON writes the value as a quoted string, the way the gateway sends it
func (s StringInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10))
}

// parseEnvelope decodes a gateway response body
func parseEnvelope(body []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// errorMessage flattens the gateway errors bag into one line
func (e *Envelope) errorMessage() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}

	var byField map[string][]string
	if err := json.Unmarshal(e.Errors, &byField); err == nil {
		return joinFieldErrors(byField)
	}

	var single map[string]string
	if err := json.Unmarshal(e.Errors, &single); err == nil {
		byField = make(map[string][]string, len(single))
		for k, v := range single {
			byField[k] = []string{v}
		}
		return joinFieldErrors(byField)
	}

	var list []string
	if err := json.Unmarshal(e.Errors, &list); err == nil {
		return strings.Join(list, "; ")
	}

	raw := strings.TrimSpace(string(e.Errors))
	if raw == "null" {
		return ""
	}
	return raw
}

func joinFieldErrors(byField map[string][]string) string {
	keys := make([]string, 0, len(byField))
	for k := range byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(byField[k]) == 0 {
			continue
		}
		parts = append(parts, k+": "+strings.Join(byField[k], ", "))
	}
	return strings.Join(parts, "; ")
}
