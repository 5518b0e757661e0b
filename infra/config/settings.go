package config

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// TransactMode is the payment processor transaction mode
type TransactMode int

const (
	TransactModeAuthorize           TransactMode = 1
	TransactModeAuthorizeAndCapture TransactMode = 2
)

// String returns the display name of the mode
func (m TransactMode) String() string {
	switch m {
	case TransactModeAuthorize:
		return "Authorize"
	case TransactModeAuthorizeAndCapture:
		return "AuthorizeAndCapture"
	default:
		return fmt.Sprintf("TransactMode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode
func (m TransactMode) Valid() bool {
	return m == TransactModeAuthorize || m == TransactModeAuthorizeAndCapture
}

// Settings keys as stored per store scope
const (
	KeyUseSandbox              = "useSandbox"
	KeyTransactMode            = "transactMode"
	KeyLocationID              = "locationId"
	KeyDeveloperID             = "developerId"
	KeyUserID                  = "userId"
	KeyUserAPIKey              = "userApiKey"
	KeyAdditionalFee           = "additionalFee"
	KeyAdditionalFeePercentage = "additionalFeePercentage"
	KeyRefundTolerance         = "refundTolerance"
)

const settingsName = "paysafe"

const redacted = "***REDACTED***"

// PaySafeSettings holds the gateway credentials and mode configuration of one store scope
type PaySafeSettings struct {
	UseSandbox              bool            `json:"useSandbox"`
	TransactMode            TransactMode    `json:"transactMode"`
	LocationID              string          `json:"locationId"`
	DeveloperID             string          `json:"developerId"`
	UserID                  string          `json:"userId"`
	UserAPIKey              string          `json:"userApiKey"`
	AdditionalFee           decimal.Decimal `json:"additionalFee"`
	AdditionalFeePercentage bool            `json:"additionalFeePercentage"`
	// RefundTolerance is the largest difference between refunded total and order total that
	// still counts as a full refund. Zero means exact equality.
	RefundTolerance decimal.Decimal `json:"refundTolerance"`
}

// DefaultPaySafeSettings returns the settings written on install
func DefaultPaySafeSettings() PaySafeSettings {
	return PaySafeSettings{
		UseSandbox:   true,
		TransactMode: TransactModeAuthorizeAndCapture,
	}
}

// PaySafeSettingsFields describes every settings key.
// Credentials are required before a gateway call can be made.
func PaySafeSettingsFields() []ConfigField {
	return []ConfigField{
		{
			Key:         KeyUseSandbox,
			Name:        "Use Sandbox",
			Type:        "boolean",
			Description: "Check to enable Sandbox (testing environment).",
			Example:     "true",
		},
		{
			Key:         KeyTransactMode,
			Name:        "Transaction mode",
			Type:        "enum",
			Description: "Choose transaction mode. 1 = Authorize, 2 = Authorize and capture.",
			Example:     "2",
			Pattern:     "^(1|2)$",
		},
		{
			Key:         KeyLocationID,
			Name:        "Location ID",
			Required:    true,
			Type:        "string",
			Description: "Location ID found in your developer account project",
			Example:     "11e95f8ec39de8fbdb0a4f1a",
			MaxLength:   64,
		},
		{
			Key:         KeyDeveloperID,
			Name:        "Developer ID",
			Required:    true,
			Type:        "string",
			Description: "Developer ID found in your developer account > project > project details",
			Example:     "developer-id",
			MaxLength:   64,
		},
		{
			Key:         KeyUserID,
			Name:        "User ID",
			Required:    true,
			Type:        "string",
			Description: "User ID found in your developer account > project > API credentials",
			Example:     "11e95f8ec39de8fbdb0a4f1b",
			MaxLength:   64,
		},
		{
			Key:         KeyUserAPIKey,
			Name:        "User API Key",
			Required:    true,
			Type:        "string",
			Secret:      true,
			Description: "User API Key found in your developer account > project > API credentials",
			Example:     "11e96b1ab3b9f1f2a1a2c3d4",
			MaxLength:   128,
		},
		{
			Key:         KeyAdditionalFee,
			Name:        "Additional fee",
			Type:        "number",
			Description: "Enter additional fee to charge your customers.",
			Example:     "1.50",
		},
		{
			Key:         KeyAdditionalFeePercentage,
			Name:        "Additional fee. Use percentage",
			Type:        "boolean",
			Description: "Determines whether to apply a percentage additional fee to the order total. If not enabled, a fixed value is used.",
			Example:     "false",
		},
		{
			Key:         KeyRefundTolerance,
			Name:        "Refund tolerance",
			Type:        "number",
			Description: "Largest difference between refunded total and order total still treated as a full refund. 0 requires an exact match.",
			Example:     "0",
		},
	}
}

// ToMap flattens the settings into storable key/value pairs
func (s PaySafeSettings) ToMap() map[string]string {
	return map[string]string{
		KeyUseSandbox:              strconv.FormatBool(s.UseSandbox),
		KeyTransactMode:            strconv.Itoa(int(s.TransactMode)),
		KeyLocationID:              s.LocationID,
		KeyDeveloperID:             s.DeveloperID,
		KeyUserID:                  s.UserID,
		KeyUserAPIKey:              s.UserAPIKey,
		KeyAdditionalFee:           s.AdditionalFee.String(),
		KeyAdditionalFeePercentage: strconv.FormatBool(s.AdditionalFeePercentage),
		KeyRefundTolerance:         s.RefundTolerance.String(),
	}
}

// PaySafeSettingsFromMap builds settings from stored key/value pairs on top of the install defaults
func PaySafeSettingsFromMap(values map[string]string) (PaySafeSettings, error) {
	if err := ValidateConfigValues(settingsName, values, PaySafeSettingsFields()); err != nil {
		return PaySafeSettings{}, err
	}

	s := DefaultPaySafeSettings()
	var err error

	if v := values[KeyUseSandbox]; v != "" {
		s.UseSandbox, _ = strconv.ParseBool(v)
	}
	if v := values[KeyTransactMode]; v != "" {
		mode, _ := strconv.Atoi(v)
		s.TransactMode = TransactMode(mode)
	}
	s.LocationID = values[KeyLocationID]
	s.DeveloperID = values[KeyDeveloperID]
	s.UserID = values[KeyUserID]
	s.UserAPIKey = values[KeyUserAPIKey]
	if v := values[KeyAdditionalFee]; v != "" {
		if s.AdditionalFee, err = decimal.NewFromString(v); err != nil {
			return PaySafeSettings{}, fmt.Errorf("%s: invalid additional fee: %w", settingsName, err)
		}
	}
	if v := values[KeyAdditionalFeePercentage]; v != "" {
		s.AdditionalFeePercentage, _ = strconv.ParseBool(v)
	}
	if v := values[KeyRefundTolerance]; v != "" {
		if s.RefundTolerance, err = decimal.NewFromString(v); err != nil {
			return PaySafeSettings{}, fmt.Errorf("%s: invalid refund tolerance: %w", settingsName, err)
		}
		if s.RefundTolerance.IsNegative() {
			return PaySafeSettings{}, fmt.Errorf("%s: refund tolerance cannot be negative", settingsName)
		}
	}

	return s, nil
}

// Validate checks that the credentials needed for a gateway call are set
func (s PaySafeSettings) Validate() error {
	if !s.TransactMode.Valid() {
		return fmt.Errorf("%s: unsupported transaction mode %d", settingsName, int(s.TransactMode))
	}
	return ValidateConfigFields(settingsName, s.ToMap(), PaySafeSettingsFields())
}

// Redacted returns a copy safe to hand out over the API
func (s PaySafeSettings) Redacted() PaySafeSettings {
	if s.UserAPIKey != "" {
		s.UserAPIKey = redacted
	}
	return s
}
