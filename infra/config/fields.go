package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ConfigField represents a configuration field accepted by the settings store
type ConfigField struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "boolean", "enum"
	Description string `json:"description"`
	Example     string `json:"example"`
	Secret      bool   `json:"secret,omitempty"`
	Pattern     string `json:"pattern,omitempty"`   // regex pattern for validation
	MinLength   int    `json:"minLength,omitempty"` // minimum length for string fields
	MaxLength   int    `json:"maxLength,omitempty"` // maximum length for string fields
}

// ValidateConfigFields validates a complete configuration: every required field must be present
// and every present field must satisfy its rules.
func ValidateConfigFields(name string, config map[string]string, fields []ConfigField) error {
	for _, field := range fields {
		value, exists := config[field.Key]
		if !exists {
			if field.Required {
				return fmt.Errorf("%s: required field '%s' is missing", name, field.Key)
			}
			continue
		}

		if strings.TrimSpace(value) == "" {
			if field.Required {
				return fmt.Errorf("%s: required field '%s' cannot be empty", name, field.Key)
			}
			continue
		}

		if err := validateField(name, field, value); err != nil {
			return err
		}
	}

	return nil
}

// ValidateConfigValues validates only the keys present in config. Unknown keys are rejected.
// Empty values are accepted so that a store scope can drop an override.
func ValidateConfigValues(name string, config map[string]string, fields []ConfigField) error {
	known := make(map[string]ConfigField, len(fields))
	for _, field := range fields {
		known[field.Key] = field
	}

	for key, value := range config {
		field, ok := known[key]
		if !ok {
			return fmt.Errorf("%s: unknown field '%s'", name, key)
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		if err := validateField(name, field, value); err != nil {
			return err
		}
	}

	return nil
}

func validateField(name string, field ConfigField, value string) error {
	if err := validateFieldType(name, field, value); err != nil {
		return err
	}
	if err := validateFieldPattern(name, field, value); err != nil {
		return err
	}
	return validateFieldLength(name, field, value)
}

// validateFieldType validates field based on its type
func validateFieldType(name string, field ConfigField, value string) error {
	switch field.Type {
	case "number":
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%s: field '%s' must be a number", name, field.Key)
		}
	case "boolean":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s: field '%s' must be 'true' or 'false'", name, field.Key)
		}
	}
	return nil
}

// validateFieldPattern validates field against regex pattern
func validateFieldPattern(name string, field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("%s: invalid pattern for field '%s': %v", name, field.Key, err)
	}

	if !matched {
		return fmt.Errorf("%s: field '%s' does not match required pattern", name, field.Key)
	}

	return nil
}

// validateFieldLength validates field length constraints
func validateFieldLength(name string, field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return fmt.Errorf("%s: field '%s' must be at least %d characters", name, field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return fmt.Errorf("%s: field '%s' must not exceed %d characters", name, field.Key, field.MaxLength)
	}

	return nil
}
