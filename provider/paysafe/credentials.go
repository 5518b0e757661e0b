package paysafe

import (
	"fmt"

	"github.com/mstgnz/gopaysafe/infra/config"
)

// Credentials authenticate a gateway call. Built per call from the store's settings.
type Credentials struct {
	LocationID  string
	DeveloperID string
	UserID      string
	APIKey      string
	Sandbox     bool
}

// CredentialsFromSettings extracts the gateway credentials of a store
func CredentialsFromSettings(s config.PaySafeSettings) Credentials {
	return Credentials{
		LocationID:  s.LocationID,
		DeveloperID: s.DeveloperID,
		UserID:      s.UserID,
		APIKey:      s.UserAPIKey,
		Sandbox:     s.UseSandbox,
	}
}

// String hides every credential value
func (c Credentials) String() string {
	return fmt.Sprintf("paysafe.Credentials{sandbox=%t, ***REDACTED***}", c.Sandbox)
}

// GoString hides every credential value from %#v
func (c Credentials) GoString() string {
	return c.String()
}

// authHeaders builds the gateway authentication headers
func authHeaders(c Credentials) map[string]string {
	return map[string]string{
		"developer-id": c.DeveloperID,
		"user-id":      c.UserID,
		"user-api-key": c.APIKey,
	}
}
