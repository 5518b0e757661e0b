package paysafe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_NeverPrinted(t *testing.T) {
	creds := CredentialsFromSettings(testSettings())

	assert.Equal(t, "loc-123", creds.LocationID)
	assert.Equal(t, "api-key-secret", creds.APIKey)
	assert.True(t, creds.Sandbox)

	for _, format := range []string{"%v", "%+v", "%s", "%#v"} {
		printed := fmt.Sprintf(format, creds)
		assert.NotContains(t, printed, "api-key-secret", format)
		assert.NotContains(t, printed, "dev-456", format)
		assert.NotContains(t, printed, "user-789", format)
	}
}

func TestAuthHeaders(t *testing.T) {
	headers := authHeaders(CredentialsFromSettings(testSettings()))
	assert.Equal(t, map[string]string{
		"developer-id": "dev-456",
		"user-id":      "user-789",
		"user-api-key": "api-key-secret",
	}, headers)
}
