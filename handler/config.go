package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/response"
)

// SettingsManager is the settings store behind the settings API
type SettingsManager interface {
	LoadSettings(storeID int) (config.PaySafeSettings, error)
	StoreValues(storeID int) map[string]string
	SaveSettings(storeID int, values map[string]string) error
	DeleteSettings(storeID int) error
	GetStats() map[string]any
}

// ConfigHandler handles the PaySafe settings of each store scope
type ConfigHandler struct {
	settings SettingsManager
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(settings SettingsManager) *ConfigHandler {
	return &ConfigHandler{
		settings: settings,
	}
}

// StoreSettings is the settings view of one store
type StoreSettings struct {
	StoreID   int                    `json:"storeId"`
	Effective config.PaySafeSettings `json:"effective"`
	Overrides map[string]string      `json:"overrides"`
}

// GetFields returns the settings descriptors with their locale hints
func (h *ConfigHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Settings fields retrieved", config.PaySafeSettingsFields())
}

// GetSettings returns the effective settings of a store and the values it overrides. Secrets are redacted.
func (h *ConfigHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDParam(w, r)
	if !ok {
		return
	}

	settings, err := h.settings.LoadSettings(storeID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	response.Success(w, http.StatusOK, "Settings retrieved", StoreSettings{
		StoreID:   storeID,
		Effective: settings.Redacted(),
		Overrides: redactValues(h.settings.StoreValues(storeID)),
	})
}

// SaveSettings writes the posted key/value pairs into a store scope
func (h *ConfigHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDParam(w, r)
	if !ok {
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.settings.SaveSettings(storeID, values); err != nil {
		if errors.Is(err, config.ErrInvalidSettings) {
			response.Error(w, http.StatusBadRequest, "Invalid settings", err)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	response.Success(w, http.StatusOK, "Settings saved", map[string]any{
		"storeId": storeID,
		"keys":    len(values),
	})
}

// DeleteSettings removes the overrides of a store scope
func (h *ConfigHandler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDParam(w, r)
	if !ok {
		return
	}

	if err := h.settings.DeleteSettings(storeID); err != nil {
		if errors.Is(err, config.ErrNoSettings) {
			response.Error(w, http.StatusNotFound, "Settings not found", err)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to delete settings", err)
		return
	}

	response.Success(w, http.StatusOK, "Settings deleted", map[string]any{"storeId": storeID})
}

// GetStats returns settings storage statistics
func (h *ConfigHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Statistics retrieved", h.settings.GetStats())
}

func storeIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	storeID, err := strconv.Atoi(chi.URLParam(r, "storeID"))
	if err != nil || storeID < 0 {
		response.Error(w, http.StatusBadRequest, "Invalid store ID", err)
		return 0, false
	}
	return storeID, true
}

// redactValues masks every secret field of a raw settings scope
func redactValues(values map[string]string) map[string]string {
	secret := make(map[string]bool)
	for _, field := range config.PaySafeSettingsFields() {
		if field.Secret {
			secret[field.Key] = true
		}
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		if secret[k] && v != "" {
			v = "***REDACTED***"
		}
		out[k] = v
	}
	return out
}
