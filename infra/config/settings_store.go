package config

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// GlobalStoreID is the store scope every store falls back to
const GlobalStoreID = 0

// ErrInvalidSettings marks values rejected before anything is written
var ErrInvalidSettings = errors.New("invalid settings")

// Environment variables that seed the global scope
var settingsEnv = map[string]string{
	KeyUseSandbox:              "PAYSAFE_USE_SANDBOX",
	KeyTransactMode:            "PAYSAFE_TRANSACT_MODE",
	KeyLocationID:              "PAYSAFE_LOCATION_ID",
	KeyDeveloperID:             "PAYSAFE_DEVELOPER_ID",
	KeyUserID:                  "PAYSAFE_USER_ID",
	KeyUserAPIKey:              "PAYSAFE_USER_API_KEY",
	KeyAdditionalFee:           "PAYSAFE_ADDITIONAL_FEE",
	KeyAdditionalFeePercentage: "PAYSAFE_ADDITIONAL_FEE_PERCENTAGE",
	KeyRefundTolerance:         "PAYSAFE_REFUND_TOLERANCE",
}

// SettingsStore manages PaySafe settings per store scope
type SettingsStore struct {
	scopes  map[int]map[string]string
	storage *SQLiteStorage // nil means memory-only
	mu      sync.RWMutex
}

// NewSettingsStore creates a settings store backed by storage. A nil storage keeps settings in memory only.
func NewSettingsStore(storage *SQLiteStorage) *SettingsStore {
	store := &SettingsStore{
		scopes:  make(map[int]map[string]string),
		storage: storage,
	}

	if storage == nil {
		log.Printf("Warning: settings storage not available, using memory-only mode")
		return store
	}

	all, err := storage.LoadAllStoreSettings()
	if err != nil {
		log.Printf("Warning: Failed to load settings from SQLite: %v", err)
		return store
	}
	store.scopes = all

	return store
}

// OpenSettingsStore opens SQLite at path and falls back to memory-only mode when it cannot be opened
func OpenSettingsStore(path string) *SettingsStore {
	storage, err := NewSQLiteStorage(path)
	if err != nil {
		log.Printf("Warning: Failed to initialize SQLite storage (%v), falling back to memory-only mode", err)
		return NewSettingsStore(nil)
	}
	return NewSettingsStore(storage)
}

// LoadSettings returns the effective settings of a store: the global scope overlaid with the store's overrides
func (s *SettingsStore) LoadSettings(storeID int) (PaySafeSettings, error) {
	if storeID < 0 {
		return PaySafeSettings{}, fmt.Errorf("invalid store ID: %d", storeID)
	}

	s.mu.RLock()
	merged := make(map[string]string)
	for k, v := range s.scopes[GlobalStoreID] {
		merged[k] = v
	}
	if storeID != GlobalStoreID {
		for k, v := range s.scopes[storeID] {
			merged[k] = v
		}
	}
	s.mu.RUnlock()

	return PaySafeSettingsFromMap(merged)
}

// StoreValues returns a copy of the values stored for exactly one scope
func (s *SettingsStore) StoreValues(storeID int) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]string, len(s.scopes[storeID]))
	for k, v := range s.scopes[storeID] {
		values[k] = v
	}
	return values
}

// SaveSettings writes values into a store scope. An empty value drops that key from the scope.
// Values that would leave the store with unusable settings are rejected with ErrInvalidSettings.
func (s *SettingsStore) SaveSettings(storeID int, values map[string]string) error {
	if storeID < 0 {
		return fmt.Errorf("%w: invalid store ID: %d", ErrInvalidSettings, storeID)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: settings cannot be empty", ErrInvalidSettings)
	}
	if err := ValidateConfigValues(settingsName, values, PaySafeSettingsFields()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := PaySafeSettingsFromMap(s.mergedLocked(storeID, values)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if s.storage != nil {
		if err := s.storage.SaveStoreSettings(storeID, values); err != nil {
			return fmt.Errorf("failed to save settings to SQLite: %w", err)
		}
	}

	scope := s.scopes[storeID]
	if scope == nil {
		scope = make(map[string]string)
		s.scopes[storeID] = scope
	}
	for k, v := range values {
		if v == "" {
			delete(scope, k)
			continue
		}
		scope[k] = v
	}
	if len(scope) == 0 {
		delete(s.scopes, storeID)
	}

	return nil
}

// mergedLocked returns the effective values of storeID once values are applied
func (s *SettingsStore) mergedLocked(storeID int, values map[string]string) map[string]string {
	merged := make(map[string]string)
	for k, v := range s.scopes[GlobalStoreID] {
		merged[k] = v
	}
	if storeID != GlobalStoreID {
		for k, v := range s.scopes[storeID] {
			merged[k] = v
		}
	}
	for k, v := range values {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// DeleteSettings removes every value of a store scope
func (s *SettingsStore) DeleteSettings(storeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scopes[storeID]; !exists {
		return fmt.Errorf("%w for store: %d", ErrNoSettings, storeID)
	}

	if s.storage != nil {
		if err := s.storage.DeleteStoreSettings(storeID); err != nil && !errors.Is(err, ErrNoSettings) {
			return fmt.Errorf("failed to delete settings from SQLite: %w", err)
		}
	}

	delete(s.scopes, storeID)
	return nil
}

// Install writes the install defaults into the global scope unless it already holds settings
func (s *SettingsStore) Install() error {
	s.mu.RLock()
	_, installed := s.scopes[GlobalStoreID]
	s.mu.RUnlock()

	if installed {
		return nil
	}

	return s.SaveSettings(GlobalStoreID, DefaultPaySafeSettings().ToMap())
}

// Uninstall removes every stored setting of every scope
func (s *SettingsStore) Uninstall() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.DeleteAll(); err != nil {
			return fmt.Errorf("failed to delete settings from SQLite: %w", err)
		}
	}

	s.scopes = make(map[int]map[string]string)
	return nil
}

// LoadFromEnv writes the PAYSAFE_* variables that are set into the global scope
func (s *SettingsStore) LoadFromEnv() error {
	values := make(map[string]string)
	for key, env := range settingsEnv {
		if v := GetEnv(env, ""); v != "" {
			values[key] = v
		}
	}

	if len(values) == 0 {
		return nil
	}

	if err := s.SaveSettings(GlobalStoreID, values); err != nil {
		return fmt.Errorf("failed to load settings from environment: %w", err)
	}

	log.Printf("Loaded %d PaySafe settings from environment", len(values))
	return nil
}

// GetStats returns settings and storage statistics
func (s *SettingsStore) GetStats() map[string]any {
	stats := make(map[string]any)

	s.mu.RLock()
	stats["memory_scopes"] = len(s.scopes)
	s.mu.RUnlock()

	if s.storage == nil {
		stats["sqlite"] = "not_available"
		return stats
	}

	sqliteStats, err := s.storage.GetStats()
	if err != nil {
		stats["sqlite_error"] = err.Error()
	} else {
		stats["sqlite"] = sqliteStats
	}
	return stats
}

// Close releases the underlying storage
func (s *SettingsStore) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
