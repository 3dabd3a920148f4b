package credentials

import (
	"context"

	"fyne.io/fyne/v2"
)

// PreferencesStore keeps slots in the fyne application's preferences, which
// fyne persists per application ID
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps prefs, usually fyne.App.Preferences()
func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

// Get implements Store
func (p *PreferencesStore) Get(_ context.Context, key string) (string, error) {
	return p.prefs.String(key), nil
}

// Set implements Store
func (p *PreferencesStore) Set(_ context.Context, key, value string) error {
	p.prefs.SetString(key, value)
	return nil
}
