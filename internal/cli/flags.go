package cli

import (
	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	SourceLang    string
	TargetLang    string
	BatchFile     string
	OutputFile    string
	SetKey        string
	APIKey        string
	ListLanguages bool
	ListModels    bool
	Verbose       bool

	// Translator flags
	Backend          string
	Model            string
	BaseURL          string
	AuthHeader       string
	BreakerThreshold uint32

	// Credential store flags
	StoreBackend string
	StorePath    string
	StoreDSN     string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	defaults := translation.DefaultConfig()
	return &Flags{
		SourceLang:       languages.DefaultSource,
		TargetLang:       languages.DefaultTarget,
		Backend:          defaults.Backend,
		Model:            defaults.Model,
		BaseURL:          defaults.BaseURL,
		AuthHeader:       defaults.AuthHeader,
		BreakerThreshold: defaults.BreakerThreshold,
		StoreBackend:     credentials.BackendFile,
	}
}
