package controller

import "strings"

// State is a snapshot of the session. It is a value; mutating a copy does
// not affect the controller.
type State struct {
	SourceText     string
	TranslatedText string
	SourceLang     string
	TargetLang     string

	// Credential is empty when no API key is configured
	Credential string

	IsLoading bool
	// ErrorMessage is set only by a failed translation
	ErrorMessage string

	CredentialDialogVisible bool
}

// HasCredential reports whether an API key is configured
func (s State) HasCredential() bool {
	return s.Credential != ""
}

// CanTranslate reports whether Translate would issue a request in this
// state
func (s State) CanTranslate() bool {
	return strings.TrimSpace(s.SourceText) != "" && s.HasCredential() && !s.IsLoading
}
