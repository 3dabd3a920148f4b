// Package controller implements the credential-gated translation
// controller. It owns the session state of one translator window: source
// and translated text, the language pair, the API credential, the loading
// flag, the last error and whether the credential prompt is showing.
//
// Presentation layers drive the controller through its operations and
// render the State snapshots it hands to subscribers. At most one
// translation is in flight per controller; Translate is a silent no-op
// while one is running, when the source text is blank or when no
// credential is configured.
package controller
