package languages

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrUnknownLanguage is returned when a code is not in the catalog
var ErrUnknownLanguage = errors.New("unknown language code")

// Default language pair used by a fresh session
const (
	DefaultSource = "en"
	DefaultTarget = "ja"
)

// Language is an immutable (code, display name) pair
type Language struct {
	Code string
	Name string
}

// Tag returns the BCP 47 tag for the language code
func (l Language) Tag() language.Tag {
	return language.Make(l.Code)
}

// String returns the display name
func (l Language) String() string {
	return l.Name
}

var catalog = []Language{
	{Code: "en", Name: "English"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "ar", Name: "Arabic"},
	{Code: "id", Name: "Bahasa Indonesia"},
	{Code: "bn", Name: "Bengali"},
	{Code: "bg", Name: "Bulgarian"},
	{Code: "zh", Name: "Chinese (Simplified)"},
	{Code: "zh-TW", Name: "Chinese (Traditional)"},
	{Code: "hr", Name: "Croatian"},
	{Code: "cs", Name: "Czech"},
	{Code: "da", Name: "Danish"},
	{Code: "nl", Name: "Dutch"},
	{Code: "et", Name: "Estonian"},
	{Code: "fa", Name: "Farsi"},
	{Code: "fi", Name: "Finnish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "gu", Name: "Gujarati"},
	{Code: "el", Name: "Greek"},
	{Code: "he", Name: "Hebrew"},
	{Code: "hi", Name: "Hindi"},
	{Code: "hu", Name: "Hungarian"},
	{Code: "it", Name: "Italian"},
	{Code: "kn", Name: "Kannada"},
	{Code: "lv", Name: "Latvian"},
	{Code: "lt", Name: "Lithuanian"},
	{Code: "ml", Name: "Malayalam"},
	{Code: "mr", Name: "Marathi"},
	{Code: "no", Name: "Norwegian"},
	{Code: "pl", Name: "Polish"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ro", Name: "Romanian"},
	{Code: "ru", Name: "Russian"},
	{Code: "sr", Name: "Serbian"},
	{Code: "sk", Name: "Slovak"},
	{Code: "sl", Name: "Slovenian"},
	{Code: "es", Name: "Spanish"},
	{Code: "sw", Name: "Swahili"},
	{Code: "sv", Name: "Swedish"},
	{Code: "ta", Name: "Tamil"},
	{Code: "te", Name: "Telugu"},
	{Code: "th", Name: "Thai"},
	{Code: "tr", Name: "Turkish"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "ur", Name: "Urdu"},
	{Code: "vi", Name: "Vietnamese"},
}

var byCode = make(map[string]Language, len(catalog))

func init() {
	for _, l := range catalog {
		if _, err := language.Parse(l.Code); err != nil {
			panic(fmt.Sprintf("languages: invalid code %q: %v", l.Code, err))
		}
		byCode[l.Code] = l
	}
}

// Lookup returns the language registered under code
func Lookup(code string) (Language, bool) {
	l, ok := byCode[code]
	return l, ok
}

// MustLookup is like Lookup but panics on unknown codes. Only use it with
// codes that are known to be in the catalog.
func MustLookup(code string) Language {
	l, ok := byCode[code]
	if !ok {
		panic(fmt.Sprintf("languages: %s: %q", ErrUnknownLanguage, code))
	}
	return l
}

// Name returns the display name for code, or "" if code is unknown
func Name(code string) string {
	return byCode[code].Name
}

// Validate returns ErrUnknownLanguage (wrapped with the code) when code is
// not in the catalog
func Validate(code string) error {
	if _, ok := byCode[code]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return nil
}

// All returns the catalog in display order
func All() []Language {
	// Return a copy to prevent external modification
	result := make([]Language, len(catalog))
	copy(result, catalog)
	return result
}

// Names returns the display names in catalog order
func Names() []string {
	names := make([]string, len(catalog))
	for i, l := range catalog {
		names[i] = l.Name
	}
	return names
}

// Codes returns the language codes in catalog order
func Codes() []string {
	codes := make([]string, len(catalog))
	for i, l := range catalog {
		codes[i] = l.Code
	}
	return codes
}

// CodeForName resolves a display name back to its code
func CodeForName(name string) (string, bool) {
	for _, l := range catalog {
		if l.Name == name {
			return l.Code, true
		}
	}
	return "", false
}
