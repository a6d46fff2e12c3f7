package whisperx

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLanguage canonicalizes a WhisperX language code to its ISO 639-1
// base tag (e.g. "EN", "eng" -> "en"). Unknown values pass through trimmed.
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return strings.ToLower(code)
	}
	return base.String()
}

// LanguageDisplayName returns the English display name for a language code,
// falling back to the code itself when it cannot be resolved.
func LanguageDisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
