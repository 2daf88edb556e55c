package generation

// DefaultLanguage is used when a request names none.
const DefaultLanguage = "es"

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
}

// LanguageName returns the English name of a supported language code.
func LanguageName(code string) (string, bool) {
	name, ok := languageNames[code]
	return name, ok
}
