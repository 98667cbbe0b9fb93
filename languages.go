package pageling

import "strings"

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// LanguageNames maps language codes to human-readable names. Used for
// machine-translation prompts and admin tooling output.
var LanguageNames = map[string]string{
	"en": "English",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"cs": "Czech",
	"da": "Danish",
	"sv": "Swedish",
	"fi": "Finnish",
	"el": "Greek",
	"hu": "Hungarian",
	"ro": "Romanian",
	"bg": "Bulgarian",
	"hr": "Croatian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"et": "Estonian",
	"ru": "Russian",
	"uk": "Ukrainian",
	"tr": "Turkish",
	"ar": "Arabic",
	"he": "Hebrew",
	"fa": "Persian",
	"hi": "Hindi",
	"bn": "Bengali",
	"id": "Indonesian",
	"ms": "Malay",
	"th": "Thai",
	"vi": "Vietnamese",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lng string) string {
	base := strings.ToLower(strings.SplitN(NormalizeLocale(lng), "_", 2)[0])
	if name, ok := LanguageNames[base]; ok {
		return name
	}
	return lng
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(lng string) string {
	base := strings.ToLower(strings.SplitN(NormalizeLocale(lng), "_", 2)[0])
	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(lng string) bool {
	return GetDirection(lng) == "rtl"
}

// NormalizeLocale converts a language code to underscore format ("es-ES" → "es_ES").
func NormalizeLocale(lng string) string {
	return strings.ReplaceAll(lng, "-", "_")
}

// ToHTMLLang converts a language code to HTML lang attribute format ("es_ES" → "es-ES").
func ToHTMLLang(lng string) string {
	return strings.ReplaceAll(lng, "_", "-")
}
