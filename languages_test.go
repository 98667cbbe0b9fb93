package pageling

import "testing"

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		lng  string
		want string
	}{
		{"en", "English"},
		{"de", "German"},
		{"es_ES", "Spanish"},
		{"pt-BR", "Portuguese"},
		{"ZH", "Chinese"},
		{"xx", "xx"}, // unknown falls back to the code
	}
	for _, tt := range tests {
		if got := GetLanguageName(tt.lng); got != tt.want {
			t.Errorf("GetLanguageName(%q) = %q, want %q", tt.lng, got, tt.want)
		}
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		lng  string
		want string
	}{
		{"en", "ltr"},
		{"ar", "rtl"},
		{"ar_SA", "rtl"},
		{"he", "rtl"},
		{"fa", "rtl"},
		{"de", "ltr"},
		{"xx", "ltr"},
	}
	for _, tt := range tests {
		if got := GetDirection(tt.lng); got != tt.want {
			t.Errorf("GetDirection(%q) = %q, want %q", tt.lng, got, tt.want)
		}
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("ar") {
		t.Error("Arabic should be RTL")
	}
	if IsRTL("en") {
		t.Error("English should not be RTL")
	}
}

func TestNormalizeLocale(t *testing.T) {
	if got := NormalizeLocale("es-ES"); got != "es_ES" {
		t.Errorf("NormalizeLocale(es-ES) = %q", got)
	}
	if got := NormalizeLocale("es_ES"); got != "es_ES" {
		t.Errorf("NormalizeLocale(es_ES) = %q", got)
	}
}

func TestToHTMLLang(t *testing.T) {
	if got := ToHTMLLang("es_ES"); got != "es-ES" {
		t.Errorf("ToHTMLLang(es_ES) = %q", got)
	}
	if got := ToHTMLLang("de"); got != "de" {
		t.Errorf("ToHTMLLang(de) = %q", got)
	}
}
