package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestResolveTag_QueryParam(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/posts?lang=de", nil)
	tag, persist := ResolveTag(req)
	if tag != language.German {
		t.Fatalf("tag = %v, want %v", tag, language.German)
	}
	if !persist {
		t.Fatal("persist = false, want true")
	}
}

func TestResolveTag_Cookie(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/posts", nil)
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "de"})
	tag, persist := ResolveTag(req)
	if tag != language.German {
		t.Fatalf("tag = %v, want %v", tag, language.German)
	}
	if persist {
		t.Fatal("persist = true, want false")
	}
}

func TestResolveTag_AcceptLanguage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/posts", nil)
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,en;q=0.5")
	tag, _ := ResolveTag(req)
	if tag != language.German {
		t.Fatalf("tag = %v, want %v", tag, language.German)
	}
}

func TestResolveTag_UnsupportedFallsBack(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/posts?lang=fr", nil)
	tag, persist := ResolveTag(req)
	if tag != Default() {
		t.Fatalf("tag = %v, want default %v", tag, Default())
	}
	if persist {
		t.Fatal("persist = true, want false")
	}
}

func TestResolveTag_RegionalVariant(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "http://example.com/posts?lang=de-AT", nil)
	tag, _ := ResolveTag(req)
	if tag != language.German {
		t.Fatalf("tag = %v, want %v", tag, language.German)
	}
}

func TestSetLanguageCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SetLanguageCookie(rec, language.German)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if cookies[0].Name != LangCookieName || cookies[0].Value != "de" {
		t.Fatalf("cookie = %s=%s, want %s=de", cookies[0].Name, cookies[0].Value, LangCookieName)
	}
}

func TestPrinterMessages(t *testing.T) {
	t.Parallel()

	en := Printer(language.English)
	if got := en.Sprintf(SubmitKey); got != "Submit" {
		t.Fatalf("en submit = %q, want %q", got, "Submit")
	}
	if got := en.Sprintf(EditTitleKey, "Post"); got != "Edit Post" {
		t.Fatalf("en edit title = %q, want %q", got, "Edit Post")
	}

	de := Printer(language.German)
	if got := de.Sprintf(SubmitKey); got != "Speichern" {
		t.Fatalf("de submit = %q, want %q", got, "Speichern")
	}
	if got := de.Sprintf(CreateTitleKey, "Post"); got != "Post erstellen" {
		t.Fatalf("de create title = %q, want %q", got, "Post erstellen")
	}
}
