// Package i18n provides locale resolution and message printing for the
// admin UI. Messages are registered per locale in messages_*.go files.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "cms_lang"
)

// Message keys shared by every locale catalog.
const (
	SubmitKey        = "entity-inputs-submit"
	ListAddKey       = "enitity-list-add"
	EditTitleKey     = "edit-entity-title"
	CreateTitleKey   = "create-entity-title"
	DeleteKey        = "entity-delete"
	ImageAltTextKey  = "image-alt-text"
	GoBackKey        = "go-back"
	ErrorTitleKey    = "error-title"
	NotFoundTitleKey = "not-found-title"
)

var supported = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(supported)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supported))
	copy(tags, supported)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return supported[0]
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag determines the best language tag for the request.
// The bool indicates whether the lang query param should be persisted as a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := parseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := parseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return matchTags(tags), false
		}
	}

	return Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// parseTag matches a single tag value against the supported set.
func parseTag(value string) (language.Tag, bool) {
	tag, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return language.Tag{}, false
	}
	return supported[idx], true
}

// matchTags picks the best supported tag for an Accept-Language list.
func matchTags(tags []language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}
