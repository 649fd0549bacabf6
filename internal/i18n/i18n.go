// Package i18n localizes the short notices rendered by the access gate.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgLoading      = "Loading…"
	MsgLoadingHint  = "Checking your session, please wait."
	MsgDenied       = "Access denied"
	MsgDeniedHint   = "You do not have permission to view this page."
	MsgSignInPrompt = "Sign in with an authorised account to continue."
)

var supported = []language.Tag{language.English, language.Indonesian}

// Localizer resolves a printer for a request.
type Localizer struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a Localizer. defaultLang is used when the request expresses no
// supported preference; unknown values fall back to English.
func New(defaultLang string) *Localizer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, m := range []struct {
		key, en, id string
	}{
		{MsgLoading, "Loading…", "Memuat…"},
		{MsgLoadingHint, "Checking your session, please wait.", "Memeriksa sesi Anda, mohon tunggu."},
		{MsgDenied, "Access denied", "Akses ditolak"},
		{MsgDeniedHint, "You do not have permission to view this page.", "Anda tidak memiliki izin untuk melihat halaman ini."},
		{MsgSignInPrompt, "Sign in with an authorised account to continue.", "Masuk dengan akun yang berwenang untuk melanjutkan."},
	} {
		_ = b.SetString(language.English, m.key, m.en)
		_ = b.SetString(language.Indonesian, m.key, m.id)
	}

	fallback := language.English
	if tag, err := language.Parse(defaultLang); err == nil {
		_, idx, conf := language.NewMatcher(supported).Match(tag)
		if conf != language.No {
			fallback = supported[idx]
		}
	}
	return &Localizer{catalog: b, matcher: language.NewMatcher(supported), fallback: fallback}
}

// Tag picks the language for r from the lang query parameter, the lang cookie, then
// Accept-Language.
func (l *Localizer) Tag(r *http.Request) language.Tag {
	var prefs []string
	if q := r.URL.Query().Get("lang"); q != "" {
		prefs = append(prefs, q)
	}
	if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
		prefs = append(prefs, c.Value)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		prefs = append(prefs, accept)
	}
	var tags []language.Tag
	for _, p := range prefs {
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return l.fallback
	}
	return supported[idx]
}

// Printer returns a message printer for r.
func (l *Localizer) Printer(r *http.Request) *message.Printer {
	return message.NewPrinter(l.Tag(r), message.Catalog(l.catalog))
}
