// Package i18n holds the English and Haitian Creole message catalogs. Message
// keys are the English strings; English output falls back to the key itself.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	English       = "en"
	HaitianCreole = "ht"
)

var (
	Supported = []language.Tag{language.English, language.Make(HaitianCreole)}
	matcher   = language.NewMatcher(Supported)
	cat       = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	ht := language.Make(HaitianCreole)
	for key, msg := range creole {
		_ = b.SetString(ht, key, msg)
	}
	return b
}

// IsSupported reports whether lang is one of the catalog languages.
func IsSupported(lang string) bool {
	return lang == English || lang == HaitianCreole
}

// Normalize returns lang when supported and fallback otherwise.
func Normalize(lang, fallback string) string {
	if IsSupported(lang) {
		return lang
	}
	return fallback
}

// Match picks the best catalog language for an Accept-Language header. It
// returns "" when the header names nothing we support.
func Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	base, _ := Supported[index].Base()
	return base.String()
}

// Printer returns a printer for lang, English when lang is unknown.
func Printer(lang string) *message.Printer {
	tag := language.English
	if lang == HaitianCreole {
		tag = language.Make(HaitianCreole)
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// T translates key into lang, formatting args into it.
func T(lang, key string, args ...any) string {
	return Printer(lang).Sprintf(key, args...)
}
