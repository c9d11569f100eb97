package middleware

import (
	"fakti/internal/common"
	"fakti/internal/i18n"

	"github.com/labstack/echo/v4"
)

const headerAcceptLanguage = "Accept-Language"

// Language picks the request language from Accept-Language, falling back to
// defaultLang. Authenticated routes later override it with the user's own.
func Language(defaultLang string) echo.MiddlewareFunc {
	defaultLang = i18n.Normalize(defaultLang, i18n.English)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := i18n.Match(c.Request().Header.Get(headerAcceptLanguage))
			if lang == "" {
				lang = defaultLang
			}
			ctx := common.WithLanguage(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("Content-Language", lang)
			return next(c)
		}
	}
}
