// Package i18n translates interface strings and formats numbers, prices and
// dates for the portal's three languages: English, Bengali and Arabic.
//
// Translation tables are flat or nested JSON (or YAML) objects stored as
// {lang}.json in an fs.FS. Nested objects are addressed with dotted keys:
//
//	{"nav": {"home": "Home"}, "greeting": "Hello, {name}"}
//
//	tr := i18n.New(web.Lang)
//	tr.Translate("bn", "nav.home", nil)
//	tr.Translate("en", "greeting", map[string]any{"name": "Asha"})
//
// A missing table falls back to English and a missing key is returned as is.
// Tables are cached in memory until ClearCache.
//
// The visitor's language is chosen by Negotiate: an explicit ?lang parameter,
// then the session, then the Accept-Language header, then English.
package i18n
