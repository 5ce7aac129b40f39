// Package i18n provides localized error messages for the API surfaces.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from the errors
// package to avoid an import cycle).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var catalogs = []*Catalog{enUSCatalog, jaJPCatalog}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // en-US is the base locale
	language.Japanese,
})

// Match resolves an Accept-Language header value to a catalog.
// Unknown or empty values fall back to en-US.
func Match(acceptLanguage string) *Catalog {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return enUSCatalog
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return enUSCatalog
	}
	_, index, _ := matcher.Match(tags...)
	if index < 0 || index >= len(catalogs) {
		return enUSCatalog
	}
	return catalogs[index]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Falls back to the code itself if no template is found or the template
// fails to render.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		if c != enUSCatalog {
			return enUSCatalog.Format(code, metadata)
		}
		return code
	}

	parsed, err := template.New(code).Parse(tmpl)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, metadata); err != nil {
		return code
	}
	return buf.String()
}
