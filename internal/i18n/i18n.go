// Package i18n holds the message catalog used for user-facing labels,
// mainly on the rendered invoice PDF. Spanish is the default language.
package i18n

import (
	"context"
	"strings"
)

const defaultLang = "es"

type ctxKey struct{}

var translations = map[string]map[string]string{
	"es": {
		"invoice":      "FACTURA",
		"number":       "Número",
		"date":         "Fecha",
		"client":       "Cliente",
		"project":      "Proyecto",
		"description":  "Descripción",
		"total":        "Total",
		"status":       "Estado",
		"payment_date": "Fecha de pago",
		"pending":      "Pendiente",
		"paid":         "Pagada",
		"cancelled":    "Cancelada",
		"not_started":  "Sin empezar",
		"in_progress":  "En Proceso",
		"done":         "Terminado",
	},
	"en": {
		"invoice":      "INVOICE",
		"number":       "Number",
		"date":         "Date",
		"client":       "Client",
		"project":      "Project",
		"description":  "Description",
		"total":        "Total",
		"status":       "Status",
		"payment_date": "Payment date",
		"pending":      "Pending",
		"paid":         "Paid",
		"cancelled":    "Cancelled",
		"not_started":  "Not started",
		"in_progress":  "In progress",
		"done":         "Done",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header
// value, falling back to Spanish.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(lang, "-;"); i >= 0 {
			lang = lang[:i]
		}
		if _, ok := translations[lang]; ok {
			return lang
		}
	}
	return defaultLang
}

// T translates a message code. Unknown languages fall back to the default
// catalog; unknown codes fall back to the code itself.
func T(lang, code string) string {
	catalog, ok := translations[lang]
	if !ok {
		catalog = translations[defaultLang]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	if msg, ok := translations[defaultLang][code]; ok {
		return msg
	}
	return code
}

// WithLang stores the request language in the context.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language, defaulting to Spanish.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return defaultLang
}
