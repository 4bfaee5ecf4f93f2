// Package converter transforms HubSpot template markup into the SFMC
// Content Builder content model. Everything here is pure; callers decide
// what to do with templates that have no resolvable markup.
package converter

import (
	"regexp"
	"strings"
)

// Slot is a named editable region in the destination template.
type Slot struct {
	Content string `json:"content,omitempty"`
}

// Converted is the destination-ready form of one template.
type Converted struct {
	Content  string          `json:"content"`
	Channels map[string]bool `json:"channels"`
	Slots    map[string]Slot `json:"slots"`
}

// primaryFields are authoritative markup holders checked in priority order.
var primaryFields = []string{"source", "content", "html"}

// fallbackFields are scanned when no primary field is set; a candidate only
// counts when its value looks like markup (contains '<').
var fallbackFields = []string{"body", "htmlContent", "htmlBody", "design", "template"}

// ResolveMarkup finds the authoritative markup field of a raw template.
// The second return is false when no field resolves; such templates are
// skipped upstream, never converted.
func ResolveMarkup(raw map[string]interface{}) (string, bool) {
	for _, field := range primaryFields {
		if value, ok := raw[field].(string); ok && value != "" {
			return value, true
		}
	}

	for _, field := range fallbackFields {
		if value, ok := raw[field].(string); ok && strings.Contains(value, "<") {
			return value, true
		}
	}

	return "", false
}

var (
	// {% module_block module "left_column" ... %} ... {% end_module_block %}
	moduleBlockRe = regexp.MustCompile(`(?s)\{%\s*module_block\b[^%}]*?"([^"]+)"[^%}]*%\}(.*?)\{%\s*end_module_block\s*%\}`)
	// {% module "banner" path="..." %}
	moduleInlineRe = regexp.MustCompile(`\{%\s*module\b[^%}]*?"([^"]+)"[^%}]*%\}`)
	// any leftover HubL statement tag
	hublStatementRe = regexp.MustCompile(`\{%[^%}]*%\}`)

	contactTokenRe = regexp.MustCompile(`\{\{\s*contact\.([A-Za-z0-9_]+)\s*\}\}`)
	genericTokenRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)
)

// siteTokenMapping maps HubSpot site/account tokens to the SFMC profile
// attributes conventionally holding the same value.
var siteTokenMapping = map[string]string{
	"{{ site_settings.company_name }}":             "%%Member_Busname%%",
	"{{ site_settings.company_street_address_1 }}": "%%Member_Addr%%",
	"{{ site_settings.company_city }}":             "%%Member_City%%",
	"{{ site_settings.company_state }}":            "%%Member_State%%",
	"{{ site_settings.company_zip }}":              "%%Member_PostalCode%%",
	"{{ unsubscribe_link }}":                       "%%unsub_center_url%%",
	"{{ unsubscribe_section }}":                    "%%unsub_center_url%%",
}

// Convert transforms one template's markup into destination content,
// channel flags and layout slots.
func Convert(markup string) *Converted {
	channels := inferChannels(markup)

	slots := map[string]Slot{}
	content := markup

	// Block modules keep their inner content as the slot default.
	content = moduleBlockRe.ReplaceAllStringFunc(content, func(match string) string {
		groups := moduleBlockRe.FindStringSubmatch(match)
		name, inner := groups[1], strings.TrimSpace(groups[2])
		slots[name] = Slot{Content: convertTokens(inner)}
		return `<div data-type="slot" data-key="` + name + `">` + inner + `</div>`
	})

	content = moduleInlineRe.ReplaceAllStringFunc(content, func(match string) string {
		name := moduleInlineRe.FindStringSubmatch(match)[1]
		if _, exists := slots[name]; !exists {
			slots[name] = Slot{}
		}
		return `<div data-type="slot" data-key="` + name + `"></div>`
	})

	content = convertTokens(content)
	content = hublStatementRe.ReplaceAllString(content, "")

	if len(slots) == 0 {
		slots["default"] = Slot{Content: content}
	}

	return &Converted{
		Content:  content,
		Channels: channels,
		Slots:    slots,
	}
}

// convertTokens rewrites HubL personalization tokens as AMPscript
// attribute strings.
func convertTokens(markup string) string {
	for hubl, ampscript := range siteTokenMapping {
		markup = strings.ReplaceAll(markup, hubl, ampscript)
	}
	markup = contactTokenRe.ReplaceAllString(markup, "%%$1%%")
	markup = genericTokenRe.ReplaceAllString(markup, "%%$1%%")
	return markup
}

// inferChannels flags delivery channels from structural markers in the
// source markup. Email is always on; markup carrying email-only markers
// (unsubscribe plumbing, contact personalization) is not web-safe.
func inferChannels(markup string) map[string]bool {
	emailOnly := strings.Contains(markup, "unsubscribe") || contactTokenRe.MatchString(markup)
	return map[string]bool{
		"email": true,
		"web":   !emailOnly,
	}
}
