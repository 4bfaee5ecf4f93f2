package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Markup Resolution Tests
// ==========================

func TestResolveMarkup_FieldPriority(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]interface{}
		want   string
		wantOK bool
	}{
		{
			name: "source wins over content and html",
			raw: map[string]interface{}{
				"source":  "<p>source</p>",
				"content": "<p>content</p>",
				"html":    "<p>html</p>",
			},
			want:   "<p>source</p>",
			wantOK: true,
		},
		{
			name: "content wins over html",
			raw: map[string]interface{}{
				"content": "<p>content</p>",
				"html":    "<p>html</p>",
			},
			want:   "<p>content</p>",
			wantOK: true,
		},
		{
			name: "primary field accepted without angle bracket",
			raw: map[string]interface{}{
				"content": "plain text body",
			},
			want:   "plain text body",
			wantOK: true,
		},
		{
			name: "empty primary field falls through to fallback",
			raw: map[string]interface{}{
				"content": "",
				"body":    "<div>fallback body</div>",
			},
			want:   "<div>fallback body</div>",
			wantOK: true,
		},
		{
			name: "fallback without markup marker is rejected",
			raw: map[string]interface{}{
				"body": "just a label",
			},
			wantOK: false,
		},
		{
			name: "design field counts only when it looks like markup",
			raw: map[string]interface{}{
				"design": "<div class=\"layout\"></div>",
			},
			want:   "<div class=\"layout\"></div>",
			wantOK: true,
		},
		{
			name: "fallback order body before htmlContent",
			raw: map[string]interface{}{
				"htmlContent": "<span>second</span>",
				"body":        "<span>first</span>",
			},
			want:   "<span>first</span>",
			wantOK: true,
		},
		{
			name: "non-string values are ignored",
			raw: map[string]interface{}{
				"content": 42,
				"body":    map[string]interface{}{"nested": "<p>x</p>"},
			},
			wantOK: false,
		},
		{
			name:   "empty template has no markup",
			raw:    map[string]interface{}{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveMarkup(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// ==========================
// Conversion Tests
// ==========================

func TestConvert_ModuleBlockBecomesSlot(t *testing.T) {
	markup := `<html><body>{% module_block module "left_column" %}<p>Hello {{ contact.firstname }}</p>{% end_module_block %}</body></html>`

	result := Convert(markup)

	require.Contains(t, result.Slots, "left_column")
	assert.Equal(t, "<p>Hello %%firstname%%</p>", result.Slots["left_column"].Content)
	assert.Contains(t, result.Content, `<div data-type="slot" data-key="left_column">`)
	assert.NotContains(t, result.Content, "module_block")
}

func TestConvert_InlineModuleBecomesEmptySlot(t *testing.T) {
	markup := `<div>{% module "banner" path="@hubspot/banner" %}</div>`

	result := Convert(markup)

	require.Contains(t, result.Slots, "banner")
	assert.Empty(t, result.Slots["banner"].Content)
	assert.Contains(t, result.Content, `<div data-type="slot" data-key="banner"></div>`)
}

func TestConvert_NoModulesGetsDefaultSlot(t *testing.T) {
	markup := "<html><body><h1>Static</h1></body></html>"

	result := Convert(markup)

	require.Len(t, result.Slots, 1)
	assert.Equal(t, markup, result.Slots["default"].Content)
	assert.Equal(t, markup, result.Content)
}

func TestConvert_TokenRewriting(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "contact token",
			markup: "<p>Hi {{ contact.firstname }}</p>",
			want:   "<p>Hi %%firstname%%</p>",
		},
		{
			name:   "company name site token",
			markup: "<footer>{{ site_settings.company_name }}</footer>",
			want:   "<footer>%%Member_Busname%%</footer>",
		},
		{
			name:   "unsubscribe link",
			markup: `<a href="{{ unsubscribe_link }}">Unsubscribe</a>`,
			want:   `<a href="%%unsub_center_url%%">Unsubscribe</a>`,
		},
		{
			name:   "generic token",
			markup: "<p>{{ subject }}</p>",
			want:   "<p>%%subject%%</p>",
		},
		{
			name:   "leftover hubl statements stripped",
			markup: `<div>{% if contact %}x{% endif %}</div>`,
			want:   "<div>x</div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Convert(tt.markup)
			assert.Equal(t, tt.want, result.Content)
		})
	}
}

// ==========================
// Channel Inference Tests
// ==========================

func TestConvert_ChannelInference(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		wantWeb bool
	}{
		{
			name:    "plain markup is web-safe",
			markup:  "<html><body>Generic page</body></html>",
			wantWeb: true,
		},
		{
			name:    "unsubscribe marker is email-only",
			markup:  `<a href="{{ unsubscribe_link }}">unsubscribe</a>`,
			wantWeb: false,
		},
		{
			name:    "contact token is email-only",
			markup:  "<p>Dear {{ contact.lastname }}</p>",
			wantWeb: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Convert(tt.markup)
			assert.True(t, result.Channels["email"], "email channel is always on")
			assert.Equal(t, tt.wantWeb, result.Channels["web"])
		})
	}
}
