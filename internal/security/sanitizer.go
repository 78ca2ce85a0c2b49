package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// textEntities undoes the escaping bluemonday applies to plain punctuation.
// Angle brackets stay escaped.
var textEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// SanitizeString trims whitespace and removes null bytes.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText prepares free text typed by a user (status messages, request
// messages, nicknames) for storage: markup is stripped, then the result is
// trimmed. Ampersands and quotes are restored to plain text; angle brackets
// are left as &lt; and &gt;.
func SanitizeText(input string) string {
	cleaned := SanitizeHTML(SanitizeString(input))
	return strings.TrimSpace(textEntities.Replace(cleaned))
}
