package sanitize

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// DateFormat is the only accepted date layout for resource date fields.
const DateFormat = "2006-01-02"

// strict strips every HTML element and escapes what remains.
var strict = bluemonday.StrictPolicy()

// Clean trims a free-text value, strips markup, and escapes special
// characters. The result is safe to store and echo back inside a JSON
// envelope rendered into HTML by the admin frontend.
func Clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// ValidEmail reports whether s is a plain RFC 5322 address. Display-name
// forms ("Alice <alice@example.edu>") are rejected.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// ValidURL reports whether s is an absolute http(s) URL.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidDate reports whether s is a YYYY-MM-DD date. The parsed value must
// format back to the input, so "2024-02-30" and "2024-1-2" are rejected.
func ValidDate(s string) bool {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return false
	}
	return t.Format(DateFormat) == s
}
