package studio

import (
	"regexp"
	"strings"
)

var (
	reDataURL = regexp.MustCompile(`(?is)\bdata:(image|video|audio)/[a-z0-9+.-]+;base64,[a-z0-9+/=\r\n]+`)
	reControl = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// sanitizeText strips embedded media payloads and control characters from
// proposal metadata before it reaches logs or the ledger.
func sanitizeText(s string) string {
	s = reDataURL.ReplaceAllString(s, "[media removed]")
	s = reControl.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
