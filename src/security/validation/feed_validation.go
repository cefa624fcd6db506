package validation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/clinicboard/backend/src/logger"
)

// allowedFeedContentTypes lists the Content-Type values a CSV feed endpoint
// may legitimately declare. Published spreadsheet exports usually answer
// with text/csv, but plain text and the generic fallback occur in the wild.
var allowedFeedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// ValidateFeedContentType checks the Content-Type header of a feed response.
func ValidateFeedContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedFeedContentTypes[normalized] {
		logger.L.Warn("Disallowed feed Content-Type", "contentType", contentType)
		return fmt.Errorf("feed content type %q is not consistent with a CSV export", contentType)
	}
	return nil
}

// ValidateFeedContent sniffs the leading bytes of a feed body and rejects
// anything that is not text. A feed URL pointing at an HTML login page or a
// binary blob fails here instead of silently parsing to an empty dashboard.
func ValidateFeedContent(body []byte) error {
	sample := body
	if len(sample) > 512 {
		sample = sample[:512]
	}

	detected := http.DetectContentType(sample)
	detected = strings.ToLower(strings.Split(detected, ";")[0])

	allowedDetected := map[string]bool{
		"text/plain":      true,
		"text/csv":        true,
		"application/csv": true,
	}
	if !allowedDetected[detected] {
		logger.L.Warn("Feed body does not look like CSV", "detectedContentType", detected)
		return fmt.Errorf("feed body detected as %q, not a CSV export", detected)
	}
	return nil
}
