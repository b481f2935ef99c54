package render

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Slug converts a string into a safe filename fragment. Anything outside
// A-Z, a-z, 0-9, dot, underscore and hyphen becomes an underscore.
func Slug(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}

// OutputFilename computes the output PDF name for a job from the template
// name and a timestamp, e.g. "demo_20250919_123456.pdf". It is computed once
// at submission and fixed for the job's lifetime.
func OutputFilename(templateName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(templateName), filepath.Ext(templateName))
	return fmt.Sprintf("%s_%s.pdf", Slug(base), now.Format("20060102_150405"))
}
