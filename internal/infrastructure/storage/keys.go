package storage

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// SanitizeName returns an object-key-safe version of name.
// Path separators and parent references are removed along with anything
// outside letters, digits, hyphen and underscore.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}

// DocumentKey builds a unique key for an uploaded document:
// <organization>/<yyyy>/<mm>/<uuid>-<name><ext>
func DocumentKey(organizationID, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if SanitizeName(strings.TrimPrefix(ext, ".")) == "" {
		ext = ""
	}
	base := SanitizeName(strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), path.Ext(filename)))
	if len(base) > 64 {
		base = base[:64]
	}

	name := uuid.NewString()
	if base != "" {
		name += "-" + base
	}

	org := SanitizeName(organizationID)
	if org == "" {
		org = "shared"
	}
	return path.Join(org, now.UTC().Format("2006"), now.UTC().Format("01"), name+ext)
}

// ContentTypeFor guesses a content type from the file extension
func ContentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}
