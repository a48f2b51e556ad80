package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ImagePrefix      = "images"
	AttachmentPrefix = "attachments"

	maxFilenameLen = 100
)

// NewKey derives a collision-resistant object key:
// <prefix>/<unix millis>-<random token>-<sanitized filename>.
func NewKey(prefix, filename string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d-%s-%s", prefix, time.Now().UnixMilli(), token, SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name and replaces characters that are
// awkward in object keys and URLs.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		name = ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	if len(out) > maxFilenameLen {
		out = out[len(out)-maxFilenameLen:]
	}
	return out
}
