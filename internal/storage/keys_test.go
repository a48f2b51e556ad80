package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "receipt.pdf", "receipt.pdf"},
		{"spaces", "my photo.JPG", "my_photo.JPG"},
		{"path", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\manual.pdf`, "manual.pdf"},
		{"empty", "  ", "file"},
		{"dots only", "...", "file"},
		{"unicode", "写真.png", "__.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestNewKeyIsUniquePerCall(t *testing.T) {
	a := NewKey(ImagePrefix, "photo.png")
	b := NewKey(ImagePrefix, "photo.png")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "images/"))
	assert.True(t, strings.HasSuffix(a, "-photo.png"))
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 150) + ".pdf"
	got := SanitizeFilename(long)
	assert.Len(t, got, maxFilenameLen)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}
