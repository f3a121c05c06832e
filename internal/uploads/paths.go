// Package uploads maps asset and service record IDs to their on-disk
// upload locations and decides which filenames are admitted. Everything
// here is pure string work; callers own the filesystem side effects.
package uploads

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// AllowedFile reports whether the filename carries an admitted image
// extension. Only the extension is checked; content sniffing and size
// limits are enforced elsewhere (or not at all).
func AllowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	return allowedExtensions[ext]
}

// SanitizeFilename reduces an uploaded filename to a safe basename:
// directory components are dropped and anything outside
// [A-Za-z0-9_.-] collapses to underscores. Returns "" when nothing
// usable remains.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" || base == "." || base == ".." {
		return ""
	}
	return base
}

func AssetDir(baseDir string, assetID uuid.UUID) string {
	return filepath.Join(baseDir, assetID.String())
}

func ImageDir(baseDir string, assetID uuid.UUID) string {
	return filepath.Join(AssetDir(baseDir, assetID), "image")
}

func AttachmentDir(baseDir string, assetID, serviceID uuid.UUID) string {
	return filepath.Join(AssetDir(baseDir, assetID), "service_attachments", serviceID.String())
}
