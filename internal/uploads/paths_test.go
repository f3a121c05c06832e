package uploads

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestAllowedFile(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"photo.JPG", true},
		{"photo.png", true},
		{"a.b.png", true},
		{"animation.gif", true},
		{"doc.pdf", false},
		{"noext", false},
		{"", false},
		{"archive.tar.gz", false},
	}
	for _, tc := range cases {
		if got := AllowedFile(tc.filename); got != tc.want {
			t.Errorf("AllowedFile(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\boot.ini", "boot.ini"},
		{"my photo (1).jpg", "my_photo_1_.jpg"},
		{"...", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPathsAreDeterministic(t *testing.T) {
	base := "uploads"
	assetID := uuid.New()
	if ImageDir(base, assetID) != ImageDir(base, assetID) {
		t.Fatalf("ImageDir is not stable across calls")
	}
	if AssetDir(base, assetID) != filepath.Join(base, assetID.String()) {
		t.Fatalf("AssetDir layout changed: %s", AssetDir(base, assetID))
	}
	if ImageDir(base, assetID) != filepath.Join(base, assetID.String(), "image") {
		t.Fatalf("ImageDir layout changed: %s", ImageDir(base, assetID))
	}
}

func TestAttachmentDirsDifferByService(t *testing.T) {
	base := "uploads"
	assetID := uuid.New()
	svcA := uuid.New()
	svcB := uuid.New()
	dirA := AttachmentDir(base, assetID, svcA)
	dirB := AttachmentDir(base, assetID, svcB)
	if dirA == dirB {
		t.Fatalf("attachment dirs for different services collide: %s", dirA)
	}
	if dirA != filepath.Join(base, assetID.String(), "service_attachments", svcA.String()) {
		t.Fatalf("AttachmentDir layout changed: %s", dirA)
	}
}
