package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/assettrack/assettrack-backend/internal/testutil"
)

func newTestStorage(t *testing.T) (StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	ss, err := NewStorageService(testutil.Logger(t), dir)
	if err != nil {
		t.Fatalf("NewStorageService: %v", err)
	}
	return ss, dir
}

func TestSaveAssetImageWritesFile(t *testing.T) {
	ss, dir := newTestStorage(t)
	assetID := uuid.New()

	path, err := ss.SaveAssetImage(context.Background(), assetID, "photo.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("SaveAssetImage: %v", err)
	}
	want := filepath.Join(dir, assetID.String(), "image", "photo.png")
	if path != want {
		t.Fatalf("stored path = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("stored content = %q", string(data))
	}
}

func TestSaveAssetImageRejectsExtension(t *testing.T) {
	ss, _ := newTestStorage(t)

	_, err := ss.SaveAssetImage(context.Background(), uuid.New(), "notes.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrFileNotAllowed) {
		t.Fatalf("expected ErrFileNotAllowed, got %v", err)
	}
}

func TestSaveAssetImageSanitizesTraversal(t *testing.T) {
	ss, dir := newTestStorage(t)
	assetID := uuid.New()

	path, err := ss.SaveAssetImage(context.Background(), assetID, "../../escape.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("SaveAssetImage: %v", err)
	}
	imageDir := filepath.Join(dir, assetID.String(), "image")
	if filepath.Dir(path) != imageDir {
		t.Fatalf("file escaped image dir: %s", path)
	}
}

func TestSaveIsIdempotentOnExistingDir(t *testing.T) {
	ss, _ := newTestStorage(t)
	assetID := uuid.New()

	if _, err := ss.SaveAssetImage(context.Background(), assetID, "a.png", strings.NewReader("1")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := ss.SaveAssetImage(context.Background(), assetID, "b.png", strings.NewReader("2")); err != nil {
		t.Fatalf("second save into existing dir: %v", err)
	}
}

func TestDeleteAttachmentFileMissingIsNoop(t *testing.T) {
	ss, dir := newTestStorage(t)

	if err := ss.DeleteAttachmentFile(context.Background(), filepath.Join(dir, "nope", "gone.png")); err != nil {
		t.Fatalf("deleting missing file should be a no-op, got %v", err)
	}
	if err := ss.DeleteAttachmentFile(context.Background(), ""); err != nil {
		t.Fatalf("deleting empty path should be a no-op, got %v", err)
	}
}

func TestDeleteAttachmentFileRemovesFile(t *testing.T) {
	ss, _ := newTestStorage(t)
	assetID := uuid.New()
	serviceID := uuid.New()

	path, err := ss.SaveServiceAttachment(context.Background(), assetID, serviceID, "receipt.jpg", strings.NewReader("jpg"))
	if err != nil {
		t.Fatalf("SaveServiceAttachment: %v", err)
	}
	if err := ss.DeleteAttachmentFile(context.Background(), path); err != nil {
		t.Fatalf("DeleteAttachmentFile: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file still present after delete: %v", err)
	}
}

func TestDeleteAssetDirRemovesTree(t *testing.T) {
	ss, dir := newTestStorage(t)
	assetID := uuid.New()

	if _, err := ss.SaveAssetImage(context.Background(), assetID, "a.png", strings.NewReader("1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ss.DeleteAssetDir(context.Background(), assetID); err != nil {
		t.Fatalf("DeleteAssetDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, assetID.String())); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("asset dir still present: %v", err)
	}
}
