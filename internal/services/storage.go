package services

import (
  "context"
  "errors"
  "fmt"
  "io"
  "os"
  "path/filepath"
  "github.com/google/uuid"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/uploads"
)

var ErrFileNotAllowed = errors.New("file extension not allowed")

// StorageService persists uploaded files under the configured upload
// root, using the per-asset directory layout from the uploads package.
type StorageService interface {
  SaveAssetImage(ctx context.Context, assetID uuid.UUID, filename string, file io.Reader) (string, error)
  SaveServiceAttachment(ctx context.Context, assetID, serviceID uuid.UUID, filename string, file io.Reader) (string, error)
  DeleteAttachmentFile(ctx context.Context, attachmentPath string) error
  DeleteAssetDir(ctx context.Context, assetID uuid.UUID) error
}

type storageService struct {
  log     *logger.Logger
  baseDir string
}

func NewStorageService(log *logger.Logger, baseDir string) (StorageService, error) {
  serviceLog := log.With("service", "StorageService")
  if baseDir == "" {
    return nil, fmt.Errorf("Upload base directory is required")
  }
  if err := os.MkdirAll(baseDir, 0o755); err != nil {
    return nil, fmt.Errorf("Failed to create upload base directory: %w", err)
  }
  return &storageService{log: serviceLog, baseDir: baseDir}, nil
}

func (ss *storageService) SaveAssetImage(ctx context.Context, assetID uuid.UUID, filename string, file io.Reader) (string, error) {
  return ss.saveFile(ctx, uploads.ImageDir(ss.baseDir, assetID), filename, file)
}

func (ss *storageService) SaveServiceAttachment(ctx context.Context, assetID, serviceID uuid.UUID, filename string, file io.Reader) (string, error) {
  return ss.saveFile(ctx, uploads.AttachmentDir(ss.baseDir, assetID, serviceID), filename, file)
}

func (ss *storageService) saveFile(ctx context.Context, dir, filename string, file io.Reader) (string, error) {
  if filename == "" {
    return "", fmt.Errorf("No file selected")
  }
  if !uploads.AllowedFile(filename) {
    return "", fmt.Errorf("%w: %s", ErrFileNotAllowed, filename)
  }
  safeName := uploads.SanitizeFilename(filename)
  if safeName == "" {
    return "", fmt.Errorf("%w: %s", ErrFileNotAllowed, filename)
  }
  // MkdirAll tolerates an existing directory, so concurrent uploads to
  // the same asset cannot race on creation.
  if err := os.MkdirAll(dir, 0o755); err != nil {
    return "", fmt.Errorf("Failed to create upload directory %s: %w", dir, err)
  }
  path := filepath.Join(dir, safeName)
  out, err := os.Create(path)
  if err != nil {
    return "", fmt.Errorf("Failed to create file %s: %w", path, err)
  }
  if _, err := io.Copy(out, file); err != nil {
    _ = out.Close()
    _ = os.Remove(path)
    return "", fmt.Errorf("Failed to write file %s: %w", path, err)
  }
  if err := out.Close(); err != nil {
    return "", fmt.Errorf("Failed to close file %s: %w", path, err)
  }
  ss.log.Info("Stored uploaded file", "path", path)
  return path, nil
}

func (ss *storageService) DeleteAttachmentFile(ctx context.Context, attachmentPath string) error {
  if attachmentPath == "" {
    return nil
  }
  path := attachmentPath
  if !filepath.IsAbs(path) {
    path = filepath.Join(ss.baseDir, path)
  }
  if err := os.Remove(path); err != nil {
    if errors.Is(err, os.ErrNotExist) {
      ss.log.Debug("Attachment file already gone", "path", path)
      return nil
    }
    ss.log.Error("Failed to delete attachment file", "path", path, "error", err)
    return fmt.Errorf("Failed to delete attachment file %s: %w", path, err)
  }
  ss.log.Info("Deleted attachment file", "path", path)
  return nil
}

func (ss *storageService) DeleteAssetDir(ctx context.Context, assetID uuid.UUID) error {
  dir := uploads.AssetDir(ss.baseDir, assetID)
  if err := os.RemoveAll(dir); err != nil {
    ss.log.Error("Failed to delete asset upload directory", "dir", dir, "error", err)
    return fmt.Errorf("Failed to delete asset upload directory %s: %w", dir, err)
  }
  return nil
}
