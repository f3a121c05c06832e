package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/types"
)

type ServiceAttachmentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, attachments []*types.ServiceAttachment) ([]*types.ServiceAttachment, error)
  GetByServiceIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) ([]*types.ServiceAttachment, error)
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, attachmentIDs []uuid.UUID) error
}

type serviceAttachmentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewServiceAttachmentRepo(db *gorm.DB, baseLog *logger.Logger) ServiceAttachmentRepo {
  repoLog := baseLog.With("repo", "ServiceAttachmentRepo")
  return &serviceAttachmentRepo{db: db, log: repoLog}
}

func (ar *serviceAttachmentRepo) Create(ctx context.Context, tx *gorm.DB, attachments []*types.ServiceAttachment) ([]*types.ServiceAttachment, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  if len(attachments) == 0 {
    return []*types.ServiceAttachment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&attachments).Error; err != nil {
    return nil, err
  }
  return attachments, nil
}

func (ar *serviceAttachmentRepo) GetByServiceIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) ([]*types.ServiceAttachment, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  var results []*types.ServiceAttachment
  if len(serviceIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("service_id IN ?", serviceIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *serviceAttachmentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, attachmentIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  if len(attachmentIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("id IN ?", attachmentIDs).
    Delete(&types.ServiceAttachment{}).Error; err != nil {
    return err
  }
  return nil
}
