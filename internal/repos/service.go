package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/types"
)

type ServiceRepo interface {
  Create(ctx context.Context, tx *gorm.DB, services []*types.Service) ([]*types.Service, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) ([]*types.Service, error)
  GetByAssetIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Service, error)
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) error
}

type serviceRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewServiceRepo(db *gorm.DB, baseLog *logger.Logger) ServiceRepo {
  repoLog := baseLog.With("repo", "ServiceRepo")
  return &serviceRepo{db: db, log: repoLog}
}

func (sr *serviceRepo) Create(ctx context.Context, tx *gorm.DB, services []*types.Service) ([]*types.Service, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(services) == 0 {
    return []*types.Service{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&services).Error; err != nil {
    return nil, err
  }
  return services, nil
}

func (sr *serviceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) ([]*types.Service, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Service
  if len(serviceIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", serviceIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *serviceRepo) GetByAssetIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Service, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Service
  if len(assetIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("asset_id IN ?", assetIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *serviceRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, serviceIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(serviceIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("id IN ?", serviceIDs).
    Delete(&types.Service{}).Error; err != nil {
    return err
  }
  return nil
}
