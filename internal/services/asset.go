package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "time"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/types"
  "github.com/assettrack/assettrack-backend/internal/repos"
)

const acquiredDateLayout = "2006-01-02"

// AssetInput carries the raw form fields for creating or editing an
// asset. AcquiredDate and Metadata arrive as strings and are validated
// here.
type AssetInput struct {
  Name         string
  AssetSN      string
  Description  string
  AcquiredDate string
  Metadata     string
}

// FileUpload pairs an uploaded file's original name with its content.
type FileUpload struct {
  Filename string
  File     io.Reader
}

// AssetView is the list/detail projection of an asset with the
// acquired date rendered as YYYY-MM-DD.
type AssetView struct {
  ID           uuid.UUID      `json:"id"`
  Name         string         `json:"name"`
  AssetSN      string         `json:"asset_sn"`
  Description  string         `json:"description"`
  AcquiredDate string         `json:"acquired_date"`
  ImagePath    string         `json:"image_path"`
  Metadata     datatypes.JSON `json:"metadata,omitempty"`
}

type AssetService interface {
  CreateAsset(ctx context.Context, userID uuid.UUID, input AssetInput, image *FileUpload) (*types.Asset, string, error)
  UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, input AssetInput, image *FileUpload) (*types.Asset, []*types.Service, string, error)
  ListAssets(ctx context.Context, userID uuid.UUID) ([]AssetView, error)
  GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*types.Asset, []*types.Service, error)
  DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) (string, error)
  CreateService(ctx context.Context, userID, assetID uuid.UUID, description string, serviceDate string, attachments []*FileUpload) (*types.Service, string, error)
}

type assetService struct {
  db              *gorm.DB
  log             *logger.Logger
  assetRepo       repos.AssetRepo
  serviceRepo     repos.ServiceRepo
  attachmentRepo  repos.ServiceAttachmentRepo
  storageService  StorageService
}

func NewAssetService(
  db *gorm.DB,
  log *logger.Logger,
  assetRepo repos.AssetRepo,
  serviceRepo repos.ServiceRepo,
  attachmentRepo repos.ServiceAttachmentRepo,
  storageService StorageService,
) AssetService {
  serviceLog := log.With("service", "AssetService")
  return &assetService{
    db:             db,
    log:            serviceLog,
    assetRepo:      assetRepo,
    serviceRepo:    serviceRepo,
    attachmentRepo: attachmentRepo,
    storageService: storageService,
  }
}

func (s *assetService) CreateAsset(ctx context.Context, userID uuid.UUID, input AssetInput, image *FileUpload) (*types.Asset, string, error) {
  asset := &types.Asset{
    Name:        input.Name,
    AssetSN:     input.AssetSN,
    Description: input.Description,
    UserID:      userID,
  }
  if err := s.applyInput(asset, input); err != nil {
    return nil, "", err
  }

  var warning string
  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    asset.ID = uuid.New()
    if _, cErr := s.assetRepo.Create(ctx, tx, []*types.Asset{asset}); cErr != nil {
      return fmt.Errorf("Failed to create asset: %w", cErr)
    }
    warning = s.attachImage(ctx, asset, image)
    if asset.ImagePath != "" {
      if uErr := s.assetRepo.Update(ctx, tx, asset); uErr != nil {
        return fmt.Errorf("Failed to save asset image path: %w", uErr)
      }
    }
    return nil
  })
  if err != nil {
    return nil, "", err
  }
  return asset, warning, nil
}

func (s *assetService) UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, input AssetInput, image *FileUpload) (*types.Asset, []*types.Service, string, error) {
  asset, services, err := s.GetAsset(ctx, userID, assetID)
  if err != nil {
    return nil, nil, "", err
  }

  asset.Name = input.Name
  asset.AssetSN = input.AssetSN
  asset.Description = input.Description
  if aErr := s.applyInput(asset, input); aErr != nil {
    return nil, nil, "", aErr
  }

  var warning string
  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    warning = s.attachImage(ctx, asset, image)
    if uErr := s.assetRepo.Update(ctx, tx, asset); uErr != nil {
      return fmt.Errorf("Failed to update asset: %w", uErr)
    }
    return nil
  })
  if err != nil {
    return nil, nil, "", err
  }
  return asset, services, warning, nil
}

func (s *assetService) ListAssets(ctx context.Context, userID uuid.UUID) ([]AssetView, error) {
  assets, err := s.assetRepo.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list assets: %w", err)
  }
  views := make([]AssetView, 0, len(assets))
  for _, a := range assets {
    acquired := ""
    if a.AcquiredDate != nil {
      acquired = a.AcquiredDate.Format(acquiredDateLayout)
    }
    views = append(views, AssetView{
      ID:           a.ID,
      Name:         a.Name,
      AssetSN:      a.AssetSN,
      Description:  a.Description,
      AcquiredDate: acquired,
      ImagePath:    a.ImagePath,
      Metadata:     a.Metadata,
    })
  }
  return views, nil
}

func (s *assetService) GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*types.Asset, []*types.Service, error) {
  assets, err := s.assetRepo.GetByIDs(ctx, nil, []uuid.UUID{assetID})
  if err != nil {
    return nil, nil, fmt.Errorf("Failed to load asset: %w", err)
  }
  if len(assets) == 0 {
    return nil, nil, ErrAssetNotFound
  }
  asset := assets[0]
  if asset.UserID != userID {
    return nil, nil, ErrNotOwner
  }
  services, sErr := s.serviceRepo.GetByAssetIDs(ctx, nil, []uuid.UUID{assetID})
  if sErr != nil {
    return nil, nil, fmt.Errorf("Failed to load services for asset: %w", sErr)
  }
  return asset, services, nil
}

// DeleteAsset removes the asset and everything hanging off it, children
// first: attachment files, attachment rows, service rows, asset row.
// All row deletes happen in one transaction; a file that is already
// gone is not an error.
func (s *assetService) DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) (string, error) {
  asset, services, err := s.GetAsset(ctx, userID, assetID)
  if err != nil {
    return "", err
  }

  var warning string
  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    serviceIDs := make([]uuid.UUID, 0, len(services))
    for _, svc := range services {
      serviceIDs = append(serviceIDs, svc.ID)
    }

    attachments, aErr := s.attachmentRepo.GetByServiceIDs(ctx, tx, serviceIDs)
    if aErr != nil {
      return fmt.Errorf("Failed to load attachments for asset: %w", aErr)
    }
    attachmentIDs := make([]uuid.UUID, 0, len(attachments))
    for _, att := range attachments {
      attachmentIDs = append(attachmentIDs, att.ID)
      if dErr := s.storageService.DeleteAttachmentFile(ctx, att.AttachmentPath); dErr != nil {
        // Row deletion still proceeds; the failure is reported, not hidden.
        s.log.Warn("Failed to delete attachment file during cascade", "attachment_id", att.ID, "error", dErr)
        warning = "some attachment files could not be removed from storage"
      }
    }

    if dErr := s.attachmentRepo.FullDeleteByIDs(ctx, tx, attachmentIDs); dErr != nil {
      return fmt.Errorf("Failed to delete attachments: %w", dErr)
    }
    if dErr := s.serviceRepo.FullDeleteByIDs(ctx, tx, serviceIDs); dErr != nil {
      return fmt.Errorf("Failed to delete services: %w", dErr)
    }
    if dErr := s.assetRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{asset.ID}); dErr != nil {
      return fmt.Errorf("Failed to delete asset: %w", dErr)
    }
    return nil
  })
  if err != nil {
    return warning, err
  }

  if dErr := s.storageService.DeleteAssetDir(ctx, asset.ID); dErr != nil {
    s.log.Warn("Failed to remove asset upload directory", "asset_id", asset.ID, "error", dErr)
    warning = "asset upload directory could not be fully removed"
  }
  return warning, nil
}

func (s *assetService) CreateService(ctx context.Context, userID, assetID uuid.UUID, description string, serviceDate string, attachments []*FileUpload) (*types.Service, string, error) {
  asset, _, err := s.GetAsset(ctx, userID, assetID)
  if err != nil {
    return nil, "", err
  }
  if description == "" {
    return nil, "", fmt.Errorf("%w: description is required", ErrValidation)
  }

  svc := &types.Service{
    AssetID:     asset.ID,
    UserID:      userID,
    Description: description,
  }
  if serviceDate != "" {
    parsed, pErr := time.Parse(acquiredDateLayout, serviceDate)
    if pErr != nil {
      return nil, "", fmt.Errorf("%w: service_date must be YYYY-MM-DD", ErrValidation)
    }
    svc.ServiceDate = &parsed
  }

  var warning string
  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    svc.ID = uuid.New()
    if _, cErr := s.serviceRepo.Create(ctx, tx, []*types.Service{svc}); cErr != nil {
      return fmt.Errorf("Failed to create service record: %w", cErr)
    }
    rows := []*types.ServiceAttachment{}
    for _, upload := range attachments {
      if upload == nil || upload.Filename == "" {
        continue
      }
      path, sErr := s.storageService.SaveServiceAttachment(ctx, asset.ID, svc.ID, upload.Filename, upload.File)
      if sErr != nil {
        s.log.Warn("Skipping service attachment", "filename", upload.Filename, "error", sErr)
        warning = appendWarning(warning, fmt.Sprintf("attachment %q was not stored", upload.Filename))
        continue
      }
      rows = append(rows, &types.ServiceAttachment{
        ID:             uuid.New(),
        ServiceID:      svc.ID,
        AttachmentPath: path,
      })
    }
    if _, cErr := s.attachmentRepo.Create(ctx, tx, rows); cErr != nil {
      return fmt.Errorf("Failed to create service attachments: %w", cErr)
    }
    svc.Attachments = rows
    return nil
  })
  if err != nil {
    return nil, "", err
  }
  return svc, warning, nil
}

// applyInput validates the required fields and parses the optional
// acquired date and metadata onto the asset.
func (s *assetService) applyInput(asset *types.Asset, input AssetInput) error {
  if input.Name == "" || input.AssetSN == "" {
    return fmt.Errorf("%w: name and asset_sn are required", ErrValidation)
  }
  if input.AcquiredDate != "" {
    parsed, err := time.Parse(acquiredDateLayout, input.AcquiredDate)
    if err != nil {
      return fmt.Errorf("%w: acquired_date must be YYYY-MM-DD", ErrValidation)
    }
    asset.AcquiredDate = &parsed
  } else {
    asset.AcquiredDate = nil
  }
  if input.Metadata != "" {
    if !json.Valid([]byte(input.Metadata)) {
      return fmt.Errorf("%w: metadata must be valid JSON", ErrValidation)
    }
    asset.Metadata = datatypes.JSON(input.Metadata)
  }
  return nil
}

// attachImage stores an uploaded image for the asset and sets its
// image path. Failures never abort the caller's transaction: the asset
// still commits, possibly without an image, and the reason comes back
// as a warning.
func (s *assetService) attachImage(ctx context.Context, asset *types.Asset, image *FileUpload) string {
  if image == nil {
    return ""
  }
  if image.Filename == "" {
    s.log.Info("No file selected for asset image", "asset_id", asset.ID)
    return ""
  }
  path, err := s.storageService.SaveAssetImage(ctx, asset.ID, image.Filename, image.File)
  if err != nil {
    if errors.Is(err, ErrFileNotAllowed) {
      s.log.Warn("Rejected asset image by extension", "asset_id", asset.ID, "filename", image.Filename)
      return fmt.Sprintf("image %q was rejected: only png, jpg, jpeg and gif files are allowed", image.Filename)
    }
    s.log.Error("Error uploading asset image", "asset_id", asset.ID, "error", err)
    return fmt.Sprintf("image %q could not be stored", image.Filename)
  }
  asset.ImagePath = path
  return ""
}

func appendWarning(existing, next string) string {
  if existing == "" {
    return next
  }
  return existing + "; " + next
}
