package handlers

import (
  "fmt"
  "mime/multipart"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/requestdata"
  "github.com/assettrack/assettrack-backend/internal/services"
)

type AssetHandler struct {
  log           *logger.Logger
  assetService  services.AssetService
}

func NewAssetHandler(log *logger.Logger, assetService services.AssetService) *AssetHandler {
  return &AssetHandler{
    log:          log.With("handler", "AssetHandler"),
    assetService: assetService,
  }
}

// POST /asset_add
// Multipart form: name, asset_sn (required), description, acquired_date
// (YYYY-MM-DD), metadata (JSON), optional image file under "image" (or
// the legacy "file" field).
func (h *AssetHandler) AddAsset(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  input := assetInputFromForm(c)

  image, closeImage, err := formImage(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_upload", err)
    return
  }
  defer closeImage()

  asset, warning, err := h.assetService.CreateAsset(c.Request.Context(), userID, input, image)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  resp := gin.H{
    "message":     fmt.Sprintf("Successfully created asset %s", asset.Name),
    "status_code": http.StatusOK,
    "asset":       asset,
  }
  if warning != "" {
    resp["warning"] = warning
  }
  RespondOK(c, resp)
}

// POST /asset_edit/:id
func (h *AssetHandler) EditAsset(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrAssetNotFound)
    return
  }
  input := assetInputFromForm(c)

  image, closeImage, err := formImage(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_upload", err)
    return
  }
  defer closeImage()

  asset, assetServices, warning, err := h.assetService.UpdateAsset(c.Request.Context(), userID, assetID, input, image)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  resp := gin.H{
    "message":     fmt.Sprintf("Successfully updated asset %s", asset.Name),
    "status_code": http.StatusOK,
    "asset":       asset,
    "services":    assetServices,
    "updated":     true,
  }
  if warning != "" {
    resp["warning"] = warning
  }
  RespondOK(c, resp)
}

// GET /asset_all
func (h *AssetHandler) ListAssets(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  views, err := h.assetService.ListAssets(c.Request.Context(), userID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusOK, views)
}

// GET /asset_get/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrAssetNotFound)
    return
  }
  asset, assetServices, err := h.assetService.GetAsset(c.Request.Context(), userID, assetID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"asset": asset, "services": assetServices})
}

// POST /asset_delete/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrAssetNotFound)
    return
  }
  warning, err := h.assetService.DeleteAsset(c.Request.Context(), userID, assetID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  resp := gin.H{
    "message":     fmt.Sprintf("Successfully deleted asset %s", assetID),
    "status_code": http.StatusOK,
  }
  if warning != "" {
    resp["warning"] = warning
  }
  RespondOK(c, resp)
}

// POST /service_add/:asset_id
// Multipart form: description (required), service_date (YYYY-MM-DD),
// any number of files under "attachments".
func (h *AssetHandler) AddService(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assetID, err := uuid.Parse(c.Param("asset_id"))
  if err != nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrAssetNotFound)
    return
  }

  uploads, closeAll, err := formAttachments(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_upload", err)
    return
  }
  defer closeAll()

  svc, warning, err := h.assetService.CreateService(
    c.Request.Context(),
    userID,
    assetID,
    c.PostForm("description"),
    c.PostForm("service_date"),
    uploads,
  )
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  resp := gin.H{
    "message":     "Successfully created service record",
    "status_code": http.StatusOK,
    "service":     svc,
  }
  if warning != "" {
    resp["warning"] = warning
  }
  RespondOK(c, resp)
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing caller identity"))
    return uuid.Nil, false
  }
  return rd.UserID, true
}

func assetInputFromForm(c *gin.Context) services.AssetInput {
  return services.AssetInput{
    Name:         c.PostForm("name"),
    AssetSN:      c.PostForm("asset_sn"),
    Description:  c.PostForm("description"),
    AcquiredDate: c.PostForm("acquired_date"),
    Metadata:     c.PostForm("metadata"),
  }
}

// formImage pulls the optional image upload from the "image" field,
// falling back to the legacy "file" field used by older API clients.
func formImage(c *gin.Context) (*services.FileUpload, func(), error) {
  noop := func() {}
  header, err := c.FormFile("image")
  if err != nil {
    header, err = c.FormFile("file")
  }
  if err != nil || header == nil {
    return nil, noop, nil
  }
  f, oErr := header.Open()
  if oErr != nil {
    return nil, noop, fmt.Errorf("failed to read uploaded file: %w", oErr)
  }
  return &services.FileUpload{Filename: header.Filename, File: f}, func() { _ = f.Close() }, nil
}

func formAttachments(c *gin.Context) ([]*services.FileUpload, func(), error) {
  noop := func() {}
  form, err := c.MultipartForm()
  if err != nil || form == nil {
    return nil, noop, nil
  }
  var opened []multipart.File
  var uploads []*services.FileUpload
  for _, header := range form.File["attachments"] {
    f, oErr := header.Open()
    if oErr != nil {
      for _, o := range opened {
        _ = o.Close()
      }
      return nil, noop, fmt.Errorf("failed to read uploaded file %q: %w", header.Filename, oErr)
    }
    opened = append(opened, f)
    uploads = append(uploads, &services.FileUpload{Filename: header.Filename, File: f})
  }
  closeAll := func() {
    for _, o := range opened {
      _ = o.Close()
    }
  }
  return uploads, closeAll, nil
}
