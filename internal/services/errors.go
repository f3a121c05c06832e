package services

import (
  "errors"
)

// Sentinel errors let handlers map service failures onto HTTP statuses
// without string matching.
var (
  ErrValidation    = errors.New("validation failed")
  ErrAssetNotFound = errors.New("asset not found")
  ErrNotOwner      = errors.New("caller does not own this asset")
)
