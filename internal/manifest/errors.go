package manifest

import "errors"

var (
	ErrLoad     = errors.New("manifest load failed")
	ErrInvalid  = errors.New("invalid manifest")
	ErrNotFound = errors.New("manifest not found")
)
