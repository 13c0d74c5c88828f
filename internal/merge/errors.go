package merge

import "errors"

var (
	ErrMissingVariant        = errors.New("no variant for target platform")
	ErrAmbiguousVariant      = errors.New("more than one variant for target platform")
	ErrDuplicateResourcePath = errors.New("resource path used by more than one variant")
	ErrInvalidVariant        = errors.New("invalid variant")
	ErrAlreadyConfigured     = errors.New("archive already configured")
	ErrNoArchive             = errors.New("no primary archive")
)
