package build

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
	ErrCommandFailed       = errors.New("command failed")
	ErrArchive             = errors.New("archive failed")
	ErrUnknownStep         = errors.New("unknown step")
	ErrDuplicateStep       = errors.New("duplicate step")
	ErrCycle               = errors.New("dependency cycle")
	ErrMissingOutput       = errors.New("step did not produce its output")
)
