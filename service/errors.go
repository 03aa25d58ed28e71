package service

import "errors"

// Validation failures happen before any write and leave no side effects.
var (
	ErrEmptyFile               = errors.New("file is empty")
	ErrFileTooLarge            = errors.New("file size exceeds the maximum limit")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrInvalidStatusTransition = errors.New("invalid media status transition")
)
