package services

import (
	"io"

	"elpunto/internal/uploads"
)

// Submission is the outcome of an accepted write: the stored record and the
// confirmation shown to the user.
type Submission[T any] struct {
	Record  T
	Message string
}

// Upload is a file attached to a submission.
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileStore is the part of uploads.Store the pipeline needs.
type FileStore interface {
	Accept(r io.Reader, originalName string, naming uploads.Naming) (string, error)
	Remove(name string) error
}
