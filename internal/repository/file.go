package repository

import (
	"context"

	"cmsapi/internal/model"
)

// FileRepository persists upload metadata and the morph links of files to
// resource rows.
type FileRepository interface {
	// Create inserts a file row. The returned value carries the assigned ID.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file with its links. Missing rows yield ErrNotFound.
	FindByID(ctx context.Context, id uint) (*model.File, error)

	// List returns a page of files, newest first, and the total matching rows.
	List(ctx context.Context, q FileQuery) (*PageResult[model.File], error)

	// Link attaches a file to a resource field. With replace set, existing
	// links of that field are removed first.
	Link(ctx context.Context, link *model.FileMorph, replace bool) error

	// Delete removes the links of a file and then the file row.
	Delete(ctx context.Context, id uint) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// FileQuery narrows a file listing to the files linked to a resource row
// and/or field. Zero values do not filter.
type FileQuery struct {
	PageQuery
	RelatedType string
	RelatedID   uint
	Field       string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
