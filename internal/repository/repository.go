// Package repository defines the persistence contracts. Implementations live
// in subpackages (gormrepo) and contain no business logic.
package repository

import (
	"context"
	"errors"

	"cmsapi/internal/filter"
	"cmsapi/internal/schema"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidData is returned when column data does not decode into the model.
var ErrInvalidData = errors.New("invalid data")

// ResourceRepository is the data access contract of one schema-described
// resource. T is the gorm model of the resource.
type ResourceRepository[T any] interface {
	// FindAll applies the filter conditions, sort and window, then eager-loads populate.
	FindAll(ctx context.Context, f *filter.Filter, populate []string) ([]T, error)

	// FindByID loads one row with eager loading. Missing rows yield ErrNotFound.
	FindByID(ctx context.Context, id uint, populate []string) (*T, error)

	// Count applies only the where-conditions of f.
	Count(ctx context.Context, f *filter.Filter) (int64, error)

	// Search matches term against the attributes grouped by plan, OR-ed
	// together, then applies sort, window and eager loading from f.
	Search(ctx context.Context, plan schema.SearchPlan, term filter.SearchTerm, f *filter.Filter, populate []string) ([]T, error)

	// Create inserts column data and returns the stored row.
	Create(ctx context.Context, data map[string]any) (*T, error)

	// Update writes column data to an existing row. Missing rows yield ErrNotFound.
	Update(ctx context.Context, id uint, data map[string]any) error

	// Delete removes a row by primary key.
	Delete(ctx context.Context, id uint) error

	// UpdateRelations synchronizes the given associations (alias -> related
	// identifiers) of row id in a single transaction.
	UpdateRelations(ctx context.Context, id uint, values map[string]any) error

	// RelatedIDs returns the identifiers currently linked through alias.
	RelatedIDs(ctx context.Context, id uint, alias string) ([]uint, error)
}
