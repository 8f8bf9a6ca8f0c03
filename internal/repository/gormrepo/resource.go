// Package gormrepo implements the repository contracts on gorm. It works on
// PostgreSQL, MySQL and SQLite; dialect differences are limited to search.
package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"cmsapi/internal/filter"
	"cmsapi/internal/model"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary


// Resource is the gorm implementation of repository.ResourceRepository for
// the model T described by a schema.
type Resource[T any] struct {
	db     *gorm.DB
	model  *schema.Model
	client string
}

// NewResource creates a repository for T backed by db.
func NewResource[T any](db *gorm.DB, m *schema.Model) *Resource[T] {
	return &Resource[T]{db: db, model: m, client: db.Dialector.Name()}
}

var (
	_ repository.ResourceRepository[model.Seller]   = (*Resource[model.Seller])(nil)
	_ repository.ResourceRepository[model.Customer] = (*Resource[model.Customer])(nil)
	_ repository.ResourceRepository[model.Type]     = (*Resource[model.Type])(nil)
)

// FindAll lists rows matching f.
func (r *Resource[T]) FindAll(ctx context.Context, f *filter.Filter, populate []string) ([]T, error) {
	out := make([]T, 0)
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Scopes(whereScope(f), r.windowScope(f), preloadScope(populate)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.model.Table, err)
	}
	return out, nil
}

// FindByID fetches a single row by primary key.
func (r *Resource[T]) FindByID(ctx context.Context, id uint, populate []string) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).
		Scopes(preloadScope(populate)).
		Where(r.pkEq(id)).
		Take(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("fetch %s %d: %w", r.model.Table, id, err)
	}
	return &out, nil
}

// Count counts rows matching the conditions of f.
func (r *Resource[T]) Count(ctx context.Context, f *filter.Filter) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(whereScope(f)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.model.Table, err)
	}
	return n, nil
}

// Create decodes data into T and inserts it without touching associations.
func (r *Resource[T]) Create(ctx context.Context, data map[string]any) (*T, error) {
	var out T
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&out).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", r.model.Table, err)
	}
	return &out, nil
}

// Update writes data to row id. The payload is decoded into T first so type
// mismatches surface as repository.ErrInvalidData instead of driver errors.
func (r *Resource[T]) Update(ctx context.Context, id uint, data map[string]any) error {
	var probe T
	if err := decode(data, &probe); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where(r.pkEq(id)).Updates(data)
	if res.Error != nil {
		return fmt.Errorf("update %s %d: %w", r.model.Table, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes row id. Deleting a missing row is not an error.
func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where(r.pkEq(id)).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete %s %d: %w", r.model.Table, id, err)
	}
	return nil
}

func (r *Resource[T]) pkEq(id uint) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: r.model.Table, Name: r.model.PrimaryKey}, Value: id}
}

func (r *Resource[T]) windowScope(f *filter.Filter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f == nil {
			f = filter.Default()
		}
		if f.Sort != nil {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Sort.Key}, Desc: f.Sort.Order == "desc"})
		} else {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: r.model.Table, Name: r.model.PrimaryKey}})
		}
		if f.Start > 0 {
			tx = tx.Offset(f.Start)
		}
		if f.Limit != filter.Unlimited {
			tx = tx.Limit(f.Limit)
		}
		return tx
	}
}

func preloadScope(populate []string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, name := range populate {
			tx = tx.Preload(name)
		}
		return tx
	}
}

func decode(data map[string]any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidData, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidData, err)
	}
	return nil
}
