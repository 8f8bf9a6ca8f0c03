package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"cmsapi/internal/model"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// File is the gorm implementation of repository.FileRepository.
type File struct {
	db *gorm.DB
}

// NewFile creates a new File repository.
func NewFile(db *gorm.DB) *File {
	return &File{db: db}
}

var _ repository.FileRepository = (*File)(nil)

// Create inserts a file row and returns it with its assigned ID.
func (r *File) Create(ctx context.Context, f *model.File) (*model.File, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// FindByID fetches a single file with its links.
func (r *File) FindByID(ctx context.Context, id uint) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Preload("Related").Take(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// List returns files using LIMIT/OFFSET pagination and a total count,
// newest first.
func (r *File) List(ctx context.Context, q repository.FileQuery) (*repository.PageResult[model.File], error) {
	base := r.db.WithContext(ctx).Model(&model.File{})
	if q.RelatedType != "" || q.RelatedID != 0 || q.Field != "" {
		links := r.db.Model(&model.FileMorph{}).Select(schema.MorphFileColumn)
		if q.RelatedType != "" {
			links = links.Where(clause.Eq{Column: clause.Column{Name: schema.MorphRelatedTypeColumn}, Value: q.RelatedType})
		}
		if q.RelatedID != 0 {
			links = links.Where(clause.Eq{Column: clause.Column{Name: schema.MorphRelatedIDColumn}, Value: q.RelatedID})
		}
		if q.Field != "" {
			links = links.Where(clause.Eq{Column: clause.Column{Name: schema.MorphFieldColumn}, Value: q.Field})
		}
		base = base.Where("id IN (?)", links)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]model.File, 0)
	err := base.Session(&gorm.Session{}).
		Preload("Related").
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: int(total),
	}, nil
}

// Link attaches a file to a resource field.
func (r *File) Link(ctx context.Context, link *model.FileMorph, replace bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			err := tx.Where(&model.FileMorph{
				RelatedID:   link.RelatedID,
				RelatedType: link.RelatedType,
				Field:       link.Field,
			}).Delete(&model.FileMorph{}).Error
			if err != nil {
				return fmt.Errorf("unlink previous: %w", err)
			}
		}
		return tx.Create(link).Error
	})
}

// Delete removes the file's links and then the file row. It does not return
// an error if the row does not exist.
func (r *File) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(clause.Eq{Column: clause.Column{Name: schema.MorphFileColumn}, Value: id}).
			Delete(&model.FileMorph{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.File{}, id).Error
	})
}
