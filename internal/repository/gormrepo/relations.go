package gormrepo

import (
	"context"
	"fmt"
	"sort"

	"cmsapi/internal/model"
	"cmsapi/internal/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateRelations brings each named association of row id in line with the
// given identifiers. Every value is validated before the transaction opens.
func (r *Resource[T]) UpdateRelations(ctx context.Context, id uint, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	aliases := make([]string, 0, len(values))
	for alias := range values {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	type change struct {
		assoc schema.Association
		ids   []uint
	}
	changes := make([]change, 0, len(aliases))
	for _, alias := range aliases {
		a, ok := r.model.Association(alias)
		if !ok {
			return fmt.Errorf("%w: %s.%s", schema.ErrUnknownField, r.model.Name, alias)
		}
		ids, err := a.Resolve(values[alias])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", r.model.Name, alias, err)
		}
		changes = append(changes, change{assoc: a, ids: ids})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			if err := r.syncRelation(tx, id, c.assoc, c.ids); err != nil {
				return fmt.Errorf("sync %s.%s: %w", r.model.Name, c.assoc.Alias, err)
			}
		}
		return nil
	})
}

func (r *Resource[T]) syncRelation(tx *gorm.DB, id uint, a schema.Association, ids []uint) error {
	switch a.Nature {
	case schema.OneWay, schema.ManyToOne:
		return r.setOwnerKey(tx, id, a.Column, first(ids))

	case schema.OneToOne:
		if v := first(ids); v != nil {
			err := tx.Table(r.model.Table).
				Where(clause.Eq{Column: clause.Column{Name: a.Column}, Value: *v}).
				Where(clause.Neq{Column: clause.Column{Name: r.model.PrimaryKey}, Value: id}).
				Update(a.Column, nil).Error
			if err != nil {
				return err
			}
		}
		return r.setOwnerKey(tx, id, a.Column, first(ids))

	case schema.OneToMany:
		detach := tx.Table(a.Target).Where(clause.Eq{Column: clause.Column{Name: a.Column}, Value: id})
		if len(ids) > 0 {
			detach = detach.Not(clause.IN{Column: clause.Column{Name: "id"}, Values: uintValues(ids)})
		}
		if err := detach.Update(a.Column, nil).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Table(a.Target).
			Where(clause.IN{Column: clause.Column{Name: "id"}, Values: uintValues(ids)}).
			Update(a.Column, id).Error

	case schema.ManyToMany:
		err := tx.Exec("DELETE FROM ? WHERE ? = ?",
			clause.Table{Name: a.JoinTable}, clause.Column{Name: a.JoinColumn}, id).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		rows := make([]map[string]any, 0, len(ids))
		for _, target := range ids {
			rows = append(rows, map[string]any{a.JoinColumn: id, a.InverseColumn: target})
		}
		return tx.Table(a.JoinTable).Create(&rows).Error

	case schema.OneToManyMorph, schema.ManyToManyMorph:
		err := tx.Where(r.morphOwner(id, a.Alias)).Delete(&model.FileMorph{}).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		links := make([]model.FileMorph, 0, len(ids))
		for _, fileID := range ids {
			links = append(links, model.FileMorph{
				UploadFileID: fileID,
				RelatedID:    id,
				RelatedType:  r.model.Table,
				Field:        a.Alias,
			})
		}
		return tx.Create(&links).Error
	}
	return nil
}

// RelatedIDs reads the identifiers currently linked to row id through alias.
func (r *Resource[T]) RelatedIDs(ctx context.Context, id uint, alias string) ([]uint, error) {
	a, ok := r.model.Association(alias)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", schema.ErrUnknownField, r.model.Name, alias)
	}

	db := r.db.WithContext(ctx)
	ids := make([]uint, 0)
	var err error

	switch a.Nature {
	case schema.OneWay, schema.ManyToOne, schema.OneToOne:
		err = db.Table(r.model.Table).
			Where(clause.Eq{Column: clause.Column{Name: r.model.PrimaryKey}, Value: id}).
			Where(clause.Neq{Column: clause.Column{Name: a.Column}, Value: nil}).
			Pluck(a.Column, &ids).Error
	case schema.OneToMany:
		err = db.Table(a.Target).
			Where(clause.Eq{Column: clause.Column{Name: a.Column}, Value: id}).
			Order("id").
			Pluck("id", &ids).Error
	case schema.ManyToMany:
		err = db.Table(a.JoinTable).
			Where(clause.Eq{Column: clause.Column{Name: a.JoinColumn}, Value: id}).
			Order(a.InverseColumn).
			Pluck(a.InverseColumn, &ids).Error
	case schema.OneToManyMorph, schema.ManyToManyMorph:
		err = db.Model(&model.FileMorph{}).
			Where(r.morphOwner(id, a.Alias)).
			Order("id").
			Pluck(schema.MorphFileColumn, &ids).Error
	}
	if err != nil {
		return nil, fmt.Errorf("related %s.%s: %w", r.model.Name, alias, err)
	}
	return ids, nil
}

func (r *Resource[T]) setOwnerKey(tx *gorm.DB, id uint, column string, v *uint) error {
	var value any
	if v != nil {
		value = *v
	}
	return tx.Table(r.model.Table).
		Where(clause.Eq{Column: clause.Column{Name: r.model.PrimaryKey}, Value: id}).
		Update(column, value).Error
}

func (r *Resource[T]) morphOwner(id uint, field string) clause.Expression {
	return clause.And(
		clause.Eq{Column: clause.Column{Name: schema.MorphRelatedIDColumn}, Value: id},
		clause.Eq{Column: clause.Column{Name: schema.MorphRelatedTypeColumn}, Value: r.model.Table},
		clause.Eq{Column: clause.Column{Name: schema.MorphFieldColumn}, Value: field},
	)
}

func first(ids []uint) *uint {
	if len(ids) == 0 {
		return nil
	}
	return &ids[0]
}

func uintValues(ids []uint) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
