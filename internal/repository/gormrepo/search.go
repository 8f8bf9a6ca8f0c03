package gormrepo

import (
	"context"
	"fmt"
	"strings"

	"cmsapi/internal/filter"
	"cmsapi/internal/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Search runs a free-text query as one disjunction across the plan's
// attribute groups.
func (r *Resource[T]) Search(ctx context.Context, plan schema.SearchPlan, term filter.SearchTerm, f *filter.Filter, populate []string) ([]T, error) {
	out := make([]T, 0)
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Scopes(r.searchScope(plan, term), r.windowScope(f), preloadScope(populate)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.model.Table, err)
	}
	return out, nil
}

func (r *Resource[T]) searchScope(plan schema.SearchPlan, term filter.SearchTerm) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		exprs := r.searchExprs(plan, term)
		if len(exprs) == 0 {
			return tx
		}
		return tx.Clauses(clause.Where{Exprs: []clause.Expression{anyOf(exprs)}})
	}
}

func (r *Resource[T]) searchExprs(plan schema.SearchPlan, term filter.SearchTerm) []clause.Expression {
	var exprs []clause.Expression

	like := "%" + term.Lower() + "%"
	for _, name := range plan.Other {
		exprs = append(exprs, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: name}, like}})
	}
	if term.Number != nil {
		for _, name := range plan.Numeric {
			exprs = append(exprs, clause.Eq{Column: clause.Column{Name: name}, Value: *term.Number})
		}
	}
	if term.Bool != nil {
		for _, name := range plan.Boolean {
			exprs = append(exprs, clause.Eq{Column: clause.Column{Name: name}, Value: *term.Bool})
		}
	}
	if len(plan.Text) > 0 {
		exprs = append(exprs, r.fullText(plan.Text, term.Query))
	}
	return exprs
}

// fullText matches q against the text columns with the engine's native
// operator: tsvector/tsquery on PostgreSQL, MATCH ... AGAINST elsewhere.
func (r *Resource[T]) fullText(columns []string, q string) clause.Expression {
	vars := make([]any, 0, len(columns)+1)
	parts := make([]string, 0, len(columns))

	if r.client == "postgres" {
		for _, name := range columns {
			parts = append(parts, "to_tsvector(coalesce(?, ''))")
			vars = append(vars, clause.Column{Name: name})
		}
		vars = append(vars, q)
		return clause.Expr{SQL: "(" + strings.Join(parts, " || ") + ") @@ to_tsquery(?)", Vars: vars}
	}

	for _, name := range columns {
		parts = append(parts, "?")
		vars = append(vars, clause.Column{Name: name})
	}
	vars = append(vars, "*"+q+"*")
	return clause.Expr{SQL: "MATCH(" + strings.Join(parts, ", ") + ") AGAINST(? IN BOOLEAN MODE)", Vars: vars}
}
