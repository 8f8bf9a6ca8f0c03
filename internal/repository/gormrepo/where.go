package gormrepo

import (
	"fmt"
	"strings"

	"cmsapi/internal/filter"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// whereScope AND-s every condition of f.
func whereScope(f *filter.Filter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f == nil || len(f.Where) == 0 {
			return tx
		}
		exprs := make([]clause.Expression, 0, len(f.Where))
		for _, c := range f.Where {
			exprs = append(exprs, conditionExpr(c))
		}
		return tx.Clauses(clause.Where{Exprs: exprs})
	}
}

// conditionExpr compiles one condition. A list value under any symbol but
// In becomes a parenthesised OR of the symbol applied to each element.
func conditionExpr(c filter.Condition) clause.Expression {
	col := clause.Column{Name: c.Field}
	list, isList := c.Value.([]any)

	if c.Symbol == filter.In {
		if !isList {
			list = []any{c.Value}
		}
		return clause.IN{Column: col, Values: list}
	}
	if !isList {
		return compare(col, c.Symbol, c.Value)
	}
	exprs := make([]clause.Expression, 0, len(list))
	for _, v := range list {
		exprs = append(exprs, compare(col, c.Symbol, v))
	}
	return anyOf(exprs)
}

func compare(col clause.Column, symbol filter.Symbol, v any) clause.Expression {
	switch symbol {
	case filter.Contains:
		return clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{col, "%" + strings.ToLower(fmt.Sprint(v)) + "%"}}
	case filter.ContainsSensitive:
		return clause.Expr{SQL: "? LIKE ?", Vars: []any{col, "%" + fmt.Sprint(v) + "%"}}
	default:
		return clause.Expr{SQL: "? " + string(symbol) + " ?", Vars: []any{col, v}}
	}
}

// anyOf joins exprs with OR. A single expression is returned bare: gorm
// reads a one-element OR group as "OR the previous condition".
func anyOf(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.Or(exprs...)
}
