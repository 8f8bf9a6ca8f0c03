package gormrepo

import (
	"context"
	"testing"

	"cmsapi/internal/filter"
	"cmsapi/internal/model"
	"cmsapi/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func searchSQL(db *gorm.DB, repo *Resource[model.Seller], plan schema.SearchPlan, q string) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&model.Seller{}).Scopes(repo.searchScope(plan, filter.ParseSearch(q))).Find(&[]model.Seller{})
	})
}

func TestSearch_SQL(t *testing.T) {
	db := newTestDB(t)
	plan := model.SellerSchema.SearchPlan()

	t.Run("word on the default engine", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		sql := searchSQL(db, repo, plan, "Acme42!")

		assert.Contains(t, sql, "LOWER(`status`) LIKE \"%acme42%\"")
		assert.Contains(t, sql, "MATCH(`name`, `description`) AGAINST(\"*Acme42*\" IN BOOLEAN MODE)")
		assert.NotContains(t, sql, "`employees` =")
		assert.NotContains(t, sql, "`verified` =")
	})

	t.Run("number adds numeric equality", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		sql := searchSQL(db, repo, plan, "42")

		assert.Contains(t, sql, "`rating` = 42")
		assert.Contains(t, sql, "`employees` = 42")
		assert.NotContains(t, sql, "`verified` =")
	})

	t.Run("boolean literal adds boolean equality", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		sql := searchSQL(db, repo, plan, "true")

		assert.Contains(t, sql, "`verified` = true")
		assert.NotContains(t, sql, "`employees` =")
	})

	t.Run("postgres full text", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		repo.client = "postgres"
		sql := searchSQL(db, repo, plan, "acme")

		assert.Contains(t, sql, "(to_tsvector(coalesce(`name`, '')) || to_tsvector(coalesce(`description`, ''))) @@ to_tsquery(\"acme\")")
		assert.NotContains(t, sql, "MATCH(")
	})

	t.Run("clauses are one disjunction", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		sql := searchSQL(db, repo, plan, "1")

		assert.Contains(t, sql, "WHERE (LOWER(`status`) LIKE \"%1%\" OR `rating` = 1 OR `employees` = 1 OR MATCH(")
	})

	t.Run("no text attributes skips full text", func(t *testing.T) {
		repo := NewResource[model.Seller](db, model.SellerSchema)
		sql := searchSQL(db, repo, schema.SearchPlan{Numeric: []string{"employees"}}, "abc")

		assert.NotContains(t, sql, "WHERE")
	})
}

func TestResource_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewResource[model.Seller](db, model.SellerSchema)
	seedSellers(t, repo)
	ctx := context.Background()

	// SQLite has no MATCH ... AGAINST, so run the plan without text attributes.
	plan := schema.SearchPlan{
		Numeric: []string{"employees"},
		Boolean: []string{"verified"},
		Other:   []string{"status"},
	}

	tests := []struct {
		name string
		q    string
		want []string
	}{
		{"number", "20", []string{"Bolt"}},
		{"boolean", "true", []string{"Acme", "acme north"}},
		{"substring of other attribute", "CLOS", []string{"Bolt"}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, plan, filter.ParseSearch(tt.q), filter.Default(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("sort and window apply", func(t *testing.T) {
		f, err := filter.Convert(model.SellerSchema, filter.Params{"_sort": {"employees:desc"}, "_limit": {"1"}})
		require.NoError(t, err)
		got, err := repo.Search(ctx, plan, filter.ParseSearch("act"), f, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"acme north"}, names(got))
	})
}
