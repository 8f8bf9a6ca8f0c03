package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmsapi/internal/model"
	"cmsapi/internal/schema"
)

type migrationStep struct {
	Name string
	Run  func(db *gorm.DB) error
}

// fulltextIndex backs MATCH ... AGAINST searches on MySQL.
type fulltextIndex struct {
	Name    string
	Table   string
	Columns []string
}

func fulltextIndexes(models []*schema.Model) []fulltextIndex {
	var out []fulltextIndex
	for _, m := range models {
		cols := m.SearchPlan().Text
		if len(cols) == 0 {
			continue
		}
		out = append(out, fulltextIndex{
			Name:    "ft_" + m.Table + "_search",
			Table:   m.Table,
			Columns: cols,
		})
	}
	return out
}

func quote(db *gorm.DB, name string) string {
	var b strings.Builder
	db.Dialector.QuoteTo(&b, name)
	return b.String()
}

func (ix fulltextIndex) sql(db *gorm.DB) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = quote(db, c)
	}
	return fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s (%s)",
		quote(db, ix.Name), quote(db, ix.Table), strings.Join(cols, ", "))
}

func steps(db *gorm.DB) []migrationStep {
	out := []migrationStep{{
		Name: "auto_migrate",
		Run:  func(db *gorm.DB) error { return db.AutoMigrate(model.Tables()...) },
	}}
	if db.Dialector.Name() != "mysql" {
		return out
	}
	for _, ix := range fulltextIndexes(model.Schemas()) {
		out = append(out, migrationStep{
			Name: "create_index_" + ix.Name,
			Run: func(db *gorm.DB) error {
				if db.Migrator().HasIndex(ix.Table, ix.Name) {
					return nil
				}
				return db.Exec(ix.sql(db)).Error
			},
		})
	}
	return out
}

// Run brings the schema of every resource table up to date. It is safe to
// run on every start.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "database"), zap.String("dialect", db.Dialector.Name()))
	start := time.Now()
	db = db.WithContext(ctx)

	log.Info("db migration starting", zap.String("event", "db_migration_start"))

	for _, step := range steps(db) {
		stepStart := time.Now()
		if err := step.Run(db); err != nil {
			log.Error("db migration failed",
				zap.String("event", "db_migration_failed"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db migration step done",
			zap.String("event", "db_migration_step"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db migration succeeded",
		zap.String("event", "db_migration_success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
