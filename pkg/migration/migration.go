// Package migration tracks which schema migrations have run.
//
// Migrations live in database/migrations and register themselves from
// init(); names carry a numeric prefix so registration order and sort
// order agree. The CLI drives the Runner: bazaar migrate,
// migrate:rollback, migrate:status.
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// Migration applies or reverses one schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// appliedMigration is a row in the tracking table. Batch groups the
// migrations applied by one `bazaar migrate` so rollback can undo exactly
// that set.
type appliedMigration struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"uniqueIndex;size:255;not null"`
	Batch     int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (appliedMigration) TableName() string { return "migrations" }

type entry struct {
	name string
	m    Migration
}

var registry []entry

// Register adds a migration under a sortable name. Call from init().
func Register(name string, m Migration) {
	registry = append(registry, entry{name: name, m: m})
}

// Runner applies registered migrations to one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner { return &Runner{db: db} }

func (r *Runner) applied() (map[string]appliedMigration, error) {
	if err := r.db.AutoMigrate(&appliedMigration{}); err != nil {
		return nil, fmt.Errorf("migration: tracking table: %w", err)
	}
	var rows []appliedMigration
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]appliedMigration, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	return byName, nil
}

// Run applies every pending migration as one batch.
func (r *Runner) Run() error {
	done, err := r.applied()
	if err != nil {
		return err
	}

	var pending []entry
	for _, e := range registry {
		if _, ok := done[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		logger.Info("migrations up to date")
		return nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].name < pending[j].name })

	batch := r.lastBatch() + 1
	for _, e := range pending {
		logger.Info("applying migration", "name", e.name, "batch", batch)
		if err := e.m.Up(r.db); err != nil {
			return fmt.Errorf("migration %s: %w", e.name, err)
		}
		row := appliedMigration{Name: e.name, Batch: batch}
		if err := r.db.Create(&row).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.name, err)
		}
	}
	return nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if _, err := r.applied(); err != nil {
		return err
	}

	batch := r.lastBatch()
	if batch == 0 {
		logger.Info("nothing to roll back")
		return nil
	}

	var rows []appliedMigration
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return err
	}

	byName := make(map[string]Migration, len(registry))
	for _, e := range registry {
		byName[e.name] = e.m
	}

	for _, row := range rows {
		m, ok := byName[row.Name]
		if !ok {
			return fmt.Errorf("migration %s: applied but not registered, cannot roll back", row.Name)
		}
		logger.Info("rolling back migration", "name", row.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Status prints every registered migration with its applied batch.
func (r *Runner) Status() error {
	done, err := r.applied()
	if err != nil {
		return err
	}

	for _, e := range registry {
		if row, ok := done[e.name]; ok {
			fmt.Printf("ran      %-50s batch %d\n", e.name, row.Batch)
		} else {
			fmt.Printf("pending  %s\n", e.name)
		}
	}
	return nil
}

func (r *Runner) lastBatch() int {
	var result struct{ Max int }
	r.db.Model(&appliedMigration{}).Select("MAX(batch) as max").Scan(&result)
	return result.Max
}
