// Package seeders holds database seed functions for local development.
// Each seeder registers itself from init(); the CLI runs them in order
// with `bazaar seed`.
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// SeederFunc inserts rows. Seeders should be idempotent so `bazaar seed`
// can run against an already-seeded database.
type SeederFunc func(db *gorm.DB) error

var (
	mu    sync.Mutex
	names []string
	funcs map[string]SeederFunc
)

// Register adds a seeder under a unique name. Call from init().
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	if funcs == nil {
		funcs = map[string]SeederFunc{}
	}
	if _, dup := funcs[name]; !dup {
		names = append(names, name)
	}
	funcs[name] = fn
}

// RunAll executes every registered seeder in registration order, stopping
// at the first failure.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	ordered := append([]string(nil), names...)
	table := funcs
	mu.Unlock()

	for _, name := range ordered {
		if err := table[name](db); err != nil {
			return fmt.Errorf("seeder %q: %w", name, err)
		}
		logger.Info("seeder finished", "name", name)
	}
	return nil
}
