package cook

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// Record tracks the source state an artifact was last cooked from.
type Record struct {
	Path          string `gorm:"primaryKey"`
	SourceModTime int64
	CookedAt      int64
}

// Database is the local cook database: a small sqlite file remembering, per
// cooked artifact, the source modification time it was produced from. It is
// what lets timestamp-checked cooks short-circuit without hashing sources.
type Database struct {
	db *gorm.DB
}

// OpenDatabase opens (or creates) the cook database at path. Use ":memory:"
// for an ephemeral database.
func OpenDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open cook database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate cook database: %w", err)
	}
	return &Database{db: db}, nil
}

// UpToDate reports whether path was last cooked from a source at least as
// new as srcMod.
func (d *Database) UpToDate(path string, srcMod time.Time) bool {
	var rec Record
	if err := d.db.First(&rec, "path = ?", path).Error; err != nil {
		return false
	}
	return rec.SourceModTime >= srcMod.UnixNano()
}

// Put records that path was just cooked from a source modified at srcMod.
func (d *Database) Put(path string, srcMod time.Time) error {
	rec := Record{
		Path:          path,
		SourceModTime: srcMod.UnixNano(),
		CookedAt:      time.Now().Unix(),
	}
	return d.db.Save(&rec).Error
}

// Forget drops the record for path, forcing the next timestamp-checked cook
// to run.
func (d *Database) Forget(path string) error {
	return d.db.Delete(&Record{}, "path = ?", path).Error
}
