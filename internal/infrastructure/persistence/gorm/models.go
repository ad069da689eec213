// Package gorm provides GORM model definitions and the SQL-backed state store
package gorm

import "time"

// StateEntry is one persisted calculator state key
type StateEntry struct {
	Key       string    `gorm:"type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (StateEntry) TableName() string {
	return "state_entries"
}

// Models lists every model managed by AutoMigrate
func Models() []any {
	return []any{&StateEntry{}}
}
