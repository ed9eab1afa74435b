package database

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// InitBolt opens (or creates) the bbolt file at path.
func InitBolt(path string) (*bolt.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return db, nil
}
